package stdlib

import (
	"fmt"
	"regexp"
	"time"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// MaxRegexTime is the wall-clock budget of a Match call. Go's engine
// guarantees linear-time matching; Match checks the budget while collecting
// results, after the scan has finished, so a scan in progress is not
// interrupted. IsMatch and ReplacePattern have no time budget; all three
// check the cancellation token before compiling the pattern.
const MaxRegexTime = 250 * time.Millisecond

func registerRegexOps(r *functions.Registry) {
	register(r, sig("IsMatch", functions.ParamBoolean, req("value", functions.ParamString), req("pattern", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			re, err := compilePattern(ec, stringArg(args, 1))
			if err != nil {
				return nil, err
			}
			return value.NewBool(re.MatchString(stringArg(args, 0))), nil
		})

	register(r, sig("Match", functions.ParamArray, req("value", functions.ParamString), req("pattern", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			re, err := compilePattern(ec, stringArg(args, 1))
			if err != nil {
				return nil, err
			}
			deadline := time.Now().Add(MaxRegexTime)
			var items []value.Value
			for _, m := range re.FindAllString(stringArg(args, 0), -1) {
				items = append(items, value.NewString(m))
				if time.Now().After(deadline) {
					return nil, fmt.Errorf("regex match exceeded its time budget")
				}
			}
			return value.NewArray(items), nil
		})

	register(r, sig("ReplacePattern", functions.ParamString, req("value", functions.ParamString), req("pattern", functions.ParamString), req("replacement", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			re, err := compilePattern(ec, stringArg(args, 1))
			if err != nil {
				return nil, err
			}
			return value.NewString(re.ReplaceAllString(stringArg(args, 0), stringArg(args, 2))), nil
		})
}

func compilePattern(ec *execution.Context, pattern string) (*regexp.Regexp, error) {
	if err := ec.Token().Err(); err != nil {
		return nil, fmt.Errorf("regex call cancelled")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %v", pattern, err)
	}
	return re, nil
}
