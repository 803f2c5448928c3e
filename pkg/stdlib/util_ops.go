package stdlib

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

const randomStringAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MaxRandomStringLength caps RandomString output.
const MaxRandomStringLength = 1 << 16

func registerUtilOps(r *functions.Registry) {
	register(r, sig("TypeOf", functions.ParamString, req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(value.TypeName(args[0])), nil
		})

	register(r, sig("Clone", functions.ParamAny, req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.Clone(args[0]), nil
		})

	register(r, sig("Equal", functions.ParamBoolean, req("first", functions.ParamAny), req("second", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewBool(value.Equals(args[0], args[1])), nil
		})

	register(r, sig("Diff", functions.ParamArray, req("first", functions.ParamAny), req("second", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			var diffs []value.Value
			diffValues("", args[0], args[1], &diffs)
			return value.NewArray(diffs), nil
		})

	register(r, sig("ToJson", functions.ParamString, req("value", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			b, err := value.ToJSON(args[0])
			if err != nil {
				return nil, err
			}
			return value.NewString(string(b)), nil
		})

	register(r, sig("FromJson", functions.ParamAny, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			v, err := value.FromJSON([]byte(stringArg(args, 0)))
			if err != nil {
				return nil, fmt.Errorf("invalid JSON: %v", err)
			}
			return v, nil
		})

	register(r, sig("NewGuid", functions.ParamString),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, err
			}
			return value.NewString(id.String()), nil
		})

	register(r, sig("RandomInt", functions.ParamNumber, req("min", functions.ParamNumber), req("max", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			lo, err := intArg(args, 0)
			if err != nil {
				return nil, err
			}
			hi, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if lo >= hi {
				return nil, fmt.Errorf("min %d must be less than max %d", lo, hi)
			}
			n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)))
			if err != nil {
				return nil, err
			}
			return value.NewNumber(float64(lo + int(n.Int64()))), nil
		})

	register(r, sig("RandomString", functions.ParamString, req("length", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			length, err := intArg(args, 0)
			if err != nil {
				return nil, err
			}
			if length < 0 || length > MaxRandomStringLength {
				return nil, fmt.Errorf("length %d is out of range", length)
			}
			out := make([]byte, length)
			max := big.NewInt(int64(len(randomStringAlphabet)))
			for i := range out {
				n, err := rand.Int(rand.Reader, max)
				if err != nil {
					return nil, err
				}
				out[i] = randomStringAlphabet[n.Int64()]
			}
			return value.NewString(string(out)), nil
		})

	register(r, sig("Coalesce", functions.ParamAny, req("first", functions.ParamAny), req("second", functions.ParamAny), opt("third", functions.ParamAny), opt("fourth", functions.ParamAny)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			for _, arg := range args {
				if _, isNull := arg.(value.Null); !isNull {
					return arg, nil
				}
			}
			return value.NewNull(), nil
		})

	register(r, sig("Base64Encode", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(base64.StdEncoding.EncodeToString([]byte(stringArg(args, 0)))), nil
		})

	register(r, sig("Base64Decode", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			decoded, err := base64.StdEncoding.DecodeString(stringArg(args, 0))
			if err != nil {
				return nil, fmt.Errorf("invalid base64 input")
			}
			return value.NewString(string(decoded)), nil
		})

	// Sleep observes the combined cancellation token and wakes promptly
	// when it fires instead of waiting for the next statement boundary.
	register(r, sig("Sleep", functions.ParamNull, req("milliseconds", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			ms := numberArg(args, 0)
			if ms < 0 {
				return nil, fmt.Errorf("duration must not be negative")
			}
			if ms == 0 {
				return value.NewNull(), nil
			}
			timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
			defer timer.Stop()
			select {
			case <-timer.C:
				return value.NewNull(), nil
			case <-ec.Token().Done():
				return nil, diagnostics.Errorf(diagnostics.CancelledByHost)
			}
		})
}

// diffValues records every path where the two values disagree. Two nulls
// are equal here, matching the engine's equality everywhere else.
func diffValues(path string, a, b value.Value, out *[]value.Value) {
	if value.TypeName(a) != value.TypeName(b) {
		*out = append(*out, diffEntry(path, a, b))
		return
	}

	switch av := a.(type) {
	case *value.Array:
		bv := b.(*value.Array)
		n := len(av.Items)
		if len(bv.Items) > n {
			n = len(bv.Items)
		}
		for i := 0; i < n; i++ {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case i >= len(av.Items):
				*out = append(*out, diffEntry(childPath, value.NewNull(), bv.Items[i]))
			case i >= len(bv.Items):
				*out = append(*out, diffEntry(childPath, av.Items[i], value.NewNull()))
			default:
				diffValues(childPath, av.Items[i], bv.Items[i], out)
			}
		}

	case *value.Object:
		bv := b.(*value.Object)
		for _, f := range av.Fields() {
			childPath := joinPath(path, f.Key)
			other, ok := bv.Get(f.Key)
			if !ok {
				*out = append(*out, diffEntry(childPath, f.Value, value.NewNull()))
				continue
			}
			diffValues(childPath, f.Value, other, out)
		}
		for _, f := range bv.Fields() {
			if !av.Has(f.Key) {
				*out = append(*out, diffEntry(joinPath(path, f.Key), value.NewNull(), f.Value))
			}
		}

	default:
		if !value.Equals(a, b) {
			*out = append(*out, diffEntry(path, a, b))
		}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func diffEntry(path string, left, right value.Value) value.Value {
	entry := value.NewObject()
	entry.Set("path", value.NewString(path))
	entry.Set("left", left)
	entry.Set("right", right)
	return entry
}
