package stdlib

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/value"
)

// Dates travel through the value universe as ISO-8601 strings.
func registerDateTimeOps(r *functions.Registry) {
	register(r, sig("Now", functions.ParamString),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(time.Now().UTC().Format(time.RFC3339)), nil
		})

	register(r, sig("Today", functions.ParamString),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return value.NewString(time.Now().UTC().Format("2006-01-02")), nil
		})

	register(r, sig("ParseDate", functions.ParamString, req("value", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			t, err := parseISODate(stringArg(args, 0))
			if err != nil {
				return nil, err
			}
			return value.NewString(t.Format(time.RFC3339)), nil
		})

	register(r, sig("FormatDate", functions.ParamString, req("value", functions.ParamString), req("layout", functions.ParamString), opt("locale", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			t, err := parseISODate(stringArg(args, 0))
			if err != nil {
				return nil, err
			}
			layout := stringArg(args, 1)
			if _, present := argAt(args, 2); present {
				locale := monday.Locale(stringArg(args, 2))
				return value.NewString(monday.Format(t, layout, locale)), nil
			}
			return value.NewString(t.Format(layout)), nil
		})

	register(r, sig("DatePart", functions.ParamNumber, req("value", functions.ParamString), req("part", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			t, err := parseISODate(stringArg(args, 0))
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(stringArg(args, 1)) {
			case "year":
				return value.NewNumber(float64(t.Year())), nil
			case "month":
				return value.NewNumber(float64(t.Month())), nil
			case "day":
				return value.NewNumber(float64(t.Day())), nil
			case "hour":
				return value.NewNumber(float64(t.Hour())), nil
			case "minute":
				return value.NewNumber(float64(t.Minute())), nil
			case "second":
				return value.NewNumber(float64(t.Second())), nil
			case "weekday":
				return value.NewNumber(float64(t.Weekday())), nil
			}
			return nil, fmt.Errorf("unknown date part %q", stringArg(args, 1))
		})

	addUnit := func(name string, unit time.Duration) {
		register(r, sig(name, functions.ParamString, req("value", functions.ParamString), req("amount", functions.ParamNumber)),
			func(ec *execution.Context, args []value.Value) (value.Value, error) {
				t, err := parseISODate(stringArg(args, 0))
				if err != nil {
					return nil, err
				}
				amount := numberArg(args, 1)
				return value.NewString(t.Add(time.Duration(amount * float64(unit))).Format(time.RFC3339)), nil
			})
	}

	register(r, sig("AddDays", functions.ParamString, req("value", functions.ParamString), req("amount", functions.ParamNumber)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			t, err := parseISODate(stringArg(args, 0))
			if err != nil {
				return nil, err
			}
			days, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			return value.NewString(t.AddDate(0, 0, days).Format(time.RFC3339)), nil
		})
	addUnit("AddHours", time.Hour)
	addUnit("AddMinutes", time.Minute)

	register(r, sig("DateDiff", functions.ParamNumber, req("first", functions.ParamString), req("second", functions.ParamString), req("unit", functions.ParamString)),
		func(ec *execution.Context, args []value.Value) (value.Value, error) {
			a, err := parseISODate(stringArg(args, 0))
			if err != nil {
				return nil, err
			}
			b, err := parseISODate(stringArg(args, 1))
			if err != nil {
				return nil, err
			}
			diff := b.Sub(a)
			switch strings.ToLower(stringArg(args, 2)) {
			case "days":
				return value.NewNumber(diff.Hours() / 24), nil
			case "hours":
				return value.NewNumber(diff.Hours()), nil
			case "minutes":
				return value.NewNumber(diff.Minutes()), nil
			case "seconds":
				return value.NewNumber(diff.Seconds()), nil
			case "milliseconds":
				return value.NewNumber(float64(diff.Milliseconds())), nil
			}
			return nil, fmt.Errorf("unknown date unit %q", stringArg(args, 2))
		})
}

// parseISODate accepts full RFC3339 timestamps and bare dates.
func parseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an ISO-8601 date", s)
}
