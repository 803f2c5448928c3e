package stdlib_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/stdlib"
	"github.com/meschsystems/jyro/pkg/value"
)

// call invokes a builtin directly with an unbounded execution context.
func call(t *testing.T, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	fn, ok := stdlib.Default().Lookup(name)
	if !ok {
		t.Fatalf("builtin %s is not registered", name)
	}
	ec := execution.NewContext(context.Background(), nil)
	defer ec.Close()
	return fn.Call(ec, args)
}

func mustCall(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	got, err := call(t, name, args...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return got
}

func num(n float64) value.Value { return value.NewNumber(n) }
func str(s string) value.Value  { return value.NewString(s) }

func arrOf(items ...value.Value) *value.Array { return value.NewArray(items) }

func lambda(fn func(args []value.Value) (value.Value, error)) *value.Lambda {
	return &value.Lambda{Arity: 1, Invoke: fn}
}

func expectJSON(t *testing.T, v value.Value, want string) {
	t.Helper()
	out, err := value.ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestEverySignatureHasValidArity(t *testing.T) {
	reg := stdlib.Default()
	for _, name := range reg.Names() {
		fn, _ := reg.Lookup(name)
		s := fn.Signature()
		if s.Name != name {
			t.Errorf("%s: signature name %q", name, s.Name)
		}
		if s.MinArity() > s.MaxArity() {
			t.Errorf("%s: min arity %d > max %d", name, s.MinArity(), s.MaxArity())
		}
		optionalSeen := false
		for _, p := range s.Params {
			if p.Optional {
				optionalSeen = true
			} else if optionalSeen {
				t.Errorf("%s: required parameter %q after optional", name, p.Name)
			}
		}
	}
}

func TestArrayBuiltins(t *testing.T) {
	expectJSON(t, mustCall(t, "Append", arrOf(num(1)), num(2)), `[1,2]`)
	expectJSON(t, mustCall(t, "Insert", arrOf(num(1), num(3)), num(1), num(2)), `[1,2,3]`)
	expectJSON(t, mustCall(t, "RemoveAt", arrOf(num(1), num(2), num(3)), num(1)), `[1,3]`)
	expectJSON(t, mustCall(t, "Reverse", arrOf(num(1), num(2), num(3))), `[3,2,1]`)
	expectJSON(t, mustCall(t, "Sort", arrOf(num(3), num(1), num(2))), `[1,2,3]`)
	expectJSON(t, mustCall(t, "Flatten", arrOf(num(1), arrOf(num(2), num(3)), num(4))), `[1,2,3,4]`)
	expectJSON(t, mustCall(t, "Unique", arrOf(num(1), num(2), num(1))), `[1,2]`)
	expectJSON(t, mustCall(t, "Range", num(2), num(5)), `[2,3,4,5]`)
	expectJSON(t, mustCall(t, "Slice", arrOf(num(1), num(2), num(3), num(4)), num(1), num(3)), `[2,3]`)
	expectJSON(t, mustCall(t, "IndexOf", arrOf(str("a"), str("b")), str("b")), `1`)
	expectJSON(t, mustCall(t, "First", arrOf(num(9), num(8))), `9`)
	expectJSON(t, mustCall(t, "Last", arrOf(num(9), num(8))), `8`)

	got := mustCall(t, "Join", arrOf(num(1), str("x")), str("-"))
	if !value.Equals(got, str("1-x")) {
		t.Errorf("Join = %v", got)
	}
}

func TestAppendDoesNotMutateSource(t *testing.T) {
	src := arrOf(num(1))
	mustCall(t, "Append", src, num(2))
	if len(src.Items) != 1 {
		t.Error("Append mutated its input")
	}
}

func TestLengthAcrossTypes(t *testing.T) {
	expectJSON(t, mustCall(t, "Length", arrOf(num(1), num(2))), `2`)
	expectJSON(t, mustCall(t, "Length", str("héllo")), `5`)
	o := value.NewObject()
	o.Set("a", num(1))
	expectJSON(t, mustCall(t, "Length", o), `1`)

	if _, err := call(t, "Length", num(5)); err == nil {
		t.Error("Length of a number must fail")
	}
}

func TestCombinators(t *testing.T) {
	double := lambda(func(args []value.Value) (value.Value, error) {
		return value.NewNumber(args[0].(value.Number).Value * 2), nil
	})
	isEven := lambda(func(args []value.Value) (value.Value, error) {
		return value.NewBool(int(args[0].(value.Number).Value)%2 == 0), nil
	})

	expectJSON(t, mustCall(t, "Map", arrOf(num(1), num(2)), double), `[2,4]`)
	expectJSON(t, mustCall(t, "Where", arrOf(num(1), num(2), num(3), num(4)), isEven), `[2,4]`)
	expectJSON(t, mustCall(t, "All", arrOf(num(2), num(4)), isEven), `true`)
	expectJSON(t, mustCall(t, "Any", arrOf(num(1), num(3)), isEven), `false`)
	expectJSON(t, mustCall(t, "Find", arrOf(num(1), num(2), num(3)), isEven), `2`)
	expectJSON(t, mustCall(t, "Count", arrOf(num(1), num(2), num(4)), isEven), `2`)

	sum := &value.Lambda{Arity: 2, Invoke: func(args []value.Value) (value.Value, error) {
		return value.NewNumber(args[0].(value.Number).Value + args[1].(value.Number).Value), nil
	}}
	expectJSON(t, mustCall(t, "Reduce", arrOf(num(1), num(2), num(3)), sum), `6`)
	expectJSON(t, mustCall(t, "Reduce", arrOf(num(1), num(2), num(3)), sum, num(10)), `16`)

	negate := lambda(func(args []value.Value) (value.Value, error) {
		return value.NewNumber(-args[0].(value.Number).Value), nil
	})
	expectJSON(t, mustCall(t, "SortBy", arrOf(num(1), num(3), num(2)), negate), `[3,2,1]`)
}

func TestMathBuiltins(t *testing.T) {
	expectJSON(t, mustCall(t, "Abs", num(-3)), `3`)
	expectJSON(t, mustCall(t, "Floor", num(2.7)), `2`)
	expectJSON(t, mustCall(t, "Ceil", num(2.1)), `3`)
	expectJSON(t, mustCall(t, "Round", num(2.5)), `3`)
	expectJSON(t, mustCall(t, "Min", num(2), num(5)), `2`)
	expectJSON(t, mustCall(t, "Max", num(2), num(5)), `5`)
	expectJSON(t, mustCall(t, "Pow", num(2), num(10)), `1024`)
	expectJSON(t, mustCall(t, "Sqrt", num(49)), `7`)
	expectJSON(t, mustCall(t, "Clamp", num(15), num(0), num(10)), `10`)
	expectJSON(t, mustCall(t, "Sum", arrOf(num(1), num(2), num(3))), `6`)
	expectJSON(t, mustCall(t, "Average", arrOf(num(2), num(4))), `3`)
	expectJSON(t, mustCall(t, "MinOf", arrOf(num(4), num(1), num(9))), `1`)
	expectJSON(t, mustCall(t, "MaxOf", arrOf(num(4), num(1), num(9))), `9`)

	if _, err := call(t, "Sqrt", num(-1)); err == nil {
		t.Error("Sqrt of a negative must fail")
	}
	if _, err := call(t, "Average", arrOf()); err == nil {
		t.Error("Average of empty must fail")
	}
	if _, err := call(t, "Sum", arrOf(str("x"))); err == nil {
		t.Error("Sum over non-numbers must fail")
	}
}

func TestStringBuiltins(t *testing.T) {
	expectJSON(t, mustCall(t, "Upper", str("abc")), `"ABC"`)
	expectJSON(t, mustCall(t, "Lower", str("ABC")), `"abc"`)
	expectJSON(t, mustCall(t, "Trim", str("  x ")), `"x"`)
	expectJSON(t, mustCall(t, "Split", str("a,b"), str(",")), `["a","b"]`)
	expectJSON(t, mustCall(t, "Replace", str("aaa"), str("a"), str("b")), `"bbb"`)
	expectJSON(t, mustCall(t, "StartsWith", str("abc"), str("ab")), `true`)
	expectJSON(t, mustCall(t, "EndsWith", str("abc"), str("ab")), `false`)
	expectJSON(t, mustCall(t, "Substring", str("hello"), num(1), num(3)), `"ell"`)
	expectJSON(t, mustCall(t, "PadLeft", str("7"), num(3), str("0")), `"007"`)
	expectJSON(t, mustCall(t, "PadRight", str("ab"), num(4)), `"ab  "`)
	expectJSON(t, mustCall(t, "ToString", num(42)), `"42"`)
	expectJSON(t, mustCall(t, "ToNumber", str(" 3.5 ")), `3.5`)

	if _, err := call(t, "PadLeft", str("x"), num(float64(stdlib.MaxPaddedLength+1))); err == nil {
		t.Error("padding beyond the cap must fail")
	}
	if _, err := call(t, "ToNumber", str("abc")); err == nil {
		t.Error("ToNumber of garbage must fail")
	}
}

func TestDateTimeBuiltins(t *testing.T) {
	parsed := mustCall(t, "ParseDate", str("2024-03-01T12:30:00Z"))
	if !value.Equals(parsed, str("2024-03-01T12:30:00Z")) {
		t.Errorf("ParseDate = %v", parsed)
	}

	expectJSON(t, mustCall(t, "DatePart", str("2024-03-01T12:30:45Z"), str("year")), `2024`)
	expectJSON(t, mustCall(t, "DatePart", str("2024-03-01T12:30:45Z"), str("minute")), `30`)

	added := mustCall(t, "AddDays", str("2024-02-28T00:00:00Z"), num(2))
	if !value.Equals(added, str("2024-03-01T00:00:00Z")) {
		t.Errorf("AddDays = %v", added)
	}

	expectJSON(t, mustCall(t, "DateDiff", str("2024-03-01T00:00:00Z"), str("2024-03-02T12:00:00Z"), str("hours")), `36`)

	formatted := mustCall(t, "FormatDate", str("2024-03-01T00:00:00Z"), str("2 January 2006"))
	if !value.Equals(formatted, str("1 March 2024")) {
		t.Errorf("FormatDate = %v", formatted)
	}

	localized := mustCall(t, "FormatDate", str("2024-03-01T00:00:00Z"), str("2 January 2006"), str("de_DE"))
	if !value.Equals(localized, str("1 März 2024")) {
		t.Errorf("localized FormatDate = %v", localized)
	}

	if _, err := call(t, "ParseDate", str("not a date")); err == nil {
		t.Error("ParseDate of garbage must fail")
	}
}

func TestRegexBuiltins(t *testing.T) {
	expectJSON(t, mustCall(t, "IsMatch", str("abc123"), str(`\d+`)), `true`)
	expectJSON(t, mustCall(t, "Match", str("a1 b22 c333"), str(`\d+`)), `["1","22","333"]`)
	expectJSON(t, mustCall(t, "ReplacePattern", str("a1b2"), str(`\d`), str("#")), `"a#b#"`)

	if _, err := call(t, "IsMatch", str("x"), str("(")); err == nil {
		t.Error("invalid pattern must fail")
	}
}

func TestSchemaBuiltins(t *testing.T) {
	obj := value.NewObject()
	obj.Set("name", str("x"))

	result := mustCall(t, "ValidateSchema", obj, arrOf(str("name"), str("age"))).(*value.Object)
	valid, _ := result.Get("valid")
	if value.Truthiness(valid) {
		t.Error("missing field should invalidate")
	}
	missing, _ := result.Get("missing")
	expectJSON(t, missing, `["age"]`)

	schema := value.NewObject()
	schema.Set("type", str("object"))
	required := arrOf(str("age"))
	schema.Set("required", required)
	jsResult := mustCall(t, "ValidateJsonSchema", obj, schema).(*value.Object)
	valid, _ = jsResult.Get("valid")
	if value.Truthiness(valid) {
		t.Error("JSON-Schema required should invalidate")
	}
	errs, _ := jsResult.Get("errors")
	if len(errs.(*value.Array).Items) == 0 {
		t.Error("no error entries")
	}
}

func TestUtilBuiltins(t *testing.T) {
	expectJSON(t, mustCall(t, "TypeOf", arrOf()), `"array"`)
	expectJSON(t, mustCall(t, "Equal", value.NewNull(), value.NewNull()), `true`)
	expectJSON(t, mustCall(t, "Coalesce", value.NewNull(), value.NewNull(), num(3)), `3`)

	encoded := mustCall(t, "Base64Encode", str("hello"))
	want := base64.StdEncoding.EncodeToString([]byte("hello"))
	if !value.Equals(encoded, str(want)) {
		t.Errorf("Base64Encode = %v", encoded)
	}
	decoded := mustCall(t, "Base64Decode", encoded)
	if !value.Equals(decoded, str("hello")) {
		t.Errorf("Base64Decode = %v", decoded)
	}

	jsonStr := mustCall(t, "ToJson", arrOf(num(1), value.NewNull()))
	if !value.Equals(jsonStr, str(`[1,null]`)) {
		t.Errorf("ToJson = %v", jsonStr)
	}
	back := mustCall(t, "FromJson", jsonStr)
	expectJSON(t, back, `[1,null]`)
}

func TestCloneBuiltinIsDeep(t *testing.T) {
	original := arrOf(arrOf(num(1)))
	cloned := mustCall(t, "Clone", original).(*value.Array)
	cloned.Items[0].(*value.Array).Items[0] = num(99)
	if !value.Equals(original.Items[0].(*value.Array).Items[0], num(1)) {
		t.Error("Clone aliases its input")
	}
}

func TestDiffTreatsNullsAsEqual(t *testing.T) {
	diffs := mustCall(t, "Diff", value.NewNull(), value.NewNull()).(*value.Array)
	if len(diffs.Items) != 0 {
		t.Errorf("null vs null diff = %v", diffs.Items)
	}

	a := value.NewObject()
	a.Set("x", num(1))
	a.Set("y", value.NewNull())
	b := value.NewObject()
	b.Set("x", num(2))
	b.Set("y", value.NewNull())
	diffs = mustCall(t, "Diff", a, b).(*value.Array)
	if len(diffs.Items) != 1 {
		t.Fatalf("diff count = %d", len(diffs.Items))
	}
	entry := diffs.Items[0].(*value.Object)
	path, _ := entry.Get("path")
	if !value.Equals(path, str("x")) {
		t.Errorf("diff path = %v", path)
	}
}

func TestNewGuidIsV4(t *testing.T) {
	got := mustCall(t, "NewGuid").(value.String)
	id, err := uuid.Parse(got.Value)
	if err != nil {
		t.Fatalf("NewGuid output %q: %v", got.Value, err)
	}
	if id.Version() != 4 {
		t.Errorf("uuid version = %d", id.Version())
	}

	other := mustCall(t, "NewGuid").(value.String)
	if got.Value == other.Value {
		t.Error("two guids collided")
	}
}

func TestRandomBuiltins(t *testing.T) {
	for i := 0; i < 50; i++ {
		got := mustCall(t, "RandomInt", num(5), num(10)).(value.Number)
		if got.Value < 5 || got.Value >= 10 {
			t.Fatalf("RandomInt out of range: %v", got.Value)
		}
	}

	s := mustCall(t, "RandomString", num(32)).(value.String)
	if len(s.Value) != 32 {
		t.Errorf("RandomString length = %d", len(s.Value))
	}
	if strings.TrimSpace(s.Value) != s.Value {
		t.Error("RandomString contains whitespace")
	}
}

func TestSleepObservesCancellation(t *testing.T) {
	fn, _ := stdlib.Default().Lookup("Sleep")
	ctx, cancel := context.WithCancel(context.Background())
	ec := execution.NewContext(ctx, &execution.Options{MaxExecutionTime: time.Minute})
	defer ec.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	_, err := fn.Call(ec, []value.Value{num(10_000)})
	if err == nil {
		t.Fatal("cancelled Sleep must fail")
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("Sleep did not wake promptly: %v", elapsed)
	}
}

func TestSleepValidatesArgument(t *testing.T) {
	if _, err := call(t, "Sleep", num(-1)); err == nil {
		t.Error("negative sleep must fail")
	}
	if _, err := call(t, "Sleep", num(0)); err != nil {
		t.Errorf("zero sleep should return immediately: %v", err)
	}
}

func TestLogFunction(t *testing.T) {
	var got []string
	fn := stdlib.LogFunction(func(msg string) { got = append(got, msg) })
	ec := execution.NewContext(context.Background(), nil)
	defer ec.Close()
	if _, err := fn.Call(ec, []value.Value{str("hello")}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("sink got %v", got)
	}
}
