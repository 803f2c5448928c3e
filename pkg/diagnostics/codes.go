package diagnostics

// Code identifies one diagnostic message. Codes are "JM" followed by four
// decimal digits; the first digit names the pipeline stage (1 lexer,
// 2 parser, 3 validator, 4 linker, 5 runtime) and the hundreds digit groups
// related messages within a stage.
type Code string

// Lexer codes.
const (
	UnexpectedCharacter Code = "JM1000"
	UnterminatedString  Code = "JM1001"
	MalformedNumber     Code = "JM1002"
	InvalidEscape       Code = "JM1003"
)

// Parser codes.
const (
	UnexpectedToken     Code = "JM2000"
	ExpectedToken       Code = "JM2001"
	ExpectedExpression  Code = "JM2002"
	ExpectedStatement   Code = "JM2003"
	UnknownTypeName     Code = "JM2100"
	InvalidAssignTarget Code = "JM2101"
)

// Validator codes.
const (
	UndeclaredVariable    Code = "JM3000"
	VariableRedeclaration Code = "JM3001"
	BreakOutsideLoop      Code = "JM3002"
	ContinueOutsideLoop   Code = "JM3003"
	ExpressionNotAllowed  Code = "JM3004"
	UnreachableCode       Code = "JM3100"
	ReservedName          Code = "JM3200"
	LoopNestingTooDeep    Code = "JM3300"
)

// Linker codes.
const (
	UndefinedFunction Code = "JM4000"
	TooFewArguments   Code = "JM4001"
	TooManyArguments  Code = "JM4002"
	LambdaRequired    Code = "JM4003"
	FunctionOverride  Code = "JM4100"
)

// Runtime codes.
const (
	RuntimeError               Code = "JM5000"
	InvalidType                Code = "JM5100"
	IncomparableTypes          Code = "JM5101"
	NotIterable                Code = "JM5102"
	InvalidOperand             Code = "JM5103"
	DivisionByZero             Code = "JM5200"
	ModuloByZero               Code = "JM5201"
	NonNegativeIntegerRequired Code = "JM5202"
	PropertyAccessOnNull       Code = "JM5300"
	PropertyAccessInvalidType  Code = "JM5301"
	IndexAccessOnNull          Code = "JM5302"
	IndexOutOfRange            Code = "JM5303"
	NegativeIndex              Code = "JM5304"
	SetPropertyOnNonObject     Code = "JM5305"
	SetIndexOnNonContainer     Code = "JM5306"
	InvalidIndexType           Code = "JM5307"
	FunctionRuntimeError       Code = "JM5400"
	ScriptFailure              Code = "JM5500"
	StatementLimitExceeded     Code = "JM5900"
	LoopIterationLimitExceeded Code = "JM5901"
	CallDepthLimitExceeded     Code = "JM5902"
	ExecutionTimeLimitExceeded Code = "JM5903"
	CancelledByHost            Code = "JM5904"
)

// templates holds the default English message template for each code.
// Placeholders are positional: {0}, {1}, ...
var templates = map[Code]string{
	UnexpectedCharacter: "unexpected character '{0}'",
	UnterminatedString:  "unterminated string literal",
	MalformedNumber:     "malformed number literal '{0}'",
	InvalidEscape:       "invalid escape sequence '\\{0}'",

	UnexpectedToken:     "unexpected token '{0}'",
	ExpectedToken:       "expected {0} but found '{1}'",
	ExpectedExpression:  "expected an expression but found '{0}'",
	ExpectedStatement:   "expected a statement but found '{0}'",
	UnknownTypeName:     "unknown type name '{0}'",
	InvalidAssignTarget: "invalid assignment target",

	UndeclaredVariable:    "variable '{0}' is not declared",
	VariableRedeclaration: "variable '{0}' is already declared in this scope",
	BreakOutsideLoop:      "'break' is only allowed inside a loop",
	ContinueOutsideLoop:   "'continue' is only allowed inside a loop",
	ExpressionNotAllowed:  "only function calls may be used as statements",
	UnreachableCode:       "unreachable code",
	ReservedName:          "'{0}' is a reserved name and cannot be declared",
	LoopNestingTooDeep:    "loop nesting exceeds the maximum depth of {0}",

	UndefinedFunction: "function '{0}' is not defined{1}",
	TooFewArguments:   "function '{0}' expects at least {1} argument(s) but got {2}",
	TooManyArguments:  "function '{0}' expects at most {1} argument(s) but got {2}",
	LambdaRequired:    "argument {1} of function '{0}' must be a lambda expression",
	FunctionOverride:  "host function '{0}' overrides a builtin of the same name",

	RuntimeError:               "runtime error: {0}",
	InvalidType:                "variable '{0}' expects {1} but got {2}",
	IncomparableTypes:          "cannot compare {0} with {1}",
	NotIterable:                "value of type {0} is not iterable",
	InvalidOperand:             "operator '{0}' cannot be applied to {1}",
	DivisionByZero:             "division by zero",
	ModuloByZero:               "modulo by zero",
	NonNegativeIntegerRequired: "loop step must be a positive integer but got {0}",
	PropertyAccessOnNull:       "cannot read property '{0}' of null",
	PropertyAccessInvalidType:  "cannot read property '{0}' of {1}",
	IndexAccessOnNull:          "cannot index null",
	IndexOutOfRange:            "index {0} is out of range for length {1}",
	NegativeIndex:              "negative index {0} is not allowed here",
	SetPropertyOnNonObject:     "cannot set property '{0}' on {1}",
	SetIndexOnNonContainer:     "cannot set index on {0}",
	InvalidIndexType:           "{0} cannot be indexed with {1}",
	FunctionRuntimeError:       "function '{0}': {1}",
	ScriptFailure:              "script failed: {0}",
	StatementLimitExceeded:     "statement limit of {0} exceeded",
	LoopIterationLimitExceeded: "loop iteration limit of {0} exceeded",
	CallDepthLimitExceeded:     "call depth limit of {0} exceeded",
	ExecutionTimeLimitExceeded: "execution time limit of {0} exceeded",
	CancelledByHost:            "execution cancelled by host",
}

// Subsystem returns the lower-cased pipeline stage name derived from the
// code's leading digit.
func (c Code) Subsystem() string {
	if len(c) < 3 {
		return "unknown"
	}
	switch c[2] {
	case '1':
		return "lexer"
	case '2':
		return "parser"
	case '3':
		return "validator"
	case '4':
		return "linker"
	case '5':
		return "runtime"
	}
	return "unknown"
}

// DefaultTemplate returns the built-in English template for a code.
func DefaultTemplate(c Code) (string, bool) {
	t, ok := templates[c]
	return t, ok
}
