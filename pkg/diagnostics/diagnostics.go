// Package diagnostics defines the Jyro diagnostic codes, severities, and the
// structured error type that runtime failures travel through.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meschsystems/jyro/pkg/ast"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// MarshalJSON renders the severity as its lower-case name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Location is a source position attached to a diagnostic.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Length int `json:"length"`
}

// LocationFromSpan converts an AST span into a diagnostic location.
// Length is only meaningful when the span stays on one line.
func LocationFromSpan(span ast.Span) *Location {
	length := 0
	if span.EndLine == span.StartLine && span.EndCol > span.StartCol {
		length = span.EndCol - span.StartCol
	}
	return &Location{Line: span.StartLine, Column: span.StartCol, Length: length}
}

// TemplateProvider supplies localized message templates per code. Returning
// ok=false falls back to the default English template.
type TemplateProvider interface {
	Template(code Code) (string, bool)
}

// Diagnostic represents one issue from any pipeline stage.
type Diagnostic struct {
	Code      Code      `json:"code"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Args      []any     `json:"args,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Subsystem string    `json:"subsystem"`
}

// New builds a diagnostic with the default English message.
func New(code Code, severity Severity, loc *Location, args ...any) Diagnostic {
	return Diagnostic{
		Code:      code,
		Severity:  severity,
		Message:   FormatMessage(nil, code, args),
		Args:      args,
		Location:  loc,
		Subsystem: code.Subsystem(),
	}
}

// NewError builds an error-severity diagnostic.
func NewError(code Code, loc *Location, args ...any) Diagnostic {
	return New(code, Error, loc, args...)
}

// NewWarning builds a warning-severity diagnostic.
func NewWarning(code Code, loc *Location, args ...any) Diagnostic {
	return New(code, Warning, loc, args...)
}

// FormatMessage expands the template for code with positional args. A nil or
// silent provider falls back to the default English template; an unknown code
// falls back to the code itself.
func FormatMessage(provider TemplateProvider, code Code, args []any) string {
	var template string
	var ok bool
	if provider != nil {
		template, ok = provider.Template(code)
	}
	if !ok {
		template, ok = DefaultTemplate(code)
	}
	if !ok {
		return string(code)
	}
	return expand(template, args)
}

// expand substitutes {0}, {1}, ... placeholders. A placeholder with no
// matching argument expands to the empty string.
func expand(template string, args []any) string {
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '{' {
			sb.WriteByte(ch)
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			sb.WriteString(template[i:])
			break
		}
		idx := 0
		digits := template[i+1 : i+end]
		valid := len(digits) > 0
		for _, d := range digits {
			if d < '0' || d > '9' {
				valid = false
				break
			}
			idx = idx*10 + int(d-'0')
		}
		if !valid {
			sb.WriteString(template[i : i+end+1])
			i += end
			continue
		}
		if idx < len(args) {
			sb.WriteString(fmt.Sprint(args[idx]))
		}
		i += end
	}
	return sb.String()
}

// HasErrors reports whether any diagnostic in the list is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Format renders a single diagnostic for display.
func Format(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := ""
	if d.Location != nil {
		loc = fmt.Sprintf(" (Ln %d, Col %d)", d.Location.Line, d.Location.Column)
	}
	return fmt.Sprintf("%s[%s]: %s%s", d.Severity, d.Code, d.Message, loc)
}

// FormatAll renders a slice of diagnostics for display.
func FormatAll(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Format(d, true)
	}
	return strings.Join(parts, "\n")
}
