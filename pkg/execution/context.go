// Package execution provides the per-run execution context: resource
// counters, the combined cancellation token, and the completion message.
package execution

import (
	"context"
	"errors"
	"time"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/value"
)

// Options holds the resource ceilings for one execution. The zero value of
// a field disables that ceiling; a nil *Options disables the limiter
// entirely (appropriate for trusted environments).
type Options struct {
	MaxStatements     int64
	MaxLoopIterations int64
	MaxCallDepth      int
	MaxExecutionTime  time.Duration
}

// Context is the mutable per-run state threaded through a compiled program.
// It is not safe for concurrent use; each execution owns its own.
type Context struct {
	opts   *Options
	ctx    context.Context
	cancel context.CancelFunc

	statements int64
	iterations int64
	depth      int

	message    string
	hasMessage bool

	returned    value.Value
	hasReturned bool
}

// NewContext builds an execution context. When opts carries a time limit,
// an internal timer cancels the combined token on expiry; cancellation of
// the parent token also cancels it, so either side can stop the run.
// Callers must Close the context when the execution finishes.
func NewContext(parent context.Context, opts *Options) *Context {
	if parent == nil {
		parent = context.Background()
	}
	ec := &Context{opts: opts}
	if opts != nil && opts.MaxExecutionTime > 0 {
		ec.ctx, ec.cancel = context.WithTimeout(parent, opts.MaxExecutionTime)
	} else {
		ec.ctx, ec.cancel = context.WithCancel(parent)
	}
	return ec
}

// Close releases the internal timer. Safe to call more than once.
func (ec *Context) Close() {
	ec.cancel()
}

// Token returns the combined cancellation token. Blocking builtins must
// observe it.
func (ec *Context) Token() context.Context {
	return ec.ctx
}

// checkCancelled distinguishes the limiter's own timer from host
// cancellation by the context's error: a deadline while a time limit is
// configured is the limiter's; anything else is the host's.
func (ec *Context) checkCancelled() error {
	if err := ec.ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ec.opts != nil && ec.opts.MaxExecutionTime > 0 {
			return diagnostics.Errorf(diagnostics.ExecutionTimeLimitExceeded, ec.opts.MaxExecutionTime)
		}
		return diagnostics.Errorf(diagnostics.CancelledByHost)
	}
	return nil
}

// AccountStatement accounts one statement boundary. It doubles as the
// cooperative cancellation poll.
func (ec *Context) AccountStatement() error {
	if err := ec.checkCancelled(); err != nil {
		return err
	}
	ec.statements++
	if ec.opts != nil && ec.opts.MaxStatements > 0 && ec.statements > ec.opts.MaxStatements {
		return diagnostics.Errorf(diagnostics.StatementLimitExceeded, ec.opts.MaxStatements)
	}
	return nil
}

// AccountLoopIteration accounts one loop-iteration boundary. The budget is
// cumulative across every loop in the execution.
func (ec *Context) AccountLoopIteration() error {
	if err := ec.checkCancelled(); err != nil {
		return err
	}
	ec.iterations++
	if ec.opts != nil && ec.opts.MaxLoopIterations > 0 && ec.iterations > ec.opts.MaxLoopIterations {
		return diagnostics.Errorf(diagnostics.LoopIterationLimitExceeded, ec.opts.MaxLoopIterations)
	}
	return nil
}

// EnterCall accounts one level of call depth. Callers must pair a
// successful EnterCall with ExitCall on every exit path.
func (ec *Context) EnterCall() error {
	if ec.opts != nil && ec.opts.MaxCallDepth > 0 && ec.depth+1 > ec.opts.MaxCallDepth {
		return diagnostics.Errorf(diagnostics.CallDepthLimitExceeded, ec.opts.MaxCallDepth)
	}
	ec.depth++
	return nil
}

// ExitCall releases one level of call depth.
func (ec *Context) ExitCall() {
	if ec.depth > 0 {
		ec.depth--
	}
}

// SetCompletionMessage records the human-readable completion reason set by
// return or fail.
func (ec *Context) SetCompletionMessage(msg string) {
	ec.message = msg
	ec.hasMessage = true
}

// CompletionMessage returns the recorded completion message, if any.
func (ec *Context) CompletionMessage() (string, bool) {
	return ec.message, ec.hasMessage
}

// SetReturnValue records an explicit result from a return statement that
// carried an expression. Without one, the run's result is the data graph.
func (ec *Context) SetReturnValue(v value.Value) {
	ec.returned = v
	ec.hasReturned = true
}

// ReturnValue returns the explicit result, if one was recorded.
func (ec *Context) ReturnValue() (value.Value, bool) {
	return ec.returned, ec.hasReturned
}

// Statements returns the number of accounted statements.
func (ec *Context) Statements() int64 {
	return ec.statements
}

// LoopIterations returns the number of accounted loop iterations.
func (ec *Context) LoopIterations() int64 {
	return ec.iterations
}

// CallDepth returns the current call depth.
func (ec *Context) CallDepth() int {
	return ec.depth
}
