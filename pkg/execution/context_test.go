package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
)

func expectCode(t *testing.T, err error, code diagnostics.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	se, ok := err.(*diagnostics.ScriptError)
	if !ok {
		t.Fatalf("expected *ScriptError, got %T", err)
	}
	if se.Code != code {
		t.Fatalf("got %s, want %s", se.Code, code)
	}
}

func TestUnlimitedWithoutOptions(t *testing.T) {
	ec := execution.NewContext(context.Background(), nil)
	defer ec.Close()
	for i := 0; i < 10_000; i++ {
		if err := ec.AccountStatement(); err != nil {
			t.Fatalf("statement %d: %v", i, err)
		}
		if err := ec.AccountLoopIteration(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}

func TestStatementLimitExact(t *testing.T) {
	ec := execution.NewContext(context.Background(), &execution.Options{MaxStatements: 3})
	defer ec.Close()
	for i := 0; i < 3; i++ {
		if err := ec.AccountStatement(); err != nil {
			t.Fatalf("statement %d must pass: %v", i, err)
		}
	}
	expectCode(t, ec.AccountStatement(), diagnostics.StatementLimitExceeded)
}

func TestLoopIterationLimit(t *testing.T) {
	ec := execution.NewContext(context.Background(), &execution.Options{MaxLoopIterations: 2})
	defer ec.Close()
	ec.AccountLoopIteration()
	ec.AccountLoopIteration()
	expectCode(t, ec.AccountLoopIteration(), diagnostics.LoopIterationLimitExceeded)
}

func TestCallDepth(t *testing.T) {
	ec := execution.NewContext(context.Background(), &execution.Options{MaxCallDepth: 2})
	defer ec.Close()

	if err := ec.EnterCall(); err != nil {
		t.Fatal(err)
	}
	if err := ec.EnterCall(); err != nil {
		t.Fatal(err)
	}
	expectCode(t, ec.EnterCall(), diagnostics.CallDepthLimitExceeded)

	// Leaving a call frees the slot again.
	ec.ExitCall()
	if err := ec.EnterCall(); err != nil {
		t.Errorf("EnterCall after ExitCall: %v", err)
	}
	if ec.CallDepth() != 2 {
		t.Errorf("depth = %d, want 2", ec.CallDepth())
	}
}

func TestTimeLimitBecomesDiagnostic(t *testing.T) {
	ec := execution.NewContext(context.Background(), &execution.Options{MaxExecutionTime: 5 * time.Millisecond})
	defer ec.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if err := ec.AccountStatement(); err != nil {
			expectCode(t, err, diagnostics.ExecutionTimeLimitExceeded)
			return
		}
	}
	t.Fatal("time limit never fired")
}

func TestHostCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ec := execution.NewContext(ctx, &execution.Options{MaxStatements: 100})
	defer ec.Close()

	if err := ec.AccountStatement(); err != nil {
		t.Fatalf("before cancel: %v", err)
	}
	cancel()
	expectCode(t, ec.AccountStatement(), diagnostics.CancelledByHost)
	expectCode(t, ec.AccountLoopIteration(), diagnostics.CancelledByHost)
}

func TestLinkedTokenVisibleToBuiltins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ec := execution.NewContext(ctx, &execution.Options{MaxExecutionTime: time.Minute})
	defer ec.Close()

	select {
	case <-ec.Token().Done():
		t.Fatal("token fired early")
	default:
	}
	cancel()
	select {
	case <-ec.Token().Done():
	case <-time.After(time.Second):
		t.Fatal("host cancellation did not propagate to the combined token")
	}
}

func TestCompletionMessage(t *testing.T) {
	ec := execution.NewContext(context.Background(), nil)
	defer ec.Close()

	if _, ok := ec.CompletionMessage(); ok {
		t.Fatal("fresh context has no message")
	}
	ec.SetCompletionMessage("done early")
	msg, ok := ec.CompletionMessage()
	if !ok || msg != "done early" {
		t.Errorf("message = %q, %v", msg, ok)
	}
}

func TestCounters(t *testing.T) {
	ec := execution.NewContext(context.Background(), nil)
	defer ec.Close()
	ec.AccountStatement()
	ec.AccountStatement()
	ec.AccountLoopIteration()
	if ec.Statements() != 2 || ec.LoopIterations() != 1 {
		t.Errorf("counters = %d, %d", ec.Statements(), ec.LoopIterations())
	}
}
