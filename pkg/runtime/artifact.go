package runtime

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
)

// Artifacts carry the validated AST so the front end can be skipped. The
// host function set is not part of the artifact, so loading always re-runs
// linking against the current table.

var artifactMagic = []byte("JYRO")

const artifactVersion = byte(1)

// SaveArtifact serializes a compiled program into the precompiled artifact
// form.
func (e *Engine) SaveArtifact(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(artifactMagic)
	buf.WriteByte(artifactVersion)
	if err := gob.NewEncoder(&buf).Encode(p.source); err != nil {
		return nil, fmt.Errorf("cannot encode program: %w", err)
	}
	return buf.Bytes(), nil
}

// CompileArtifact loads a precompiled artifact, re-links it against the
// engine's current function table, and compiles it. The result is
// interchangeable with CompileSource output.
func (e *Engine) CompileArtifact(artifact []byte) (*Program, []diagnostics.Diagnostic) {
	started := time.Now()
	if len(artifact) < len(artifactMagic)+1 || !bytes.Equal(artifact[:len(artifactMagic)], artifactMagic) {
		return nil, []diagnostics.Diagnostic{
			diagnostics.NewError(diagnostics.RuntimeError, nil, "not a Jyro artifact"),
		}
	}
	if artifact[len(artifactMagic)] != artifactVersion {
		return nil, []diagnostics.Diagnostic{
			diagnostics.NewError(diagnostics.RuntimeError, nil,
				fmt.Sprintf("unsupported artifact version %d", artifact[len(artifactMagic)])),
		}
	}

	var program ast.Program
	dec := gob.NewDecoder(bytes.NewReader(artifact[len(artifactMagic)+1:]))
	if err := dec.Decode(&program); err != nil {
		return nil, []diagnostics.Diagnostic{
			diagnostics.NewError(diagnostics.RuntimeError, nil, fmt.Sprintf("corrupt artifact: %v", err)),
		}
	}
	e.record(StageDeserialize, started)

	return e.build(&program)
}

// CompileToArtifact compiles source and serializes it in one step.
func (e *Engine) CompileToArtifact(source string) ([]byte, []diagnostics.Diagnostic) {
	program, diags := e.CompileSource(source)
	if program == nil {
		return nil, diags
	}
	artifact, err := e.SaveArtifact(program)
	if err != nil {
		return nil, []diagnostics.Diagnostic{
			diagnostics.NewError(diagnostics.RuntimeError, nil, err.Error()),
		}
	}
	return artifact, diags
}
