package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/jonathan/urlimport/internal/types"
)

// KindCUE is the kind name of CUE units.
const KindCUE = "cue"

// CUE compiles CUE units. Running a CUE program validates it to concrete values
// and writes them as JSON.
type CUE struct{}

// NewCUE creates a CUE compiler.
func NewCUE() *CUE {
	return &CUE{}
}

// Kind implements Compiler.
func (c *CUE) Kind() string { return KindCUE }

// Suffix implements Compiler.
func (c *CUE) Suffix() string { return ".cue" }

// Compile implements Compiler.
func (c *CUE) Compile(file string, src []byte) (types.Program, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(file))
	if err := value.Err(); err != nil {
		return nil, cueSyntaxError(file, err)
	}
	return &CUEProgram{value: value, file: file}, nil
}

func cueSyntaxError(file string, err error) *SyntaxError {
	syntaxErr := &SyntaxError{
		File:    file,
		Message: strings.TrimSpace(cueerrors.Details(err, nil)),
		Cause:   err,
	}
	if list := cueerrors.Errors(err); len(list) > 0 {
		pos := list[0].Position()
		if pos.IsValid() {
			syntaxErr.Line = pos.Line()
			syntaxErr.Column = pos.Column()
		}
		syntaxErr.Message = list[0].Error()
	}
	return syntaxErr
}

// CUEProgram is a compiled CUE unit.
type CUEProgram struct {
	// cue.Value is not safe for concurrent use.
	mu    sync.Mutex
	value cue.Value
	file  string
}

// Kind implements types.Program.
func (p *CUEProgram) Kind() string { return KindCUE }

// Fields returns the unit's top-level field names in declaration order.
func (p *CUEProgram) Fields() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	iter, err := p.value.Fields()
	if err != nil {
		return nil
	}
	var names []string
	for iter.Next() {
		names = append(names, iter.Selector().String())
	}
	return names
}

// Run validates the unit and writes it as indented JSON to stdio.Out.
// An optional first argument selects a path inside the value, e.g. "server.port".
func (p *CUEProgram) Run(ctx context.Context, stdio types.Stdio, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	value := p.value
	if len(args) > 0 && args[0] != "" {
		value = value.LookupPath(cue.ParsePath(args[0]))
		if !value.Exists() {
			p.mu.Unlock()
			return fmt.Errorf("%s: field %q not found", p.file, args[0])
		}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		p.mu.Unlock()
		return cueSyntaxError(p.file, err)
	}
	raw, err := value.MarshalJSON()
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: failed to export: %w", p.file, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("%s: failed to format export: %w", p.file, err)
	}
	out.WriteByte('\n')

	w := stdio.Out
	if w == nil {
		w = io.Discard
	}
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("%s: failed to write output: %w", p.file, err)
	}
	return nil
}
