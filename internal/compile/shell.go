package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jonathan/urlimport/internal/types"
)

// KindShell is the kind name of POSIX shell units.
const KindShell = "sh"

// Shell compiles POSIX shell units with mvdan/sh.
type Shell struct {
	// Env is the environment programs run with; empty inherits the process environment.
	Env []string
	// Dir is the working directory programs run in; empty uses the current directory.
	Dir string
}

// NewShell creates a shell compiler.
func NewShell() *Shell {
	return &Shell{}
}

// Kind implements Compiler.
func (s *Shell) Kind() string { return KindShell }

// Suffix implements Compiler.
func (s *Shell) Suffix() string { return ".sh" }

// Compile implements Compiler.
func (s *Shell) Compile(file string, src []byte) (types.Program, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	prog, err := parser.Parse(bytes.NewReader(src), file)
	if err != nil {
		var parseErr syntax.ParseError
		if errors.As(err, &parseErr) {
			return nil, &SyntaxError{
				File:    file,
				Line:    int(parseErr.Pos.Line()),
				Column:  int(parseErr.Pos.Col()),
				Message: parseErr.Text,
				Cause:   err,
			}
		}
		var langErr syntax.LangError
		if errors.As(err, &langErr) {
			return nil, &SyntaxError{
				File:    file,
				Line:    int(langErr.Pos.Line()),
				Column:  int(langErr.Pos.Col()),
				Message: langErr.Feature + ": not supported in POSIX shell",
				Cause:   err,
			}
		}
		return nil, &SyntaxError{File: file, Message: err.Error(), Cause: err}
	}
	return &ShellProgram{file: prog, env: s.Env, dir: s.Dir}, nil
}

// ShellProgram is a parsed shell unit.
type ShellProgram struct {
	file *syntax.File
	env  []string
	dir  string
}

// Kind implements types.Program.
func (p *ShellProgram) Kind() string { return KindShell }

// Functions returns the names of the functions the unit declares, in source order.
func (p *ShellProgram) Functions() []string {
	var names []string
	syntax.Walk(p.file, func(node syntax.Node) bool {
		if decl, ok := node.(*syntax.FuncDecl); ok {
			names = append(names, decl.Name.Value)
		}
		return true
	})
	return names
}

// Run executes the unit with args as positional parameters.
// A non-zero exit status is returned as *ExitError.
func (p *ShellProgram) Run(ctx context.Context, stdio types.Stdio, args ...string) error {
	opts := []interp.RunnerOption{
		interp.StdIO(stdio.In, stdio.Out, stdio.Err),
	}
	if p.dir != "" {
		opts = append(opts, interp.Dir(p.dir))
	}
	if len(p.env) > 0 {
		opts = append(opts, interp.Env(expand.ListEnviron(p.env...)))
	}
	// "--" stops args like "-v" from being read as shell options.
	if len(args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, p.file); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Code: int(status)}
		}
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}
