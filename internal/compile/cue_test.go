package compile

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/urlimport/internal/types"
)

func TestCUE_CompileAndRun(t *testing.T) {
	src := []byte(`
name: "svc"
port: 8000 + 80
`)
	prog, err := NewCUE().Compile("http://x/settings.cue", src)
	require.NoError(t, err)
	assert.Equal(t, KindCUE, prog.Kind())

	var out bytes.Buffer
	require.NoError(t, prog.Run(context.Background(), types.Stdio{Out: &out}))
	assert.JSONEq(t, `{"name": "svc", "port": 8080}`, out.String())
}

func TestCUE_RunSelectsPath(t *testing.T) {
	prog, err := NewCUE().Compile("settings.cue", []byte(`server: {host: "localhost", port: 15000}`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, prog.Run(context.Background(), types.Stdio{Out: &out}, "server.port"))
	assert.Equal(t, "15000\n", out.String())

	err = prog.Run(context.Background(), types.Stdio{Out: &out}, "server.missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCUE_Fields(t *testing.T) {
	prog, err := NewCUE().Compile("fields.cue", []byte("b: 1\na: 2\n"))
	require.NoError(t, err)

	cueProg, ok := prog.(*CUEProgram)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, cueProg.Fields())
}

func TestCUE_SyntaxError(t *testing.T) {
	_, err := NewCUE().Compile("bad.cue", []byte("a: {\n"))
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, "bad.cue", syntaxErr.File)
	assert.NotEmpty(t, syntaxErr.Message)
}

func TestCUE_IncompleteValueFailsAtRun(t *testing.T) {
	prog, err := NewCUE().Compile("open.cue", []byte("port: int\n"))
	require.NoError(t, err)

	err = prog.Run(context.Background(), types.Stdio{Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}
