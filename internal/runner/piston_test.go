package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPistonServer(t *testing.T, resp pistonResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/execute", r.URL.Path)

		var req pistonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "c++", req.Language)
		require.Len(t, req.Files, 1)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestPistonExecuteSuccess(t *testing.T) {
	srv := newPistonServer(t, pistonResponse{
		Run: pistonStage{Stdout: "42\n", Code: 0},
	})
	defer srv.Close()

	engine := NewPistonEngine(srv.URL, 5*time.Second)
	result, err := engine.Execute(context.Background(), ExecuteRequest{Code: "int main(){}", Stdin: "42\n"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "42\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestPistonExecuteCompileError(t *testing.T) {
	srv := newPistonServer(t, pistonResponse{
		Compile: &pistonStage{Stderr: "error: expected ';'", Code: 1},
		Run:     pistonStage{},
	})
	defer srv.Close()

	engine := NewPistonEngine(srv.URL, 5*time.Second)
	result, err := engine.Execute(context.Background(), ExecuteRequest{Code: "garbage"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "error: expected ';'", result.CompileError)
	assert.Empty(t, result.Output)
	assert.Equal(t, 1, result.ExitCode)
}

func TestPistonExecuteRuntimeError(t *testing.T) {
	srv := newPistonServer(t, pistonResponse{
		Compile: &pistonStage{Code: 0},
		Run:     pistonStage{Stderr: "segmentation fault", Code: 139},
	})
	defer srv.Close()

	engine := NewPistonEngine(srv.URL, 5*time.Second)
	result, err := engine.Execute(context.Background(), ExecuteRequest{Code: "int main(){int*p=0;return *p;}"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "segmentation fault", result.RuntimeError)
	assert.Equal(t, 139, result.ExitCode)
}

func TestPistonExecuteRejected(t *testing.T) {
	srv := newPistonServer(t, pistonResponse{Message: "runtime not found"})
	defer srv.Close()

	engine := NewPistonEngine(srv.URL, 5*time.Second)
	_, err := engine.Execute(context.Background(), ExecuteRequest{Code: "int main(){}"})
	assert.Error(t, err)
}
