package runner

import "context"

// ExecuteRequest is the payload accepted by the execution endpoints and
// forwarded to an external engine.
type ExecuteRequest struct {
	Code  string `json:"code"`
	Stdin string `json:"stdin,omitempty"`
}

// ExecuteResult is the reshaped engine response returned to clients.
type ExecuteResult struct {
	Output       string `json:"output"`
	CompileError string `json:"compileError"`
	RuntimeError string `json:"runtimeError"`
	ExitCode     int    `json:"exitCode"`
	Success      bool   `json:"success"`
}

// Engine forwards a compile-and-run request to an external service. The
// service owns compilation and sandboxing entirely; implementations only
// reshape JSON.
type Engine interface {
	Name() string
	Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
}
