package runner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// WandboxEngine proxies to the Wandbox compile API.
type WandboxEngine struct {
	httpClient *resty.Client
	compiler   string
}

type wandboxRequest struct {
	Code     string `json:"code"`
	Compiler string `json:"compiler"`
	Stdin    string `json:"stdin,omitempty"`
	Options  string `json:"options,omitempty"`
}

type wandboxResponse struct {
	Status         string `json:"status"`
	Signal         string `json:"signal"`
	CompilerOutput string `json:"compiler_output"`
	CompilerError  string `json:"compiler_error"`
	ProgramOutput  string `json:"program_output"`
	ProgramError   string `json:"program_error"`
}

// NewWandboxEngine constructs a Wandbox client. compiler selects the
// toolchain, e.g. "gcc-head".
func NewWandboxEngine(baseURL, compiler string, timeout time.Duration) *WandboxEngine {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", "codechat-service/1.0").
		SetTimeout(timeout)
	return &WandboxEngine{httpClient: client, compiler: compiler}
}

func (e *WandboxEngine) Name() string { return "wandbox" }

// Execute forwards the request and reshapes Wandbox's response fields.
func (e *WandboxEngine) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	body := wandboxRequest{
		Code:     req.Code,
		Compiler: e.compiler,
		Stdin:    req.Stdin,
		Options:  "warning,gnu++17",
	}

	var apiResp wandboxResponse
	httpResp, err := e.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&apiResp).
		Post("/api/compile.json")
	if err != nil {
		return nil, fmt.Errorf("wandbox request failed: %w", err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("wandbox error (%d): %s", httpResp.StatusCode(), httpResp.String())
	}

	// Wandbox reports the exit status as a string; a killing signal leaves
	// it empty.
	exitCode := 0
	if apiResp.Status != "" {
		if parsed, perr := strconv.Atoi(apiResp.Status); perr == nil {
			exitCode = parsed
		}
	} else if apiResp.Signal != "" {
		exitCode = 1
	}

	result := &ExecuteResult{
		Output:       apiResp.ProgramOutput,
		CompileError: apiResp.CompilerError,
		ExitCode:     exitCode,
		Success:      exitCode == 0 && apiResp.CompilerError == "",
	}
	if !result.Success && result.CompileError == "" {
		result.RuntimeError = apiResp.ProgramError
		if result.RuntimeError == "" && apiResp.Signal != "" {
			result.RuntimeError = "terminated by signal " + apiResp.Signal
		}
	}
	return result, nil
}
