package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// PistonEngine proxies to a Piston execution API.
type PistonEngine struct {
	httpClient *resty.Client
}

type pistonFile struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin,omitempty"`
}

type pistonStage struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Code   int    `json:"code"`
	Signal string `json:"signal"`
}

type pistonResponse struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Compile  *pistonStage `json:"compile"`
	Run      pistonStage  `json:"run"`
	Message  string       `json:"message"`
}

// NewPistonEngine constructs a Piston client.
func NewPistonEngine(baseURL string, timeout time.Duration) *PistonEngine {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", "codechat-service/1.0").
		SetTimeout(timeout)
	return &PistonEngine{httpClient: client}
}

func (e *PistonEngine) Name() string { return "piston" }

// Execute forwards the request and reshapes Piston's compile/run stages.
func (e *PistonEngine) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	body := pistonRequest{
		Language: "c++",
		Version:  "*",
		Files:    []pistonFile{{Name: "main.cpp", Content: req.Code}},
		Stdin:    req.Stdin,
	}

	var apiResp pistonResponse
	httpResp, err := e.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&apiResp).
		Post("/execute")
	if err != nil {
		return nil, fmt.Errorf("piston request failed: %w", err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("piston error (%d): %s", httpResp.StatusCode(), httpResp.String())
	}
	if apiResp.Message != "" {
		return nil, fmt.Errorf("piston rejected request: %s", apiResp.Message)
	}

	if apiResp.Compile != nil && apiResp.Compile.Code != 0 {
		compileErr := apiResp.Compile.Stderr
		if compileErr == "" {
			compileErr = apiResp.Compile.Stdout
		}
		return &ExecuteResult{
			CompileError: compileErr,
			ExitCode:     apiResp.Compile.Code,
			Success:      false,
		}, nil
	}

	result := &ExecuteResult{
		Output:   apiResp.Run.Stdout,
		ExitCode: apiResp.Run.Code,
		Success:  apiResp.Run.Code == 0,
	}
	if !result.Success {
		result.RuntimeError = apiResp.Run.Stderr
		if result.RuntimeError == "" && apiResp.Run.Signal != "" {
			result.RuntimeError = "terminated by signal " + apiResp.Run.Signal
		}
	}
	return result, nil
}
