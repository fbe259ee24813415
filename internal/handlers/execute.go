package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/observability"
	"codechat-service/internal/runner"
	"codechat-service/internal/telemetry"
)

// ExecuteHandler proxies one-shot code executions to a compile engine.
type ExecuteHandler struct {
	engine runner.Engine
	audit  *telemetry.AuditEmitter
}

// NewExecuteHandler constructs an ExecuteHandler bound to one engine.
func NewExecuteHandler(engine runner.Engine, audit *telemetry.AuditEmitter) *ExecuteHandler {
	return &ExecuteHandler{engine: engine, audit: audit}
}

// Execute compiles and runs the submitted code, reshaping the engine
// response into the uniform result contract.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req runner.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	started := time.Now()
	result, err := h.engine.Execute(c.Request.Context(), req)
	if err != nil {
		observability.ObserveExecution(h.engine.Name(), "transport_error", time.Since(started))
		h.emitAudit(c, "ERROR", "Code execution failed upstream")
		c.JSON(http.StatusBadGateway, gin.H{"error": "execution service unavailable"})
		return
	}

	observability.ObserveExecution(h.engine.Name(), executionOutcome(result), time.Since(started))
	h.emitAudit(c, "INFO", "Code executed")
	c.JSON(http.StatusOK, result)
}

func executionOutcome(result *runner.ExecuteResult) string {
	switch {
	case result.CompileError != "":
		return "compile_error"
	case result.Success:
		return "success"
	default:
		return "runtime_error"
	}
}

func (h *ExecuteHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
