package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codechat-service/internal/runner"
)

var (
	ErrSessionNotFound = errors.New("terminal session not found")
	ErrUnknownEngine   = errors.New("unknown engine")
)

// Session is one simulated interactive run. The external compile API is
// stateless, so every submitted line re-runs the full program with all
// input collected so far; LastOutput remembers what the client has already
// been shown.
type Session struct {
	ID         string
	OwnerID    int
	Engine     string
	Code       string
	InputLines []string
	LastOutput string
	LastActive time.Time
}

// StepResult is returned for the initial run and for each input submission.
// Output carries only the text beyond what the session already displayed.
type StepResult struct {
	SessionID       string `json:"session_id,omitempty"`
	Output          string `json:"output"`
	WaitingForInput bool   `json:"waiting_for_input"`
	CompileError    string `json:"compileError"`
	RuntimeError    string `json:"runtimeError"`
	ExitCode        int    `json:"exitCode"`
	Success         bool   `json:"success"`
}

// Manager owns the live terminal sessions.
type Manager struct {
	engines       map[string]runner.Engine
	defaultEngine string
	ttl           time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a Manager over the available engines. The first engine
// is the default when a session does not name one.
func NewManager(engines []runner.Engine, ttl time.Duration) *Manager {
	byName := make(map[string]runner.Engine, len(engines))
	defaultEngine := ""
	for _, e := range engines {
		if defaultEngine == "" {
			defaultEngine = e.Name()
		}
		byName[e.Name()] = e
	}
	return &Manager{
		engines:       byName,
		defaultEngine: defaultEngine,
		ttl:           ttl,
		sessions:      make(map[string]*Session),
	}
}

// Start runs the code once with empty stdin. When the source reads from
// standard input a session is created so further lines can be submitted;
// otherwise the run is one-shot and no session is kept.
func (m *Manager) Start(ctx context.Context, ownerID int, code, engineName string) (*StepResult, error) {
	engine, err := m.engine(engineName)
	if err != nil {
		return nil, err
	}

	result, err := engine.Execute(ctx, runner.ExecuteRequest{Code: code})
	if err != nil {
		return nil, err
	}

	step := &StepResult{
		Output:       result.Output,
		CompileError: result.CompileError,
		RuntimeError: result.RuntimeError,
		ExitCode:     result.ExitCode,
		Success:      result.Success,
	}

	if !runner.ReadsStdin(code) || result.CompileError != "" {
		return step, nil
	}

	session := &Session{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Engine:     engine.Name(),
		Code:       code,
		LastOutput: result.Output,
		LastActive: time.Now(),
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	step.SessionID = session.ID
	step.WaitingForInput = true
	return step, nil
}

// SubmitInput appends one stdin line and re-runs the program with all
// collected input. The returned output is only the delta beyond the
// previous snapshot, so prior lines are never duplicated.
func (m *Manager) SubmitInput(ctx context.Context, sessionID string, ownerID int, line string) (*StepResult, error) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if !ok || session.OwnerID != ownerID {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	session.InputLines = append(session.InputLines, line)
	stdin := strings.Join(session.InputLines, "\n") + "\n"
	code, engineName, previous := session.Code, session.Engine, session.LastOutput
	m.mu.Unlock()

	engine, err := m.engine(engineName)
	if err != nil {
		return nil, err
	}

	result, err := engine.Execute(ctx, runner.ExecuteRequest{Code: code, Stdin: stdin})
	if err != nil {
		// Roll back the line so the caller can retry it.
		m.mu.Lock()
		if s, stillThere := m.sessions[sessionID]; stillThere {
			s.InputLines = s.InputLines[:len(s.InputLines)-1]
		}
		m.mu.Unlock()
		return nil, err
	}

	delta := outputDelta(previous, result.Output)

	m.mu.Lock()
	if s, stillThere := m.sessions[sessionID]; stillThere {
		s.LastOutput = result.Output
		s.LastActive = time.Now()
	}
	m.mu.Unlock()

	return &StepResult{
		SessionID:       sessionID,
		Output:          delta,
		WaitingForInput: result.CompileError == "",
		CompileError:    result.CompileError,
		RuntimeError:    result.RuntimeError,
		ExitCode:        result.ExitCode,
		Success:         result.Success,
	}, nil
}

// Close drops a session.
func (m *Manager) Close(sessionID string, ownerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || session.OwnerID != ownerID {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartJanitor evicts idle sessions until ctx is cancelled.
func (m *Manager) StartJanitor(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if evicted := m.sweep(now); evicted > 0 {
					log.Printf("terminal janitor evicted %d idle sessions", evicted)
				}
			}
		}
	}()
}

func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, session := range m.sessions {
		if now.Sub(session.LastActive) > m.ttl {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) engine(name string) (runner.Engine, error) {
	if name == "" {
		name = m.defaultEngine
	}
	engine, ok := m.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	return engine, nil
}

// outputDelta returns the part of next the client has not seen. Successive
// snapshots normally extend the previous one; when they diverge (a prompt
// echoing the new input mid-line, for instance) the delta starts at the
// first differing byte.
func outputDelta(previous, next string) string {
	if previous == "" {
		return next
	}
	if strings.HasPrefix(next, previous) {
		return next[len(previous):]
	}
	limit := len(previous)
	if len(next) < limit {
		limit = len(next)
	}
	i := 0
	for i < limit && previous[i] == next[i] {
		i++
	}
	return next[i:]
}
