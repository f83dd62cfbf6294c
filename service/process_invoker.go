package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
)

const (
	// DefaultInvocationTimeout bounds a tool run when the invocation sets none
	DefaultInvocationTimeout = 5 * time.Minute

	// processWaitDelay is how long a killed tool may hold its output pipes
	processWaitDelay = 2 * time.Second
)

// ProcessInvokerImpl runs external tools as subprocesses
type ProcessInvokerImpl struct {
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// NewProcessInvoker creates a process invoker; a nil logger uses slog.Default()
func NewProcessInvoker(logger *slog.Logger) *ProcessInvokerImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessInvokerImpl{
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// Execute runs inv to completion and applies its exit-code policy.
// Exit 0 and SuccessCodes succeed, EmptyCodes succeed with Empty set, and
// anything else is a *domain.ToolInvocationError.
func (p *ProcessInvokerImpl) Execute(ctx context.Context, inv domain.Invocation) (result *domain.InvocationResult, err error) {
	ctx, span := startInvokeSpan(ctx, inv)
	defer span.End()

	start := time.Now()
	result = &domain.InvocationResult{}
	defer func() {
		setInvokeSpanResult(span, result.ExitCode, result.Empty, err)
		recordInvokeMetrics(ctx, inv.Tool, time.Since(start), err == nil)
	}()

	path, lookErr := p.lookPath(inv.Command)
	if lookErr != nil {
		p.logger.Warn("Tool not found",
			slog.String("tool", string(inv.Tool)),
			slog.String("command", inv.Command))
		return result, domain.NewToolInvocationError(inv.Tool, inv.Command, domain.ErrToolNotFound)
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultInvocationTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = processWaitDelay
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("Running tool",
		slog.String("tool", string(inv.Tool)),
		slog.String("command", path),
		slog.String("args", strings.Join(inv.Args, " ")),
		slog.String("dir", inv.Dir))

	runErr := cmd.Run()
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()
	result.Duration = time.Since(start)

	// Caller cancellation wins over the per-invocation deadline
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if cmdCtx.Err() == context.DeadlineExceeded {
		p.logger.Warn("Tool timed out",
			slog.String("tool", string(inv.Tool)),
			slog.Duration("timeout", timeout))
		return result, domain.NewToolInvocationError(inv.Tool, inv.Command, domain.ErrToolTimeout).
			WithStderr(stderr.String())
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, domain.NewToolInvocationError(inv.Tool, inv.Command, runErr).
				WithStderr(stderr.String())
		}
		result.ExitCode = exitErr.ExitCode()
	}

	p.logger.Debug("Tool finished",
		slog.String("tool", string(inv.Tool)),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("duration", result.Duration),
		slog.Int("stdout_bytes", len(result.Stdout)))

	switch {
	case result.ExitCode == 0, slices.Contains(inv.SuccessCodes, result.ExitCode):
		return result, nil
	case slices.Contains(inv.EmptyCodes, result.ExitCode):
		result.Empty = true
		return result, nil
	}

	p.logger.Warn("Tool exited with unexpected status",
		slog.String("tool", string(inv.Tool)),
		slog.Int("exit_code", result.ExitCode))
	return result, domain.NewToolInvocationError(inv.Tool, inv.Command, domain.ErrUnexpectedExit).
		WithExitCode(result.ExitCode).
		WithStderr(stderr.String())
}

// ToolAvailability reports where a command resolves on PATH
type ToolAvailability struct {
	Tool      domain.ToolName `json:"tool" yaml:"tool"`
	Command   string          `json:"command" yaml:"command"`
	Path      string          `json:"path,omitempty" yaml:"path,omitempty"`
	Available bool            `json:"available" yaml:"available"`
}

// Resolve looks up command without running it
func (p *ProcessInvokerImpl) Resolve(tool domain.ToolName, command string) ToolAvailability {
	path, err := p.lookPath(command)
	return ToolAvailability{
		Tool:      tool,
		Command:   command,
		Path:      path,
		Available: err == nil,
	}
}
