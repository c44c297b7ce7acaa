package execs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/cardfont/pkg/log"
)

type Executor struct {
	tracer  trace.Tracer
	cmd     Command
	baseEnv []string
}

// NewExecutor creates an [Executor] for cmd. The base environment is
// filtered with [Command.Environ].
func NewExecutor(cmd Command, baseEnv []string) Executor {
	return Executor{
		tracer:  otel.Tracer("executor"),
		cmd:     cmd,
		baseEnv: baseEnv,
	}
}

// Exec runs the command with any extra arguments appended.
func (e Executor) Exec(ctx context.Context, extraArgs ...string) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", e.String()),
	))
	defer span.End()

	if e.cmd.Command == "" {
		return nil, ErrEmptyCommand
	}

	logger := log.WithContext(ctx).With(
		slog.String("command", e.String()),
	)

	start := time.Now()

	args := append([]string{}, e.cmd.Args...)
	args = append(args, extraArgs...)

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	cmd := exec.CommandContext(ctx, e.cmd.Command, args...)
	cmd.Env = e.cmd.Environ(e.baseEnv)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		span.RecordError(err)
		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.String("stderr", result.Stderr),
			slog.Any("error", err),
		)

		if stdout.Len() > 0 || stderr.Len() > 0 {
			return result, fmt.Errorf("%w: %w", ErrCommandExecution, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (e Executor) String() string {
	return e.cmd.String()
}
