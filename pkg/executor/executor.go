package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Executor runs cluster commands. With tolerate set, a failing command
// returns its stderr text as output and a nil error.
type Executor interface {
	Run(ctx context.Context, command string, tolerate bool) (string, error)
}

// CommandError is returned for a failed command in strict mode.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q failed: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Shell executes commands through sh -c.
type Shell struct {
	shell  string
	logger *zap.Logger
}

// NewShell creates a Shell executor. A nil logger disables logging.
func NewShell(logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{shell: "sh", logger: logger}
}

func (s *Shell) Run(ctx context.Context, command string, tolerate bool) (string, error) {
	s.logger.Debug("running command", zap.String("command", command), zap.Bool("tolerate", tolerate))

	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		s.logger.Warn("command failed",
			zap.String("command", command),
			zap.String("stderr", errText),
			zap.Error(err),
		)
		if tolerate {
			return errText, nil
		}
		return "", &CommandError{Command: command, Stderr: errText, Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}
