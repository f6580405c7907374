package validator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// infoMarker prefixes the diagnostic lines worth keeping; everything
// else is tool banner noise.
const infoMarker = "[info]"

// commandRunner abstracts subprocess execution so adapters can be
// tested against canned output.
type commandRunner interface {
	// run executes the tool and returns the [info]-prefixed lines of
	// its combined stdout/stderr, in order, plus the exit code.
	run(ctx context.Context, name string, args ...string) ([]string, int, error)
}

// execRunner runs real subprocesses, draining combined output
// line-by-line until end-of-stream before reaping the exit status.
type execRunner struct {
	workDir string
	timeout time.Duration
	logger  *zap.Logger
}

func (r *execRunner) run(ctx context.Context, name string, args ...string) ([]string, int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("pipe %s output: %w", name, err)
	}
	cmd.Stderr = cmd.Stdout // merge stderr into the stdout pipe

	r.logger.Info("running external validator",
		zap.String("tool", name),
		zap.Strings("args", args))

	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("start %s: %w", name, err)
	}

	var retained []string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), infoMarker) {
			retained = append(retained, line)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()

	// A dead context means the subprocess was killed, not that it ran to
	// completion: its (empty) output must never reach the adapters.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, 0, &TimeoutError{Tool: name, Timeout: r.timeout}
		}
		return nil, 0, fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}
	if scanErr != nil {
		return nil, 0, fmt.Errorf("read %s output: %w", name, scanErr)
	}

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	// A non-zero exit is not authoritative: the tools signal outcome
	// through their text output, which the adapters interpret.
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, exitCode, fmt.Errorf("wait for %s: %w", name, waitErr)
	}

	r.logger.Info("validator finished",
		zap.String("tool", name),
		zap.Int("exit_code", exitCode),
		zap.Int("retained_lines", len(retained)))

	return retained, exitCode, nil
}
