package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/model"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBuffer = 10 * 1024 * 1024
	killGracePeriod  = 2 * time.Second
)

// Options controls one process run. Zero values fall back to the defaults
// above.
type Options struct {
	Timeout   time.Duration
	MaxBuffer int
	Dir       string
	Env       []string
}

// Runner executes an external command with a wall-clock timeout and
// per-stream output ceilings. Run never returns a Go error: every failure
// mode (spawn error, timeout, buffer overflow, non-zero exit) is carried in
// CommandResult.Err so callers have a single inspection point.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts Options) model.CommandResult
}

type processRunner struct{}

func NewProcessRunner() Runner {
	return &processRunner{}
}

// cappedBuffer accumulates stream output up to limit bytes. The first write
// that would cross the limit keeps the prefix, flags the buffer as exceeded,
// fires signal once, and discards everything after.
type cappedBuffer struct {
	mu       sync.Mutex
	limit    int
	data     []byte
	exceeded bool
	signal   func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exceeded {
		return len(p), nil
	}
	if len(b.data)+len(p) > b.limit {
		remaining := b.limit - len(b.data)
		if remaining > 0 {
			b.data = append(b.data, p[:remaining]...)
		}
		b.exceeded = true
		b.signal()
		return len(p), nil
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

func (b *cappedBuffer) isExceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

func (r *processRunner) Run(ctx context.Context, command string, args []string, opts Options) model.CommandResult {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBuffer := opts.MaxBuffer
	if maxBuffer <= 0 {
		maxBuffer = defaultMaxBuffer
	}

	overflow := make(chan struct{})
	var overflowOnce sync.Once
	signal := func() {
		overflowOnce.Do(func() { close(overflow) })
	}
	stdout := &cappedBuffer{limit: maxBuffer, signal: signal}
	stderr := &cappedBuffer{limit: maxBuffer, signal: signal}

	cmd := exec.Command(command, args...)
	cmd.Dir = opts.Dir
	// Own process group so termination reaches children of the spawned
	// command; a surviving child would hold the output pipes open and block
	// Wait past the kill grace window.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return model.CommandResult{
			ExitCode: -1,
			Err:      fmt.Errorf("failed to start command %q: %w", command, err),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var timedOut, bufferExceeded, cancelled bool
	var waitErr error

	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		waitErr = r.terminate(cmd, done)
	case <-overflow:
		bufferExceeded = true
		waitErr = r.terminate(cmd, done)
	case <-ctx.Done():
		cancelled = true
		waitErr = r.terminate(cmd, done)
	}

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	result := model.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}

	switch {
	case timedOut:
		result.Err = fmt.Errorf("command %q timed out after %s", command, timeout)
	case cancelled:
		result.Err = fmt.Errorf("command %q cancelled: %w", command, ctx.Err())
	case bufferExceeded:
		stream := "stdout"
		if stderr.isExceeded() && !stdout.isExceeded() {
			stream = "stderr"
		}
		result.Err = fmt.Errorf("command %q %s exceeded maxBuffer limit of %d bytes", command, stream, maxBuffer)
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.Err = fmt.Errorf("command %q exited with code %d: %s", command, exitCode, strings.TrimSpace(result.Stderr))
		} else {
			result.Err = fmt.Errorf("command %q failed: %w", command, waitErr)
		}
	}

	if result.Err != nil {
		log.Debug().Str("command", command).Int("exit_code", exitCode).Err(result.Err).Msg("Command finished with error")
	}
	return result
}

// terminate asks the process group to stop and escalates to SIGKILL after the
// grace window. Always drains the wait channel so Run resolves exactly once.
func (r *processRunner) terminate(cmd *exec.Cmd, done <-chan error) error {
	if cmd.Process == nil {
		return <-done
	}
	signalGroup(cmd, syscall.SIGTERM)
	select {
	case err := <-done:
		return err
	case <-time.After(killGracePeriod):
		signalGroup(cmd, syscall.SIGKILL)
		return <-done
	}
}

// signalGroup signals the whole process group, falling back to the direct
// process if the group is already gone.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil {
		_ = cmd.Process.Signal(sig)
	}
}
