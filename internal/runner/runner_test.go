package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localcloud-tools-backend/internal/runner"
)

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "sh", []string{"-c", "echo hello; echo oops >&2"}, runner.Options{})

	require.NoError(t, result.Err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRun_NonZeroExitEmbedsStderr(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, runner.Options{})

	require.Error(t, result.Err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Err.Error(), "exited with code 3")
	assert.Contains(t, result.Err.Error(), "broken")
}

func TestRun_SpawnFailure(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "definitely-not-a-binary-xyz", nil, runner.Options{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to start")
	assert.Equal(t, -1, result.ExitCode)
}

func TestRun_Timeout(t *testing.T) {
	r := runner.NewProcessRunner()

	start := time.Now()
	result := r.Run(context.Background(), "sh", []string{"-c", "sleep 10"}, runner.Options{Timeout: 200 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "timed out")
	// Must resolve within timeout + kill grace window, never hang.
	assert.Less(t, elapsed, 4*time.Second)
}

func TestRun_TimeoutKillsChildProcesses(t *testing.T) {
	r := runner.NewProcessRunner()

	// The background child inherits the output pipes; if termination only
	// reached the shell, Wait would block until the child exits on its own.
	start := time.Now()
	result := r.Run(context.Background(), "sh", []string{"-c", "sleep 10 & sleep 10"}, runner.Options{Timeout: 200 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "timed out")
	assert.Less(t, elapsed, 4*time.Second)
}

func TestRun_MaxBufferExceeded(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "sh", []string{"-c", "yes x | head -c 100000; sleep 5"}, runner.Options{
		Timeout:   10 * time.Second,
		MaxBuffer: 1024,
	})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "maxBuffer")
	assert.Contains(t, result.Err.Error(), "stdout")
	assert.LessOrEqual(t, len(result.Stdout), 1024)
	assert.NotNil(t, result.ExitCode)
}

func TestRun_TimeoutTakesPrecedenceOverExitError(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "sh", []string{"-c", "sleep 10; exit 1"}, runner.Options{Timeout: 100 * time.Millisecond})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "timed out")
	assert.NotContains(t, result.Err.Error(), "exited with code")
}

func TestRun_ContextCancellation(t *testing.T) {
	r := runner.NewProcessRunner()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	result := r.Run(ctx, "sh", []string{"-c", "sleep 10"}, runner.Options{Timeout: 30 * time.Second})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "cancelled")
}

func TestRun_EnvOverlay(t *testing.T) {
	r := runner.NewProcessRunner()

	result := r.Run(context.Background(), "sh", []string{"-c", "echo $LOCALCLOUD_TEST_VAR"}, runner.Options{
		Env: []string{"LOCALCLOUD_TEST_VAR=overlay-value"},
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "overlay-value\n", result.Stdout)
}
