package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/dockerexec"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/service"
)

type fakeExecutor struct {
	containerID string
	findErr     error
	result      model.ContainerExecResult
	execErr     error

	lastCmd []string
	lastEnv []string
}

func (f *fakeExecutor) FindContainer(ctx context.Context, name string) (string, error) {
	return f.containerID, f.findErr
}

func (f *fakeExecutor) Exec(ctx context.Context, containerID string, cmd []string, stdin string, env []string) (model.ContainerExecResult, error) {
	f.lastCmd = cmd
	f.lastEnv = env
	return f.result, f.execErr
}

func newTestExecService(executor dockerexec.Executor) service.ExecService {
	cfg := &config.Config{
		Emulator: config.EmulatorConfig{ContainerName: "localstack-main"},
		Exec: config.ExecConfig{
			Timeout:      10 * time.Second,
			AuthTokenEnv: "LOCALSTACK_AUTH_TOKEN",
		},
	}
	return service.NewExecService(cfg, executor)
}

func TestRunCliCommand(t *testing.T) {
	fake := &fakeExecutor{
		containerID: "abc123",
		result:      model.ContainerExecResult{Stdout: "bucket-a", ExitCode: 0},
	}
	svc := newTestExecService(fake)

	result, err := svc.RunCliCommand(context.Background(), "awslocal s3 ls", "")

	require.NoError(t, err)
	assert.Equal(t, "bucket-a", result.Stdout)
	assert.Equal(t, []string{"sh", "-c", "awslocal s3 ls"}, fake.lastCmd)
}

func TestRunCliCommand_EmptyCommand(t *testing.T) {
	svc := newTestExecService(&fakeExecutor{})

	_, err := svc.RunCliCommand(context.Background(), "   ", "")

	assert.Error(t, err)
}

func TestRunCliCommand_ContainerNotFound(t *testing.T) {
	fake := &fakeExecutor{findErr: dockerexec.ErrContainerNotFound}
	svc := newTestExecService(fake)

	_, err := svc.RunCliCommand(context.Background(), "awslocal s3 ls", "")

	assert.True(t, errors.Is(err, dockerexec.ErrContainerNotFound))
}

func TestRunCliCommand_AuthTokenFromEnvPerCall(t *testing.T) {
	fake := &fakeExecutor{containerID: "abc123"}
	svc := newTestExecService(fake)

	_, err := svc.RunCliCommand(context.Background(), "awslocal s3 ls", "")
	require.NoError(t, err)
	assert.Empty(t, fake.lastEnv)

	// Setting the token after service construction must be picked up.
	t.Setenv("LOCALSTACK_AUTH_TOKEN", "token-1")
	_, err = svc.RunCliCommand(context.Background(), "awslocal s3 ls", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"LOCALSTACK_AUTH_TOKEN=token-1"}, fake.lastEnv)
}
