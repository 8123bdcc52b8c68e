package dockerexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/model"
)

// ErrContainerNotFound signals that no running container matches the expected
// name. Callers report it and never retry.
var ErrContainerNotFound = errors.New("container not found")

// dockerAPI is the slice of the docker client the executor needs; narrowed so
// tests can fake it.
type dockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
}

// Executor locates the emulator container and runs commands inside it.
type Executor interface {
	FindContainer(ctx context.Context, name string) (string, error)
	Exec(ctx context.Context, containerID string, cmd []string, stdin string, env []string) (model.ContainerExecResult, error)
}

type dockerExecutor struct {
	cli dockerAPI
}

func NewDockerExecutor() (Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &dockerExecutor{cli: cli}, nil
}

func newWithClient(cli dockerAPI) Executor {
	return &dockerExecutor{cli: cli}
}

// FindContainer returns the id of the running container whose name equals the
// given one. Docker reports names with a leading slash, so one is stripped
// from both sides before comparing.
func (e *dockerExecutor) FindContainer(ctx context.Context, name string) (string, error) {
	wanted := strings.TrimPrefix(name, "/")

	containers, err := e.cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", wanted)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == wanted {
				log.Debug().Str("container", wanted).Str("id", c.ID).Msg("Found running container")
				return c.ID, nil
			}
		}
	}

	return "", fmt.Errorf("%w: Could not find a running container named %q. Ensure the emulator is running", ErrContainerNotFound, wanted)
}

// Exec runs cmd inside the container over an attached exec channel, feeding
// stdin if provided, and demultiplexes the combined stream into separate
// stdout/stderr buffers. The exit code defaults to 1 when the runtime does
// not report one.
func (e *dockerExecutor) Exec(ctx context.Context, containerID string, cmd []string, stdin string, env []string) (model.ContainerExecResult, error) {
	created, err := e.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		Env:          env,
		AttachStdout: true,
		AttachStderr: true,
		AttachStdin:  stdin != "",
	})
	if err != nil {
		return model.ContainerExecResult{}, fmt.Errorf("failed to create exec in container: %w", err)
	}

	attach, err := e.cli.ContainerExecAttach(ctx, created.ID, container.ExecStartOptions{})
	if err != nil {
		return model.ContainerExecResult{}, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attach.Close()

	if stdin != "" {
		if _, err := attach.Conn.Write([]byte(stdin)); err != nil {
			return model.ContainerExecResult{}, fmt.Errorf("failed to write stdin to exec: %w", err)
		}
		if err := attach.CloseWrite(); err != nil {
			log.Warn().Err(err).Msg("Failed to close exec stdin")
		}
	}

	stdout, stderr, err := demux(attach.Reader)
	if err != nil {
		return model.ContainerExecResult{}, fmt.Errorf("failed to read exec output: %w", err)
	}

	exitCode := 1
	if inspect, err := e.cli.ContainerExecInspect(ctx, created.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to inspect exec, defaulting exit code to 1")
	} else {
		exitCode = inspect.ExitCode
	}

	return model.ContainerExecResult{
		Stdout:   strings.TrimSpace(stdout),
		Stderr:   strings.TrimSpace(stderr),
		ExitCode: exitCode,
	}, nil
}

// demux splits one combined attached stream into stdout and stderr using the
// docker multiplexing framing. All framing knowledge lives here.
func demux(combined io.Reader) (string, string, error) {
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, combined); err != nil {
		return "", "", err
	}
	return stdout.String(), stderr.String(), nil
}
