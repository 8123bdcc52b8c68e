package service

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/dockerexec"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/report"
)

// ExecService runs CLI commands inside the emulator container.
type ExecService interface {
	RunCliCommand(ctx context.Context, command string, stdin string) (model.ContainerExecResult, error)
	FormatCommandReport(command string, result model.ContainerExecResult) string
}

type execService struct {
	cfg      *config.Config
	executor dockerexec.Executor
}

func NewExecService(cfg *config.Config, executor dockerexec.Executor) ExecService {
	return &execService{cfg: cfg, executor: executor}
}

// RunCliCommand locates the emulator container and executes command in a
// shell inside it. The auth token is read from the environment on every call
// rather than captured at startup, so rotating the token does not require a
// restart.
func (s *execService) RunCliCommand(ctx context.Context, command string, stdin string) (model.ContainerExecResult, error) {
	if strings.TrimSpace(command) == "" {
		return model.ContainerExecResult{}, errors.New("command must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Exec.Timeout)
	defer cancel()

	containerID, err := s.executor.FindContainer(ctx, s.cfg.Emulator.ContainerName)
	if err != nil {
		return model.ContainerExecResult{}, err
	}

	var env []string
	if token := os.Getenv(s.cfg.Exec.AuthTokenEnv); token != "" {
		env = append(env, s.cfg.Exec.AuthTokenEnv+"="+token)
	}

	result, err := s.executor.Exec(ctx, containerID, []string{"sh", "-c", command}, stdin, env)
	if err != nil {
		return model.ContainerExecResult{}, err
	}

	log.Debug().Str("command", command).Int("exit_code", result.ExitCode).Msg("Executed command in emulator container")
	return result, nil
}

func (s *execService) FormatCommandReport(command string, result model.ContainerExecResult) string {
	return report.CommandReport(command, result)
}
