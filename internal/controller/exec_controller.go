package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/dockerexec"
	"localcloud-tools-backend/internal/dto"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/service"
)

type ExecController struct {
	execService service.ExecService
}

func NewExecController(execService service.ExecService) *ExecController {
	return &ExecController{execService: execService}
}

func RegisterExecRoutes(router *gin.Engine, controller *ExecController) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/exec", controller.Exec)
	}
}

// Exec godoc
// @Summary      Run a CLI command inside the emulator container
// @Description  Executes the given shell command inside the running emulator container and returns captured stdout, stderr and the exit code. A non-zero exit code is a successful execution, not an HTTP error.
// @Tags         exec
// @Accept       json
// @Produce      json
// @Param        request  body  dto.ExecRequest  true  "Command to execute"
// @Success      200  {object}  dto.ExecResponse "Command result"
// @Failure      400  {object}  model.Response "Invalid request body"
// @Failure      404  {object}  model.Response "Emulator container not found"
// @Failure      500  {object}  model.Response "Execution failed"
// @Router       /api/v1/exec [post]
func (c *ExecController) Exec(ctx *gin.Context) {
	var req dto.ExecRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	result, err := c.execService.RunCliCommand(ctx.Request.Context(), req.Command, req.Stdin)
	if err != nil {
		if errors.Is(err, dockerexec.ErrContainerNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse(err.Error(), nil))
			return
		}
		log.Error().Err(err).Str("command", req.Command).Msg("Command execution failed")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to execute command", nil))
		return
	}

	ctx.JSON(http.StatusOK, dto.ExecResponse{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
		Report:   c.execService.FormatCommandReport(req.Command, result),
	})
}
