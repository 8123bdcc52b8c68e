package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/dto"
	"localcloud-tools-backend/internal/gateway"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/snapshot"
)

type EmulatorController struct {
	gatewayClient gateway.Client
	snapshots     snapshot.Manager
}

func NewEmulatorController(gatewayClient gateway.Client, snapshots snapshot.Manager) *EmulatorController {
	return &EmulatorController{
		gatewayClient: gatewayClient,
		snapshots:     snapshots,
	}
}

func RegisterEmulatorRoutes(router *gin.Engine, controller *EmulatorController) {
	v1 := router.Group("/api/v1/emulator")
	{
		v1.GET("/health", controller.GetHealth)
		v1.GET("/chaos", controller.GetChaosFaults)
		v1.POST("/chaos", controller.SetChaosFaults)
		v1.GET("/snapshots", controller.ListSnapshots)
		v1.POST("/snapshots", controller.SaveSnapshot)
		v1.POST("/snapshots/:id/restore", controller.RestoreSnapshot)
	}
}

// GetHealth godoc
// @Summary      Check emulator health
// @Description  Queries the emulator management gateway for per-service health states.
// @Tags         emulator
// @Produce      json
// @Success      200  {object}  gateway.Health "Per-service health states"
// @Failure      502  {object}  model.Response "Gateway unreachable"
// @Router       /api/v1/emulator/health [get]
func (c *EmulatorController) GetHealth(ctx *gin.Context) {
	health, err := c.gatewayClient.CheckHealth(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, health)
}

// GetChaosFaults godoc
// @Summary      List active chaos faults
// @Tags         emulator
// @Produce      json
// @Success      200  {array}   gateway.ChaosFault
// @Failure      502  {object}  model.Response "Gateway unreachable"
// @Router       /api/v1/emulator/chaos [get]
func (c *EmulatorController) GetChaosFaults(ctx *gin.Context) {
	faults, err := c.gatewayClient.GetChaosFaults(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, faults)
}

// SetChaosFaults godoc
// @Summary      Replace the active chaos fault configuration
// @Description  Posts the given fault rules to the emulator. An empty list clears all faults.
// @Tags         emulator
// @Accept       json
// @Produce      json
// @Param        request  body  []gateway.ChaosFault  true  "Fault rules"
// @Success      200  {object}  model.Response
// @Failure      400  {object}  model.Response "Invalid request body"
// @Failure      502  {object}  model.Response "Gateway unreachable"
// @Router       /api/v1/emulator/chaos [post]
func (c *EmulatorController) SetChaosFaults(ctx *gin.Context) {
	var faults []gateway.ChaosFault
	if err := ctx.ShouldBindJSON(&faults); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	if err := c.gatewayClient.SetChaosFaults(ctx.Request.Context(), faults); err != nil {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, model.NewResponse("Chaos faults updated", nil))
}

// ListSnapshots godoc
// @Summary      List recorded emulator snapshots
// @Tags         emulator
// @Produce      json
// @Success      200  {array}   snapshot.Record
// @Failure      500  {object}  model.Response "Snapshot state unreadable"
// @Router       /api/v1/emulator/snapshots [get]
func (c *EmulatorController) ListSnapshots(ctx *gin.Context) {
	records, err := c.snapshots.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to list snapshots", nil))
		return
	}
	ctx.JSON(http.StatusOK, records)
}

// SaveSnapshot godoc
// @Summary      Save the emulator state as a named snapshot
// @Description  Asks the emulator to persist its current state and records snapshot metadata locally.
// @Tags         emulator
// @Accept       json
// @Produce      json
// @Param        request  body  dto.SnapshotRequest  true  "Snapshot name"
// @Success      201  {object}  snapshot.Record
// @Failure      400  {object}  model.Response "Invalid request body"
// @Failure      502  {object}  model.Response "Gateway unreachable"
// @Router       /api/v1/emulator/snapshots [post]
func (c *EmulatorController) SaveSnapshot(ctx *gin.Context) {
	var req dto.SnapshotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	if err := c.gatewayClient.SaveState(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(err.Error(), nil))
		return
	}

	record, err := c.snapshots.Add(req.Name, req.Services)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("State saved but snapshot metadata could not be recorded")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("State saved but snapshot metadata could not be recorded", nil))
		return
	}
	ctx.JSON(http.StatusCreated, record)
}

// RestoreSnapshot godoc
// @Summary      Restore the emulator state
// @Description  Verifies the snapshot id is known and asks the emulator to load its persisted state.
// @Tags         emulator
// @Produce      json
// @Param        id  path  string  true  "Snapshot id"
// @Success      200  {object}  model.Response
// @Failure      404  {object}  model.Response "Unknown snapshot id"
// @Failure      502  {object}  model.Response "Gateway unreachable"
// @Router       /api/v1/emulator/snapshots/{id}/restore [post]
func (c *EmulatorController) RestoreSnapshot(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := c.snapshots.Get(id); err != nil {
		ctx.JSON(http.StatusNotFound, model.NewResponse("Unknown snapshot id", nil))
		return
	}

	if err := c.gatewayClient.LoadState(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, model.NewResponse("Snapshot restored", nil))
}
