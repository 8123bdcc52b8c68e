package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"localcloud-tools-backend/internal/dto"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/service"
)

type IamController struct {
	logService service.LogService
	iamService service.IamService
}

func NewIamController(logService service.LogService, iamService service.IamService) *IamController {
	return &IamController{
		logService: logService,
		iamService: iamService,
	}
}

func RegisterIamRoutes(router *gin.Engine, controller *IamController) {
	v1 := router.Group("/api/v1/iam")
	{
		v1.GET("/policy", controller.GetSuggestedPolicy)
	}
}

// GetSuggestedPolicy godoc
// @Summary      Suggest an IAM policy from observed denials
// @Description  Retrieves emulator logs, correlates IAM denial entries with resource information, and generates a least-privilege policy document covering the denied actions.
// @Tags         iam
// @Produce      json
// @Param        lines  query  int  false  "Maximum number of recent lines to scan"
// @Success      200  {object}  dto.PolicyResponse "Suggested policy with a rendered report"
// @Failure      502  {object}  model.Response "Log retrieval failed"
// @Router       /api/v1/iam/policy [get]
func (c *IamController) GetSuggestedPolicy(ctx *gin.Context) {
	lines, err := strconv.Atoi(ctx.DefaultQuery("lines", "0"))
	if err != nil || lines < 0 {
		lines = 0
	}

	result := c.logService.RetrieveLogs(ctx.Request.Context(), lines, "")
	if !result.Success {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(result.ErrorMessage, nil))
		return
	}

	var denials []model.LogEntry
	for _, entry := range result.Logs {
		if entry.IsIamDenial {
			denials = append(denials, entry)
		}
	}

	enriched := c.iamService.EnrichWithResourceData(denials, result.Logs)
	permissions := c.iamService.DeduplicatePermissions(enriched)
	policy := c.iamService.GenerateIamPolicy(permissions)

	response := dto.PolicyResponse{
		DenialCount: len(enriched),
		Permissions: make([]model.UniquePermission, 0, len(permissions)),
		Policy:      policy,
		Report:      c.iamService.FormatPolicyReport(enriched, permissions, policy),
	}
	for _, p := range permissions {
		response.Permissions = append(response.Permissions, p)
	}

	ctx.JSON(http.StatusOK, response)
}
