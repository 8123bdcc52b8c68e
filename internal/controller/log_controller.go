package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/dto"
	"localcloud-tools-backend/internal/elasticsearch"
	"localcloud-tools-backend/internal/kafka"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/report"
	"localcloud-tools-backend/internal/service"
)

type LogController struct {
	logService service.LogService
	forwarder  kafka.LogForwarder
	archive    elasticsearch.LogArchive
}

func NewLogController(logService service.LogService, forwarder kafka.LogForwarder, archive elasticsearch.LogArchive) *LogController {
	return &LogController{
		logService: logService,
		forwarder:  forwarder,
		archive:    archive,
	}
}

func RegisterLogRoutes(router *gin.Engine, controller *LogController) {
	v1 := router.Group("/api/v1/logs")
	{
		v1.GET("", controller.GetLogs)
		v1.GET("/errors", controller.GetErrorSummary)
		v1.GET("/api-calls", controller.GetApiCallStats)
	}
}

// GetLogs godoc
// @Summary      Retrieve emulator logs
// @Description  Fetches recent emulator log lines, optionally filtered by a case-insensitive keyword, and returns the parsed entries.
// @Tags         logs
// @Produce      json
// @Param        lines   query  int     false  "Maximum number of recent lines to fetch (default from config)"
// @Param        filter  query  string  false  "Case-insensitive substring filter applied to raw lines"
// @Success      200  {object}  dto.LogsResponse "Parsed log entries"
// @Failure      502  {object}  model.Response "Log retrieval failed"
// @Router       /api/v1/logs [get]
func (c *LogController) GetLogs(ctx *gin.Context) {
	result := c.retrieve(ctx)
	if !result.Success {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(result.ErrorMessage, nil))
		return
	}

	ctx.JSON(http.StatusOK, dto.LogsResponse{
		TotalLines:    result.TotalLines,
		FilteredLines: result.FilteredLines,
		Count:         len(result.Logs),
		Logs:          result.Logs,
	})
}

// GetErrorSummary godoc
// @Summary      Group errors and warnings
// @Description  Retrieves emulator logs and clusters error/warning entries into groups of structurally identical failures.
// @Tags         logs
// @Produce      json
// @Param        lines   query  int     false  "Maximum number of recent lines to fetch"
// @Param        filter  query  string  false  "Case-insensitive substring filter applied to raw lines"
// @Success      200  {object}  dto.ErrorSummaryResponse "Grouped errors with a rendered report"
// @Failure      502  {object}  model.Response "Log retrieval failed"
// @Router       /api/v1/logs/errors [get]
func (c *LogController) GetErrorSummary(ctx *gin.Context) {
	result := c.retrieve(ctx)
	if !result.Success {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(result.ErrorMessage, nil))
		return
	}

	groups := c.logService.GroupLogsByError(result.Logs)

	response := dto.ErrorSummaryResponse{
		Groups: make([]dto.ErrorGroup, 0, groups.Len()),
		Report: report.ErrorSummaryReport(groups),
	}
	for _, key := range groups.Keys() {
		entries := groups.Get(key)
		group := dto.ErrorGroup{Key: key, Count: len(entries)}
		if len(entries) > 0 {
			group.SampleLine = entries[0].FullLine
		}
		response.Groups = append(response.Groups, group)
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApiCallStats godoc
// @Summary      Analyze API call traffic
// @Description  Retrieves emulator logs and aggregates API call entries into per-service, per-operation and per-status counts.
// @Tags         logs
// @Produce      json
// @Param        lines   query  int     false  "Maximum number of recent lines to fetch"
// @Param        filter  query  string  false  "Case-insensitive substring filter applied to raw lines"
// @Success      200  {object}  dto.ApiCallsResponse "Aggregated statistics with a rendered report"
// @Failure      502  {object}  model.Response "Log retrieval failed"
// @Router       /api/v1/logs/api-calls [get]
func (c *LogController) GetApiCallStats(ctx *gin.Context) {
	result := c.retrieve(ctx)
	if !result.Success {
		ctx.JSON(http.StatusBadGateway, model.NewResponse(result.ErrorMessage, nil))
		return
	}

	stats := c.logService.AnalyzeApiCalls(result.Logs)
	ctx.JSON(http.StatusOK, dto.ApiCallsResponse{
		Stats:  stats,
		Report: report.ApiCallReport(stats),
	})
}

func (c *LogController) retrieve(ctx *gin.Context) model.LogRetrievalResult {
	lines, err := strconv.Atoi(ctx.DefaultQuery("lines", "0"))
	if err != nil || lines < 0 {
		lines = 0
	}
	filter := ctx.Query("filter")

	result := c.logService.RetrieveLogs(ctx.Request.Context(), lines, filter)
	if result.Success && len(result.Logs) > 0 {
		go c.publish(result.Logs)
	}
	return result
}

// publish pushes parsed entries to the optional Kafka and Elasticsearch
// sinks off the request path.
func (c *LogController) publish(logs []model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.forwarder.Forward(ctx, logs); err != nil {
		log.Warn().Err(err).Msg("Failed to forward log entries to Kafka")
	}
	if err := c.archive.ArchiveLogs(ctx, logs); err != nil {
		log.Warn().Err(err).Msg("Failed to archive log entries to Elasticsearch")
	}
}
