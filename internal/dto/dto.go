package dto

import (
	"localcloud-tools-backend/internal/model"
)

type ExecRequest struct {
	Command string `json:"command" binding:"required" example:"awslocal s3 ls"`
	Stdin   string `json:"stdin,omitempty"`
}

type ExecResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode"`
	Report   string `json:"report"`
}

type SnapshotRequest struct {
	Name     string   `json:"name" binding:"required" example:"before-chaos"`
	Services []string `json:"services,omitempty"`
}

type LogsResponse struct {
	TotalLines    int              `json:"totalLines"`
	FilteredLines int              `json:"filteredLines,omitempty"`
	Count         int              `json:"count"`
	Logs          []model.LogEntry `json:"logs"`
}

type ErrorGroup struct {
	Key        string `json:"key"`
	Count      int    `json:"count"`
	SampleLine string `json:"sampleLine,omitempty"`
}

type ErrorSummaryResponse struct {
	Groups []ErrorGroup `json:"groups"`
	Report string       `json:"report"`
}

type ApiCallsResponse struct {
	Stats  model.ApiCallStats `json:"stats"`
	Report string             `json:"report"`
}

type PolicyResponse struct {
	DenialCount int                      `json:"denialCount"`
	Permissions []model.UniquePermission `json:"permissions"`
	Policy      model.PolicyDocument     `json:"policy"`
	Report      string                   `json:"report"`
}
