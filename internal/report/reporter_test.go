package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/report"
)

type stubGroups struct {
	keys   []string
	groups map[string][]model.LogEntry
}

func (s *stubGroups) Keys() []string                  { return s.keys }
func (s *stubGroups) Get(key string) []model.LogEntry { return s.groups[key] }
func (s *stubGroups) Len() int                        { return len(s.keys) }

func TestPolicyReport(t *testing.T) {
	denials := []model.LogEntry{
		{IamPrincipal: "lambda.amazonaws.com", IamAction: "s3:GetObject"},
	}
	permissions := map[string]model.UniquePermission{
		"k": {Principal: "lambda.amazonaws.com", Action: "s3:GetObject", Resource: "arn:aws:s3:::my-bucket/*"},
	}
	policy := model.PolicyDocument{
		Version: "2012-10-17",
		Statement: []model.PolicyStatement{
			{Sid: "GeneratedStatement1", Effect: "Allow", Action: []string{"s3:GetObject"}, Resource: "arn:aws:s3:::my-bucket/*"},
		},
	}

	out := report.PolicyReport(denials, permissions, policy)

	assert.Contains(t, out, "# IAM Policy Analysis")
	assert.Contains(t, out, "**1** IAM denial(s)")
	assert.Contains(t, out, "`lambda.amazonaws.com` needs `s3:GetObject` on `arn:aws:s3:::my-bucket/*`")
	assert.Contains(t, out, "```json")
	assert.Contains(t, out, `"Sid": "GeneratedStatement1"`)
	assert.Contains(t, out, "Attach this policy")
	assert.NotContains(t, out, `"Principal"`)
}

func TestPolicyReport_NoPermissions(t *testing.T) {
	out := report.PolicyReport(nil, nil, model.PolicyDocument{Version: "2012-10-17"})

	assert.Contains(t, out, "No missing permissions detected")
	assert.NotContains(t, out, "```json")
}

func TestPolicyReport_PermissionsSorted(t *testing.T) {
	permissions := map[string]model.UniquePermission{
		"b": {Principal: "z-principal", Action: "sqs:SendMessage", Resource: "*"},
		"a": {Principal: "a-principal", Action: "s3:GetObject", Resource: "*"},
	}
	policy := model.PolicyDocument{Version: "2012-10-17"}

	out := report.PolicyReport(nil, permissions, policy)

	first := "`a-principal` needs"
	second := "`z-principal` needs"
	require.Contains(t, out, first)
	require.Contains(t, out, second)
	assert.Less(t, strings.Index(out, first), strings.Index(out, second))
}

func TestErrorSummaryReport(t *testing.T) {
	groups := &stubGroups{
		keys: []string{"s3.GetObject => 404", "connection refused to [IP]"},
		groups: map[string][]model.LogEntry{
			"s3.GetObject => 404": {
				{FullLine: "2024-05-01T10:00:00.123 ERROR AWS s3.GetObject => 404"},
				{FullLine: "2024-05-01T10:00:01.456 ERROR AWS s3.GetObject => 404"},
			},
			"connection refused to [IP]": {
				{FullLine: "ERROR connection refused to 10.0.0.5"},
			},
		},
	}

	out := report.ErrorSummaryReport(groups)

	assert.Contains(t, out, "**2** distinct error group(s)")
	assert.Contains(t, out, "## s3.GetObject => 404")
	assert.Contains(t, out, "Occurrences: 2")
	assert.Contains(t, out, "2024-05-01T10:00:00.123 ERROR AWS s3.GetObject => 404")
	// First-seen order is preserved in the rendered output.
	assert.Less(t, strings.Index(out, "s3.GetObject"), strings.Index(out, "connection refused"))
}

func TestErrorSummaryReport_Empty(t *testing.T) {
	out := report.ErrorSummaryReport(&stubGroups{})
	assert.Contains(t, out, "No errors or warnings found")
}

func TestApiCallReport(t *testing.T) {
	stats := model.ApiCallStats{
		TotalCalls:      3,
		SuccessfulCalls: 2,
		FailedCalls:     1,
		CallsByService:  map[string]int{"s3": 2, "sqs": 1},
		FailedCallDetails: []model.FailedCallInfo{
			{Service: "s3", Operation: "GetObject", StatusCode: 404, Message: "GetObject failed: NoSuchKey (404)"},
		},
	}

	out := report.ApiCallReport(stats)

	assert.Contains(t, out, "Total: 3, successful: 2, failed: 1")
	assert.Contains(t, out, "- s3: 2")
	assert.Contains(t, out, "- s3.GetObject => 404: GetObject failed: NoSuchKey (404)")
}

func TestCommandReport(t *testing.T) {
	out := report.CommandReport("awslocal s3 ls", model.ContainerExecResult{
		Stdout:   "bucket-a",
		ExitCode: 0,
	})

	assert.Contains(t, out, "# Command: `awslocal s3 ls`")
	assert.Contains(t, out, "Exit code: 0")
	assert.Contains(t, out, "bucket-a")
	assert.NotContains(t, out, "Stderr")
}

func TestCommandReport_WithStderr(t *testing.T) {
	out := report.CommandReport("awslocal s3 mb s3://x", model.ContainerExecResult{
		Stderr:   "make_bucket failed",
		ExitCode: 1,
	})

	assert.Contains(t, out, "Exit code: 1")
	assert.Contains(t, out, "## Stderr")
	assert.Contains(t, out, "make_bucket failed")
}
