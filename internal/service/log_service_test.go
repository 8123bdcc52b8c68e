package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/parser"
	"localcloud-tools-backend/internal/runner"
	"localcloud-tools-backend/internal/service"
)

type fakeRunner struct {
	result   model.CommandResult
	lastArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, command string, args []string, opts runner.Options) model.CommandResult {
	f.lastArgs = args
	return f.result
}

func newTestLogService(r runner.Runner) service.LogService {
	cfg := &config.Config{
		Logs: config.LogsConfig{
			Command:      "localstack",
			Args:         []string{"logs"},
			Timeout:      30 * time.Second,
			MaxBuffer:    1 << 20,
			DefaultLines: 500,
		},
	}
	return service.NewLogService(cfg, r, parser.NewEmulatorLogParser())
}

func TestRetrieveLogs_ParsesAndCounts(t *testing.T) {
	fake := &fakeRunner{result: model.CommandResult{
		Stdout: "2024-05-01T10:00:00.123 INFO AWS s3.CreateBucket => 200\n" +
			"2024-05-01T10:00:01.456 ERROR AWS s3.GetObject => 404 (NoSuchKey)\n" +
			"\n",
	}}
	svc := newTestLogService(fake)

	result := svc.RetrieveLogs(context.Background(), 100, "")

	require.True(t, result.Success)
	assert.Equal(t, 2, result.TotalLines)
	assert.Zero(t, result.FilteredLines)
	require.Len(t, result.Logs, 2)
	assert.Equal(t, "s3", result.Logs[0].Service)
	assert.Equal(t, "GetObject", result.Logs[1].Operation)
	assert.True(t, result.Logs[1].IsError)
	assert.Equal(t, []string{"logs", "--tail", "100"}, fake.lastArgs)
}

func TestRetrieveLogs_DefaultLines(t *testing.T) {
	fake := &fakeRunner{result: model.CommandResult{Stdout: ""}}
	svc := newTestLogService(fake)

	result := svc.RetrieveLogs(context.Background(), 0, "")

	require.True(t, result.Success)
	assert.Equal(t, []string{"logs", "--tail", "500"}, fake.lastArgs)
}

func TestRetrieveLogs_KeywordFilter(t *testing.T) {
	fake := &fakeRunner{result: model.CommandResult{
		Stdout: "2024-05-01T10:00:00.123 INFO AWS s3.CreateBucket => 200\n" +
			"2024-05-01T10:00:01.456 ERROR AWS dynamodb.PutItem => 400 (ValidationException)\n",
	}}
	svc := newTestLogService(fake)

	result := svc.RetrieveLogs(context.Background(), 100, "DYNAMODB")

	require.True(t, result.Success)
	assert.Equal(t, 2, result.TotalLines)
	assert.Equal(t, 1, result.FilteredLines)
	require.Len(t, result.Logs, 1)
	assert.Equal(t, "dynamodb", result.Logs[0].Service)
}

func TestRetrieveLogs_FailureDiagnosis(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Timeout Suggests Fewer Lines",
			err:      errors.New("command timed out after 30s"),
			expected: "reducing the number of lines",
		},
		{
			name:     "Missing Binary Suggests Install",
			err:      errors.New(`failed to start command: exec: "localstack": executable file not found in $PATH`),
			expected: "installed and on PATH",
		},
		{
			name:     "Generic Failure Passes Message Through",
			err:      errors.New("command exited with code 1: boom"),
			expected: "Failed to retrieve logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRunner{result: model.CommandResult{Err: tt.err}}
			svc := newTestLogService(fake)

			result := svc.RetrieveLogs(context.Background(), 10, "")

			assert.False(t, result.Success)
			assert.Contains(t, result.ErrorMessage, tt.expected)
			assert.Empty(t, result.Logs)
		})
	}
}

func TestRetrieveLogs_StderrOnlyIsFailure(t *testing.T) {
	fake := &fakeRunner{result: model.CommandResult{
		Stdout: "  ",
		Stderr: "Error: no such container\n",
	}}
	svc := newTestLogService(fake)

	result := svc.RetrieveLogs(context.Background(), 10, "")

	assert.False(t, result.Success)
	assert.Equal(t, "Error: no such container", result.ErrorMessage)
}

func TestGroupLogsByError_SkipsNonErrors(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})

	groups := svc.GroupLogsByError([]model.LogEntry{
		{IsError: true, Message: "connection refused"},
		{Message: "started service"},
		{IsWarning: true, Message: "slow response"},
	})

	assert.Equal(t, 2, groups.Len())
	for _, key := range groups.Keys() {
		for _, entry := range groups.Get(key) {
			assert.True(t, entry.IsError || entry.IsWarning)
		}
	}
}

func TestGroupLogsByError_ApiTripleKey(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})

	groups := svc.GroupLogsByError([]model.LogEntry{
		{IsError: true, IsApiCall: true, Service: "s3", Operation: "GetObject", StatusCode: 404, Message: "GetObject failed: NoSuchKey (404)"},
		{IsError: true, IsApiCall: true, Service: "s3", Operation: "GetObject", StatusCode: 404, Message: "GetObject failed: NoSuchKey (404)"},
		{IsError: true, IsApiCall: true, Service: "s3", Operation: "GetObject", StatusCode: 403, Message: "GetObject failed: AccessDenied (403)"},
	})

	require.Equal(t, 2, groups.Len())
	assert.Equal(t, []string{"s3.GetObject => 404", "s3.GetObject => 403"}, groups.Keys())
	assert.Len(t, groups.Get("s3.GetObject => 404"), 2)
}

func TestGroupLogsByError_NormalizesVolatileSubstrings(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "Request Ids",
			a:    "request 1a2b3c4d-0000-1111-2222-333344445555 failed",
			b:    "request 9f8e7d6c-aaaa-bbbb-cccc-ddddeeeeffff failed",
		},
		{
			name: "Timestamps",
			a:    "lease expired at 2024-05-01T10:00:00.123",
			b:    "lease expired at 2024-06-02T11:30:45.999",
		},
		{
			name: "Addresses And Ports",
			a:    "cannot reach 10.0.0.5 on port 4566",
			b:    "cannot reach 192.168.1.9 on port 4571",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := svc.GroupLogsByError([]model.LogEntry{
				{IsError: true, Message: tt.a},
				{IsError: true, Message: tt.b},
			})
			assert.Equal(t, 1, groups.Len(), "both messages should normalize to one group")
		})
	}
}

func TestGroupLogsByError_NormalizationIsStable(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})
	msg := "request 1a2b3c4d-0000-1111-2222-333344445555 to 10.0.0.5 on port 4566 failed at 2024-05-01T10:00:00.123"

	first := svc.GroupLogsByError([]model.LogEntry{{IsError: true, Message: msg}})
	require.Equal(t, 1, first.Len())
	normalized := first.Keys()[0]

	// Feeding an already normalized message back through grouping must not
	// change the key.
	second := svc.GroupLogsByError([]model.LogEntry{{IsError: true, Message: normalized}})
	require.Equal(t, 1, second.Len())
	assert.Equal(t, normalized, second.Keys()[0])
}

func TestAnalyzeApiCalls(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})

	stats := svc.AnalyzeApiCalls([]model.LogEntry{
		{IsApiCall: true, Service: "s3", Operation: "CreateBucket", StatusCode: 200},
		{IsApiCall: true, Service: "s3", Operation: "GetObject", StatusCode: 404, Message: "GetObject failed: NoSuchKey (404)"},
		{IsApiCall: true, Service: "sqs", Operation: "SendMessage", StatusCode: 200},
		{IsApiCall: true, Service: "lambda", Operation: "Invoke"},
		{Message: "not an api call", IsError: true},
	})

	assert.Equal(t, 4, stats.TotalCalls)
	assert.Equal(t, 2, stats.SuccessfulCalls)
	assert.Equal(t, 1, stats.FailedCalls)
	assert.Equal(t, 2, stats.CallsByService["s3"])
	assert.Equal(t, 1, stats.CallsByService["lambda"])
	assert.Equal(t, 1, stats.CallsByOperation["Invoke"])
	assert.Equal(t, 2, stats.CallsByStatus[200])

	// Status 0 never reaches the status tally.
	_, hasZero := stats.CallsByStatus[0]
	assert.False(t, hasZero)

	require.Len(t, stats.FailedCallDetails, 1)
	assert.Equal(t, "s3", stats.FailedCallDetails[0].Service)
	assert.Equal(t, 404, stats.FailedCallDetails[0].StatusCode)
}

func TestAnalyzeApiCalls_CountsAreConsistent(t *testing.T) {
	svc := newTestLogService(&fakeRunner{})

	entries := []model.LogEntry{
		{IsApiCall: true, Service: "s3", Operation: "PutObject", StatusCode: 200},
		{IsApiCall: true, Service: "s3", Operation: "PutObject", StatusCode: 500},
		{IsApiCall: true, Service: "iam", Operation: "GetRole", StatusCode: 403},
		{IsApiCall: true, Service: "sts", Operation: "AssumeRole"},
	}
	stats := svc.AnalyzeApiCalls(entries)

	withStatus := 0
	for _, n := range stats.CallsByStatus {
		withStatus += n
	}
	assert.Equal(t, stats.SuccessfulCalls+stats.FailedCalls, withStatus)
	assert.LessOrEqual(t, stats.SuccessfulCalls+stats.FailedCalls, stats.TotalCalls)
	assert.Len(t, stats.FailedCallDetails, stats.FailedCalls)
}
