package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/parser"
	"localcloud-tools-backend/internal/runner"
)

// LogService retrieves raw emulator logs through the process runner, parses
// them, and derives aggregate views over the parsed entries.
type LogService interface {
	RetrieveLogs(ctx context.Context, maxLines int, keywordFilter string) model.LogRetrievalResult
	GroupLogsByError(logs []model.LogEntry) *ErrorGroups
	AnalyzeApiCalls(logs []model.LogEntry) model.ApiCallStats
}

// ErrorGroups is a grouped view over error/warning entries preserving
// first-seen insertion order of the group keys.
type ErrorGroups struct {
	keys   []string
	groups map[string][]model.LogEntry
}

func newErrorGroups() *ErrorGroups {
	return &ErrorGroups{groups: make(map[string][]model.LogEntry)}
}

func (g *ErrorGroups) add(key string, entry model.LogEntry) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], entry)
}

// Keys returns the group keys in first-seen order.
func (g *ErrorGroups) Keys() []string {
	return g.keys
}

func (g *ErrorGroups) Get(key string) []model.LogEntry {
	return g.groups[key]
}

func (g *ErrorGroups) Len() int {
	return len(g.keys)
}

type logService struct {
	cfg    *config.LogsConfig
	runner runner.Runner
	parser parser.LogParser

	idRegex        *regexp.Regexp
	timestampRegex *regexp.Regexp
	ipRegex        *regexp.Regexp
	portRegex      *regexp.Regexp
	numberRegex    *regexp.Regexp
}

func NewLogService(cfg *config.Config, procRunner runner.Runner, logParser parser.LogParser) LogService {
	return &logService{
		cfg:    &cfg.Logs,
		runner: procRunner,
		parser: logParser,

		idRegex:        regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b|\b[0-9a-fA-F]{8,}\b`),
		timestampRegex: regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?`),
		ipRegex:        regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
		portRegex:      regexp.MustCompile(`(?i)(port )\d+`),
		numberRegex:    regexp.MustCompile(`\d{3,}`),
	}
}

// RetrieveLogs fetches up to maxLines recent log lines from the emulator,
// optionally filters them by a case-insensitive substring match on the raw
// line, and parses every surviving line. All failure modes are reported in
// the result, never as a Go error.
func (s *logService) RetrieveLogs(ctx context.Context, maxLines int, keywordFilter string) model.LogRetrievalResult {
	if maxLines <= 0 {
		maxLines = s.cfg.DefaultLines
	}

	args := append(append([]string{}, s.cfg.Args...), "--tail", strconv.Itoa(maxLines))
	cmdResult := s.runner.Run(ctx, s.cfg.Command, args, runner.Options{
		Timeout:   s.cfg.Timeout,
		MaxBuffer: s.cfg.MaxBuffer,
	})

	if cmdResult.Err != nil {
		return model.LogRetrievalResult{
			Success:      false,
			ErrorMessage: diagnoseLogFailure(cmdResult.Err, s.cfg.Command),
		}
	}

	if strings.TrimSpace(cmdResult.Stdout) == "" && strings.TrimSpace(cmdResult.Stderr) != "" {
		return model.LogRetrievalResult{
			Success:      false,
			ErrorMessage: strings.TrimSpace(cmdResult.Stderr),
		}
	}

	var rawLines []string
	for _, line := range strings.Split(cmdResult.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			rawLines = append(rawLines, line)
		}
	}
	totalLines := len(rawLines)

	// The filter runs on raw lines before parsing, so it matches against
	// timestamps and level tokens too.
	filtered := rawLines
	if keywordFilter != "" {
		needle := strings.ToLower(keywordFilter)
		filtered = nil
		for _, line := range rawLines {
			if strings.Contains(strings.ToLower(line), needle) {
				filtered = append(filtered, line)
			}
		}
	}

	logs := make([]model.LogEntry, 0, len(filtered))
	for _, line := range filtered {
		logs = append(logs, s.parser.Parse(line))
	}

	result := model.LogRetrievalResult{
		Success:    true,
		Logs:       logs,
		TotalLines: totalLines,
	}
	if keywordFilter != "" {
		result.FilteredLines = len(filtered)
	}

	log.Debug().Int("total_lines", totalLines).Int("parsed", len(logs)).Str("filter", keywordFilter).Msg("Retrieved emulator logs")
	return result
}

// diagnoseLogFailure maps the underlying runner error to a user-facing
// explanation with a remediation hint. Match order makes the three causes
// mutually exclusive.
func diagnoseLogFailure(err error, command string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "timed out"):
		return "Retrieving logs timed out. Try reducing the number of lines requested."
	case strings.Contains(msg, "failed to start") || strings.Contains(msg, "executable file not found"):
		return "Could not run '" + command + "'. Ensure it is installed and on PATH."
	default:
		return "Failed to retrieve logs: " + msg
	}
}

// GroupLogsByError clusters error/warning entries. API failures group by the
// exact "service.Operation => status" triple; everything else groups by its
// message with volatile substrings normalized away so structurally identical
// errors land in one bucket.
func (s *logService) GroupLogsByError(logs []model.LogEntry) *ErrorGroups {
	groups := newErrorGroups()
	for _, entry := range logs {
		if !entry.IsError && !entry.IsWarning {
			continue
		}
		groups.add(s.groupKey(entry), entry)
	}
	return groups
}

func (s *logService) groupKey(entry model.LogEntry) string {
	if entry.IsApiCall && entry.Service != "" && entry.Operation != "" && entry.StatusCode != 0 {
		return entry.Service + "." + entry.Operation + " => " + strconv.Itoa(entry.StatusCode)
	}
	return s.normalizeMessage(entry.Message)
}

// normalizeMessage replaces volatile substrings in a fixed order: ids,
// timestamps, IPs, ports, then remaining long integers.
func (s *logService) normalizeMessage(msg string) string {
	msg = s.idRegex.ReplaceAllString(msg, "[ID]")
	msg = s.timestampRegex.ReplaceAllString(msg, "[TIMESTAMP]")
	msg = s.ipRegex.ReplaceAllString(msg, "[IP]")
	msg = s.portRegex.ReplaceAllString(msg, "${1}[PORT]")
	msg = s.numberRegex.ReplaceAllString(msg, "[NUMBER]")
	return msg
}

// AnalyzeApiCalls aggregates API-call entries. Calls without a status code
// still count toward totals and the per-service/operation breakdowns but are
// excluded from the success/failure tally.
func (s *logService) AnalyzeApiCalls(logs []model.LogEntry) model.ApiCallStats {
	stats := model.ApiCallStats{
		CallsByService:   make(map[string]int),
		CallsByOperation: make(map[string]int),
		CallsByStatus:    make(map[int]int),
	}

	for _, entry := range logs {
		if !entry.IsApiCall {
			continue
		}
		stats.TotalCalls++

		if entry.Service != "" {
			stats.CallsByService[entry.Service]++
		}
		if entry.Operation != "" {
			stats.CallsByOperation[entry.Operation]++
		}
		if entry.StatusCode == 0 {
			continue
		}
		stats.CallsByStatus[entry.StatusCode]++
		if entry.StatusCode >= 400 {
			stats.FailedCalls++
			stats.FailedCallDetails = append(stats.FailedCallDetails, model.FailedCallInfo{
				Service:    entry.Service,
				Operation:  entry.Operation,
				StatusCode: entry.StatusCode,
				Message:    entry.Message,
			})
		} else {
			stats.SuccessfulCalls++
		}
	}

	return stats
}
