package parser

import (
	"regexp"
	"strconv"
	"strings"

	"localcloud-tools-backend/internal/model"
)

// LogParser turns one raw emulator log line into a structured LogEntry. Parse
// is total: every line yields an entry, unparseable lines degrade to
// Message/FullLine only.
type LogParser interface {
	Parse(line string) model.LogEntry
}

// fieldRule is one (pattern, extractor) pair. Rules for a field are evaluated
// strictly in order; the first match wins and the rest are skipped.
type fieldRule struct {
	pattern *regexp.Regexp
	extract func(entry *model.LogEntry, groups []string)
}

type emulatorLogParser struct {
	timestampRegex   *regexp.Regexp
	levelRegex       *regexp.Regexp
	primaryApiRegex  *regexp.Regexp
	apiFallbackRules []fieldRule
	serviceRules     []fieldRule
	operationRules   []fieldRule
	iamDenialRegex   *regexp.Regexp
	iamResourceRegex *regexp.Regexp
	bracketTagRegex  *regexp.Regexp
	leadingJunkRegex *regexp.Regexp
}

var logLevels = map[string]bool{
	"TRACE":   true,
	"DEBUG":   true,
	"INFO":    true,
	"WARN":    true,
	"WARNING": true,
	"ERROR":   true,
	"FATAL":   true,
}

// Services the emulator is known to expose; used as the last-resort service
// detection rule.
var knownServices = []string{
	"s3", "sqs", "sns", "lambda", "dynamodb", "dynamodbstreams", "kinesis",
	"ec2", "iam", "sts", "cloudformation", "cloudwatch", "logs", "events",
	"apigateway", "secretsmanager", "ssm", "stepfunctions", "firehose",
	"route53", "kms", "ecr", "ecs", "elasticache", "redshift", "athena",
	"glue", "transcribe", "opensearch",
}

func NewEmulatorLogParser() LogParser {
	p := &emulatorLogParser{
		timestampRegex:   regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}`),
		levelRegex:       regexp.MustCompile(`(?:^|[\s\[])(TRACE|DEBUG|INFO|WARNING|WARN|ERROR|FATAL)(?:[\s\]:,]|$)`),
		primaryApiRegex:  regexp.MustCompile(`AWS (\w+)\.(\w+) => (\d{3})(?:\s*\(([^)]*)\))?`),
		iamDenialRegex:   regexp.MustCompile(`Request for service '([^']+)' by principal '([^']+)' for operation '([^']+)' denied\.`),
		iamResourceRegex: regexp.MustCompile(`Action '([^']+)' for '([^']+)'`),
		bracketTagRegex:  regexp.MustCompile(`^\s*\[[^\]]*\]\s*`),
		leadingJunkRegex: regexp.MustCompile(`^[\s:;,.\-]+`),
	}

	// Fallback API-call shapes, tried only when the primary pattern misses.
	// The last capture group carries the status code in both.
	p.apiFallbackRules = []fieldRule{
		{
			pattern: regexp.MustCompile(`\b(GET|POST|PUT|DELETE|HEAD|PATCH|OPTIONS)\b\s+\S+.*?\s(\d{3})\b`),
			extract: setStatusFromLastGroup,
		},
		{
			pattern: regexp.MustCompile(`\s(\d{3})\s+[A-Za-z]{2,}`),
			extract: setStatusFromLastGroup,
		},
	}

	p.serviceRules = []fieldRule{
		{
			pattern: regexp.MustCompile(`\bservices\.([A-Za-z0-9_]+)`),
			extract: setServiceFromGroup,
		},
		{
			pattern: regexp.MustCompile(`/_aws/([A-Za-z0-9_-]+)`),
			extract: setServiceFromGroup,
		},
		{
			pattern: regexp.MustCompile(`(?i)\b([a-z0-9]+)\.[a-z0-9.-]*amazonaws\.com`),
			extract: setServiceFromGroup,
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(knownServices, "|") + `)\b`),
			extract: setServiceFromGroup,
		},
	}

	p.operationRules = []fieldRule{
		{
			pattern: regexp.MustCompile(`\b([A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+)\b`),
			extract: setOperationFromGroup,
		},
		{
			pattern: regexp.MustCompile(`[?&]Action=(\w+)`),
			extract: setOperationFromGroup,
		},
		{
			pattern: regexp.MustCompile(`(?i)\boperation\s*[:=]\s*"?([A-Za-z0-9_]+)"?`),
			extract: setOperationFromGroup,
		},
	}

	return p
}

func setStatusFromLastGroup(entry *model.LogEntry, groups []string) {
	entry.IsApiCall = true
	for i := len(groups) - 1; i >= 1; i-- {
		if code, err := strconv.Atoi(groups[i]); err == nil {
			entry.StatusCode = code
			return
		}
	}
}

func setServiceFromGroup(entry *model.LogEntry, groups []string) {
	entry.Service = strings.ReplaceAll(strings.ToLower(groups[1]), "_", "")
}

func setOperationFromGroup(entry *model.LogEntry, groups []string) {
	op := groups[1]
	if len(op) <= 2 || logLevels[strings.ToUpper(op)] {
		return
	}
	entry.Operation = op
}

// Parse applies the rule chain to one line. Fields are additive: a line can
// be both an IAM denial and an API call, and no field is cleared once set.
func (p *emulatorLogParser) Parse(line string) model.LogEntry {
	entry := model.LogEntry{
		Message:  line,
		FullLine: line,
	}

	timestamp := p.timestampRegex.FindString(line)
	entry.Timestamp = timestamp

	var levelToken string
	if m := p.levelRegex.FindStringSubmatch(line); m != nil {
		levelToken = m[1]
		entry.Level = levelToken
		switch levelToken {
		case "ERROR", "FATAL":
			entry.IsError = true
		case "WARN", "WARNING":
			entry.IsWarning = true
		}
	}

	apiMessage := p.parseApiCall(&entry, line)

	if entry.Service == "" {
		applyFirstMatch(p.serviceRules, &entry, line, func(e *model.LogEntry) bool { return e.Service != "" })
	}
	if entry.Operation == "" {
		applyFirstMatch(p.operationRules, &entry, line, func(e *model.LogEntry) bool { return e.Operation != "" })
	}

	if entry.StatusCode >= 400 {
		entry.IsError = true
	}

	p.parseIamDenial(&entry, line)

	if apiMessage != "" {
		entry.Message = apiMessage
	} else {
		entry.Message = p.cleanMessage(line, timestamp, levelToken)
	}

	return entry
}

// parseApiCall handles the primary "AWS svc.Op => status (detail)" shape and
// the two fallback shapes. Returns the rewritten message when the primary
// pattern carried a parenthetical detail.
func (p *emulatorLogParser) parseApiCall(entry *model.LogEntry, line string) string {
	if m := p.primaryApiRegex.FindStringSubmatch(line); m != nil {
		entry.IsApiCall = true
		entry.Service = strings.ToLower(m[1])
		entry.Operation = m[2]
		if code, err := strconv.Atoi(m[3]); err == nil {
			entry.StatusCode = code
			if code >= 400 {
				entry.IsError = true
			}
		}
		if m[4] != "" {
			return entry.Operation + " failed: " + m[4] + " (" + m[3] + ")"
		}
		return ""
	}

	for _, rule := range p.apiFallbackRules {
		if m := rule.pattern.FindStringSubmatch(line); m != nil {
			rule.extract(entry, m)
			break
		}
	}
	return ""
}

// applyFirstMatch evaluates rules in order and stops at the first one whose
// extractor actually populated the field (extractors may reject a match).
func applyFirstMatch(rules []fieldRule, entry *model.LogEntry, line string, isSet func(*model.LogEntry) bool) {
	for _, rule := range rules {
		if m := rule.pattern.FindStringSubmatch(line); m != nil {
			rule.extract(entry, m)
			if isSet(entry) {
				return
			}
		}
	}
}

func (p *emulatorLogParser) parseIamDenial(entry *model.LogEntry, line string) {
	if m := p.iamDenialRegex.FindStringSubmatch(line); m != nil {
		entry.IsIamDenial = true
		entry.IsError = true
		entry.Service = strings.ToLower(m[1])
		entry.IamPrincipal = m[2]
		entry.IamAction = strings.ToLower(m[1]) + ":" + m[3]
	}

	// Resource pairs are scanned globally and the last occurrence wins,
	// unlike the first-match-wins rules above.
	if all := p.iamResourceRegex.FindAllStringSubmatch(line, -1); len(all) > 0 {
		last := all[len(all)-1]
		entry.IamAction = last[1]
		entry.IamResource = last[2]
	}
}

// cleanMessage strips the matched timestamp and level tokens plus a leading
// bracket tag. Falls back to the full line when cleaning removes everything
// or changes nothing.
func (p *emulatorLogParser) cleanMessage(line, timestamp, levelToken string) string {
	msg := line
	if timestamp != "" {
		msg = strings.Replace(msg, timestamp, "", 1)
	}
	if levelToken != "" {
		msg = strings.Replace(msg, levelToken, "", 1)
	}
	msg = p.bracketTagRegex.ReplaceAllString(msg, "")
	msg = p.leadingJunkRegex.ReplaceAllString(msg, "")
	msg = strings.TrimSpace(msg)

	if msg == "" || msg == line {
		return line
	}
	return msg
}
