package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"localcloud-tools-backend/internal/model"
)

// ErrorGroupView is the grouped-error view rendered by ErrorSummaryReport.
// Keys are expected in first-seen order.
type ErrorGroupView interface {
	Keys() []string
	Get(key string) []model.LogEntry
	Len() int
}

// PolicyReport renders the IAM analysis: summary counts, the flat list of
// missing permissions, the pretty-printed policy document, and usage
// guidance. Pure formatting.
func PolicyReport(denials []model.LogEntry, permissions map[string]model.UniquePermission, policy model.PolicyDocument) string {
	var b strings.Builder

	b.WriteString("# IAM Policy Analysis\n\n")
	fmt.Fprintf(&b, "Found **%d** IAM denial(s) covering **%d** unique permission(s).\n\n", len(denials), len(permissions))

	if len(permissions) == 0 {
		b.WriteString("No missing permissions detected. Nothing to do.\n")
		return b.String()
	}

	b.WriteString("## Missing Permissions\n\n")
	for _, perm := range sortedPermissions(permissions) {
		fmt.Fprintf(&b, "- `%s` needs `%s` on `%s`\n", perm.Principal, perm.Action, perm.Resource)
	}

	b.WriteString("\n## Suggested Policy\n\n")
	b.WriteString("```json\n")
	if data, err := json.MarshalIndent(policy, "", "  "); err == nil {
		b.Write(data)
	}
	b.WriteString("\n```\n\n")

	b.WriteString("## Usage\n\n")
	b.WriteString("Attach this policy to the denied role or user. Review each statement before applying it: ")
	b.WriteString("the resource defaults to `*` when no resource could be correlated from the logs, and should be narrowed by hand.\n")

	return b.String()
}

// ErrorSummaryReport renders grouped errors/warnings in first-seen order with
// per-group occurrence counts and one sample line.
func ErrorSummaryReport(groups ErrorGroupView) string {
	var b strings.Builder

	b.WriteString("# Error Summary\n\n")
	if groups.Len() == 0 {
		b.WriteString("No errors or warnings found in the retrieved logs.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Found **%d** distinct error group(s).\n\n", groups.Len())
	for _, key := range groups.Keys() {
		entries := groups.Get(key)
		fmt.Fprintf(&b, "## %s\n\n", key)
		fmt.Fprintf(&b, "Occurrences: %d\n\n", len(entries))
		if len(entries) > 0 {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", entries[0].FullLine)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ApiCallReport renders API call statistics as markdown tables.
func ApiCallReport(stats model.ApiCallStats) string {
	var b strings.Builder

	b.WriteString("# API Call Statistics\n\n")
	fmt.Fprintf(&b, "Total: %d, successful: %d, failed: %d\n\n", stats.TotalCalls, stats.SuccessfulCalls, stats.FailedCalls)

	if len(stats.CallsByService) > 0 {
		b.WriteString("## Calls by Service\n\n")
		for _, svc := range sortedKeys(stats.CallsByService) {
			fmt.Fprintf(&b, "- %s: %d\n", svc, stats.CallsByService[svc])
		}
		b.WriteString("\n")
	}

	if len(stats.FailedCallDetails) > 0 {
		b.WriteString("## Failed Calls\n\n")
		for _, f := range stats.FailedCallDetails {
			fmt.Fprintf(&b, "- %s.%s => %d: %s\n", f.Service, f.Operation, f.StatusCode, f.Message)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// CommandReport renders a container exec result; stderr is included only when
// non-empty.
func CommandReport(command string, result model.ContainerExecResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Command: `%s`\n\n", command)
	fmt.Fprintf(&b, "Exit code: %d\n\n", result.ExitCode)
	if result.Stdout != "" {
		fmt.Fprintf(&b, "## Output\n\n```\n%s\n```\n", result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintf(&b, "\n## Stderr\n\n```\n%s\n```\n", result.Stderr)
	}

	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPermissions(permissions map[string]model.UniquePermission) []model.UniquePermission {
	perms := make([]model.UniquePermission, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool {
		a, b := perms[i], perms[j]
		if a.Principal != b.Principal {
			return a.Principal < b.Principal
		}
		if a.Action != b.Action {
			return a.Action < b.Action
		}
		return a.Resource < b.Resource
	})
	return perms
}
