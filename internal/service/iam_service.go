package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/internal/model"
	"localcloud-tools-backend/internal/report"
	"localcloud-tools-backend/internal/util"
)

// correlationWindow is the maximum distance between a denial and a
// resource-bearing log line for them to be considered the same request.
const correlationWindow = 5000 * time.Millisecond

// IamService derives a minimal least-privilege policy from observed IAM
// denial log entries.
type IamService interface {
	EnrichWithResourceData(denials []model.LogEntry, allLogs []model.LogEntry) []model.LogEntry
	DeduplicatePermissions(denials []model.LogEntry) map[string]model.UniquePermission
	GenerateIamPolicy(permissions map[string]model.UniquePermission) model.PolicyDocument
	FormatPolicyReport(denials []model.LogEntry, permissions map[string]model.UniquePermission, policy model.PolicyDocument) string
}

type iamService struct{}

func NewIamService() IamService {
	return &iamService{}
}

// EnrichWithResourceData backfills IamResource on denial entries by scanning
// the full log set for lines carrying the same action and a resource, within
// the correlation window of the denial's timestamp. The first match in
// original log order wins even when a later candidate is closer in time;
// generated policies depend on that tie-break, so it must not change.
func (s *iamService) EnrichWithResourceData(denials []model.LogEntry, allLogs []model.LogEntry) []model.LogEntry {
	enriched := make([]model.LogEntry, len(denials))
	copy(enriched, denials)

	for i := range enriched {
		denial := &enriched[i]
		if denial.Timestamp == "" || denial.IamAction == "" {
			continue
		}
		denialTime, err := util.ParseTimeFlexible(denial.Timestamp)
		if err != nil {
			continue
		}

		for _, candidate := range allLogs {
			if candidate.IamAction != denial.IamAction || candidate.IamResource == "" {
				continue
			}
			candidateTime, err := util.ParseTimeFlexible(candidate.Timestamp)
			if err != nil {
				continue
			}
			diff := candidateTime.Sub(denialTime)
			if diff < 0 {
				diff = -diff
			}
			if diff <= correlationWindow {
				denial.IamResource = candidate.IamResource
				break
			}
		}
	}

	log.Debug().Int("denials", len(enriched)).Msg("Correlated IAM denials with resource data")
	return enriched
}

// DeduplicatePermissions collapses denials into unique
// (principal, action, resource) triples. Entries missing a principal or an
// action are skipped; an unknown resource defaults to "*"; the first
// occurrence of a key wins.
func (s *iamService) DeduplicatePermissions(denials []model.LogEntry) map[string]model.UniquePermission {
	unique := make(map[string]model.UniquePermission)

	for _, denial := range denials {
		if denial.IamPrincipal == "" || denial.IamAction == "" {
			continue
		}
		resource := denial.IamResource
		if resource == "" {
			resource = "*"
		}
		key := denial.IamPrincipal + "|" + denial.IamAction + "|" + resource
		if _, seen := unique[key]; seen {
			continue
		}
		unique[key] = model.UniquePermission{
			Principal: denial.IamPrincipal,
			Action:    denial.IamAction,
			Resource:  resource,
		}
	}

	return unique
}

// GenerateIamPolicy emits one Allow statement per resource with the sorted,
// deduplicated action list. The document is identity-based: it is meant to be
// attached to the denied role or user, so statements carry no Principal.
// Resources are iterated in sorted order to keep the sequential Sids stable.
func (s *iamService) GenerateIamPolicy(permissions map[string]model.UniquePermission) model.PolicyDocument {
	actionsByResource := make(map[string]map[string]bool)
	for _, perm := range permissions {
		if actionsByResource[perm.Resource] == nil {
			actionsByResource[perm.Resource] = make(map[string]bool)
		}
		actionsByResource[perm.Resource][perm.Action] = true
	}

	resources := make([]string, 0, len(actionsByResource))
	for resource := range actionsByResource {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	policy := model.PolicyDocument{Version: "2012-10-17"}
	for i, resource := range resources {
		actions := make([]string, 0, len(actionsByResource[resource]))
		for action := range actionsByResource[resource] {
			actions = append(actions, action)
		}
		sort.Strings(actions)

		policy.Statement = append(policy.Statement, model.PolicyStatement{
			Sid:      "GeneratedStatement" + strconv.Itoa(i+1),
			Effect:   "Allow",
			Action:   actions,
			Resource: resource,
		})
	}

	return policy
}

// FormatPolicyReport renders the human-readable report; the formatting lives
// in the report package.
func (s *iamService) FormatPolicyReport(denials []model.LogEntry, permissions map[string]model.UniquePermission, policy model.PolicyDocument) string {
	return report.PolicyReport(denials, permissions, policy)
}
