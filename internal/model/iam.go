package model

// UniquePermission is one deduplicated (principal, action, resource) triple
// observed in IAM denial logs. Resource is "*" when no resource could be
// correlated.
type UniquePermission struct {
	Principal string `json:"principal"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
}

// PolicyStatement is one statement of a generated identity-based policy.
// There is deliberately no Principal field: the document is meant to be
// attached to the denied role or user.
type PolicyStatement struct {
	Sid      string   `json:"Sid"`
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource string   `json:"Resource"`
}

// PolicyDocument is a minimal least-privilege policy covering the observed
// denials.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}
