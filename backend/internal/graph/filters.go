package graph

import "strings"

// Filters is the tenancy triple scoping every read and write. An empty
// field is unconstrained, never "must be null".
type Filters struct {
	UserID  string `json:"user_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// IsZero reports whether no tenancy field is set
func (f Filters) IsZero() bool {
	return f.UserID == "" && f.AgentID == "" && f.RunID == ""
}

// Clause builds a conjunctive WHERE fragment for the given node alias.
// Extra conditions are ANDed in. With no fields and no extras the fragment
// is the literal TRUE; destructive callers must reject that case themselves.
func (f Filters) Clause(alias string, extra ...string) string {
	conditions := make([]string, 0, 3+len(extra))
	if f.UserID != "" {
		conditions = append(conditions, alias+".user_id = $user_id")
	}
	if f.AgentID != "" {
		conditions = append(conditions, alias+".agent_id = $agent_id")
	}
	if f.RunID != "" {
		conditions = append(conditions, alias+".run_id = $run_id")
	}
	conditions = append(conditions, extra...)

	if len(conditions) == 0 {
		return "TRUE"
	}
	return strings.Join(conditions, " AND ")
}

// Params binds all three tenancy keys, nil for absent fields, so query
// execution never fails on a missing parameter.
func (f Filters) Params() map[string]interface{} {
	params := map[string]interface{}{
		"user_id":  nil,
		"agent_id": nil,
		"run_id":   nil,
	}
	if f.UserID != "" {
		params["user_id"] = f.UserID
	}
	if f.AgentID != "" {
		params["agent_id"] = f.AgentID
	}
	if f.RunID != "" {
		params["run_id"] = f.RunID
	}
	return params
}
