package domain

import (
	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// AssignmentResult reports the per-lead outcome of a bulk assignment, so the
// caller can distinguish a fully applied batch from a fully rejected one.
type AssignmentResult struct {
	LeadID  uuid.UUID
	AgentID uuid.UUID
}

// Assignable filters leads according to the assignment rules. With
// Overwrite disabled, leads that already have an owner are excluded before
// any distribution, which keeps preview counts and actual assignment
// operating on the same set.
func Assignable(leads []Lead, rules AssignmentRules) []Lead {
	if rules.Overwrite {
		return leads
	}
	out := make([]Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.AssignedAgentID == nil {
			out = append(out, lead)
		}
	}
	return out
}

// AssignSingle assigns every lead to the same agent. Idempotent: leads
// already owned by the agent are assigned again without effect. An empty
// lead slice is a no-op.
func AssignSingle(leads []Lead, agentID uuid.UUID) ([]Lead, []AssignmentResult) {
	updated := make([]Lead, len(leads))
	results := make([]AssignmentResult, len(leads))
	for i, lead := range leads {
		id := agentID
		lead.AssignedAgentID = &id
		updated[i] = lead
		results[i] = AssignmentResult{LeadID: lead.ID, AgentID: agentID}
	}
	return updated, results
}

// AssignRoundRobin distributes leads over agents in input order: the lead at
// index i goes to agents[i mod len(agents)]. With n leads and a agents, the
// first n mod a agents receive one extra lead. The same mapping backs both
// the preview counts and the actual assignment, so a previewed distribution
// is exactly the one applied.
func AssignRoundRobin(leads []Lead, agents []uuid.UUID) ([]Lead, []AssignmentResult, map[uuid.UUID]int, error) {
	if len(agents) == 0 {
		if len(leads) == 0 {
			return nil, nil, map[uuid.UUID]int{}, nil
		}
		return nil, nil, nil, apperr.Validation("no agents to distribute leads over").
			WithReason(apperr.ReasonEmptyAgentSet)
	}

	updated := make([]Lead, len(leads))
	results := make([]AssignmentResult, len(leads))
	counts := make(map[uuid.UUID]int, len(agents))
	for _, agentID := range agents {
		counts[agentID] = 0
	}

	for i, lead := range leads {
		agentID := agents[i%len(agents)]
		id := agentID
		lead.AssignedAgentID = &id
		updated[i] = lead
		results[i] = AssignmentResult{LeadID: lead.ID, AgentID: agentID}
		counts[agentID]++
	}

	return updated, results, counts, nil
}

// PreviewRoundRobin returns the per-agent counts that AssignRoundRobin would
// produce for n leads, without touching any lead.
func PreviewRoundRobin(n int, agents []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(agents) == 0 {
		if n == 0 {
			return map[uuid.UUID]int{}, nil
		}
		return nil, apperr.Validation("no agents to distribute leads over").
			WithReason(apperr.ReasonEmptyAgentSet)
	}

	counts := make(map[uuid.UUID]int, len(agents))
	for _, agentID := range agents {
		counts[agentID] = 0
	}
	for i := 0; i < n; i++ {
		counts[agents[i%len(agents)]]++
	}
	return counts, nil
}
