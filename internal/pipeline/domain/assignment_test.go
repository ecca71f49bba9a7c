package domain

import (
	"testing"

	"lead_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

func makeLeads(n int) []Lead {
	leads := make([]Lead, n)
	for i := range leads {
		leads[i] = newTestLead()
	}
	return leads
}

func makeAgents(n int) []uuid.UUID {
	agents := make([]uuid.UUID, n)
	for i := range agents {
		agents[i] = uuid.New()
	}
	return agents
}

func TestAssignSingle_AssignsAll(t *testing.T) {
	leads := makeLeads(4)
	agentID := uuid.New()

	updated, results := AssignSingle(leads, agentID)
	if len(updated) != 4 || len(results) != 4 {
		t.Fatalf("expected 4 updated leads and 4 results, got %d/%d", len(updated), len(results))
	}
	for i, lead := range updated {
		if lead.AssignedAgentID == nil || *lead.AssignedAgentID != agentID {
			t.Errorf("lead %d not assigned to agent", i)
		}
	}
}

func TestAssignSingle_EmptyIsNoOp(t *testing.T) {
	updated, results := AssignSingle(nil, uuid.New())
	if len(updated) != 0 || len(results) != 0 {
		t.Fatal("expected no-op for empty lead set")
	}
}

func TestAssignSingle_Idempotent(t *testing.T) {
	agentID := uuid.New()
	leads := makeLeads(2)
	leads[0].AssignedAgentID = &agentID

	updated, _ := AssignSingle(leads, agentID)
	if *updated[0].AssignedAgentID != agentID {
		t.Error("re-assigning to the same agent must keep the assignment")
	}
}

func TestAssignRoundRobin_TenLeadsThreeAgents(t *testing.T) {
	leads := makeLeads(10)
	agents := makeAgents(3)

	updated, results, counts, err := AssignRoundRobin(leads, agents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 10 || len(results) != 10 {
		t.Fatalf("expected 10 assignments, got %d/%d", len(updated), len(results))
	}

	// The first n mod a agents get one extra lead, in agent input order.
	want := []int{4, 3, 3}
	total := 0
	for i, agentID := range agents {
		if counts[agentID] != want[i] {
			t.Errorf("agent %d: expected %d leads, got %d", i, want[i], counts[agentID])
		}
		total += counts[agentID]
	}
	if total != 10 {
		t.Errorf("expected counts to sum to 10, got %d", total)
	}

	// Lead i goes to agents[i mod a].
	for i, lead := range updated {
		wantAgent := agents[i%3]
		if lead.AssignedAgentID == nil || *lead.AssignedAgentID != wantAgent {
			t.Errorf("lead %d: expected agent %s", i, wantAgent)
		}
	}
}

func TestAssignRoundRobin_EmptyAgents(t *testing.T) {
	_, _, _, err := AssignRoundRobin(makeLeads(3), nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperr.GetReason(err) != apperr.ReasonEmptyAgentSet {
		t.Fatalf("expected reason %s, got %s", apperr.ReasonEmptyAgentSet, apperr.GetReason(err))
	}
}

func TestAssignRoundRobin_EmptyLeadsAndAgentsIsNoOp(t *testing.T) {
	_, _, counts, err := AssignRoundRobin(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 0 {
		t.Fatal("expected empty counts")
	}
}

func TestPreviewRoundRobin_MatchesExecution(t *testing.T) {
	for _, n := range []int{1, 2, 7, 10, 23} {
		for _, a := range []int{1, 2, 3, 5} {
			leads := makeLeads(n)
			agents := makeAgents(a)

			preview, err := PreviewRoundRobin(n, agents)
			if err != nil {
				t.Fatalf("n=%d a=%d: preview error: %v", n, a, err)
			}
			_, _, actual, err := AssignRoundRobin(leads, agents)
			if err != nil {
				t.Fatalf("n=%d a=%d: assign error: %v", n, a, err)
			}

			for agentID, count := range actual {
				if preview[agentID] != count {
					t.Errorf("n=%d a=%d: preview %d != actual %d for agent %s",
						n, a, preview[agentID], count, agentID)
				}
			}
		}
	}
}

func TestAssignable_FiltersOwnedLeads(t *testing.T) {
	owner := uuid.New()
	leads := makeLeads(3)
	leads[1].AssignedAgentID = &owner

	kept := Assignable(leads, AssignmentRules{Overwrite: false})
	if len(kept) != 2 {
		t.Fatalf("expected 2 assignable leads, got %d", len(kept))
	}

	all := Assignable(leads, AssignmentRules{Overwrite: true})
	if len(all) != 3 {
		t.Fatalf("expected 3 assignable leads with overwrite, got %d", len(all))
	}
}
