package wargame

// AdvanceResult describes one tick of the shared clock.
type AdvanceResult struct {
	NewState              TurnState `json:"new_state"`
	CompletedWeek         bool      `json:"completed_week"`
	PlanningTransition    bool      `json:"planning_transition"`     // planning -> Turn 1
	PrePlanningTransition bool      `json:"pre_planning_transition"` // pre-planning -> planning
}

// AdvanceTurn computes the successor of a clock state. It is a pure mapping;
// callers persist the returned state.
//
// Pre-planning exits to planning with the turn number still 0 and the
// date/day carried over. Planning jumps to the fixed Turn 1 start state no
// matter what date it carried, so the transition always lands on the same
// state. A numbered turn advances by exactly one calendar day; the turn
// number increments only when day 7 rolls over to day 1.
func AdvanceTurn(cur TurnState) AdvanceResult {
	switch cur.Phase {
	case PhasePrePlanning:
		next := cur
		next.Phase = PhasePlanning
		return AdvanceResult{NewState: next, PrePlanningTransition: true}
	case PhasePlanning:
		return AdvanceResult{
			NewState: TurnState{
				CurrentDate: TurnOneDate,
				DayOfWeek:   1,
				TurnNumber:  1,
				Phase:       PhaseTurn,
			},
			PlanningTransition: true,
		}
	}

	next := cur
	next.CurrentDate = NextDate(cur.CurrentDate)
	next.DayOfWeek = DayOfWeek(parseDate(next.CurrentDate))

	completed := cur.DayOfWeek == 7 && next.DayOfWeek == 1
	if completed {
		next.TurnNumber++
	}
	return AdvanceResult{NewState: next, CompletedWeek: completed}
}
