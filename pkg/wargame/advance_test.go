package wargame

import "testing"

func TestAdvanceTurn_PrePlanningToPlanning(t *testing.T) {
	res := AdvanceTurn(InitialTurnState())

	if !res.PrePlanningTransition {
		t.Error("expected PrePlanningTransition flag")
	}
	if res.PlanningTransition || res.CompletedWeek {
		t.Error("no other flags should be set")
	}
	s := res.NewState
	if s.Phase != PhasePlanning {
		t.Errorf("phase = %s, want planning", s.Phase)
	}
	if s.TurnNumber != 0 {
		t.Errorf("turn = %d, want 0", s.TurnNumber)
	}
	if s.CurrentDate != EpochDate {
		t.Errorf("date = %s, want carried-over epoch", s.CurrentDate)
	}
}

func TestAdvanceTurn_PlanningToTurnOne(t *testing.T) {
	res := AdvanceTurn(TurnState{CurrentDate: EpochDate, Phase: PhasePlanning})

	if !res.PlanningTransition {
		t.Error("expected PlanningTransition flag")
	}
	s := res.NewState
	if s.Phase != PhaseTurn || s.TurnNumber != 1 || s.DayOfWeek != 1 {
		t.Errorf("unexpected turn 1 start state: %+v", s)
	}
	if s.CurrentDate != "2030-06-02" {
		t.Errorf("date = %s, want 2030-06-02", s.CurrentDate)
	}
}

func TestAdvanceTurn_PlanningJumpIgnoresCarriedDate(t *testing.T) {
	// The transition lands on the same fixed state no matter what date the
	// planning phase carried.
	a := AdvanceTurn(TurnState{CurrentDate: EpochDate, Phase: PhasePlanning})
	b := AdvanceTurn(TurnState{CurrentDate: "2031-12-25", DayOfWeek: 4, Phase: PhasePlanning})
	if a.NewState != b.NewState {
		t.Errorf("planning transitions differ: %+v vs %+v", a.NewState, b.NewState)
	}
}

func TestAdvanceTurn_NormalDay(t *testing.T) {
	res := AdvanceTurn(turnAt("2030-06-03", 1, 1))

	s := res.NewState
	if s.CurrentDate != "2030-06-04" {
		t.Errorf("date = %s, want 2030-06-04", s.CurrentDate)
	}
	if s.DayOfWeek != 2 {
		t.Errorf("day = %d, want 2", s.DayOfWeek)
	}
	if s.TurnNumber != 1 {
		t.Errorf("turn = %d, want unchanged 1", s.TurnNumber)
	}
	if res.CompletedWeek || res.PlanningTransition || res.PrePlanningTransition {
		t.Error("no flags expected for a mid-week advance")
	}
}

func TestAdvanceTurn_WeekRollover(t *testing.T) {
	res := AdvanceTurn(turnAt("2030-06-09", 7, 1))

	if !res.CompletedWeek {
		t.Error("expected CompletedWeek on day 7 -> day 1")
	}
	s := res.NewState
	if s.CurrentDate != "2030-06-10" || s.DayOfWeek != 1 || s.TurnNumber != 2 {
		t.Errorf("unexpected rollover state: %+v", s)
	}
}

func TestAdvanceTurn_DateAlwaysMovesOneDay(t *testing.T) {
	s := turnAt("2030-06-02", 1, 1)
	for i := 0; i < 30; i++ {
		res := AdvanceTurn(s)
		if got, want := res.NewState.CurrentDate, NextDate(s.CurrentDate); got != want {
			t.Fatalf("advance %d: date = %s, want %s", i, got, want)
		}
		if res.NewState.DayOfWeek < 1 || res.NewState.DayOfWeek > 7 {
			t.Fatalf("advance %d: day out of range: %d", i, res.NewState.DayOfWeek)
		}
		s = res.NewState
	}
}

func TestAdvanceTurn_TurnIncrementsOnlyOnRollover(t *testing.T) {
	// Walk a full week from the Monday after turn 1 opens; the turn number
	// must only change on the Sunday -> Monday boundary.
	s := turnAt("2030-06-03", 1, 1)
	for s.DayOfWeek < 7 {
		res := AdvanceTurn(s)
		if res.CompletedWeek {
			t.Fatalf("unexpected CompletedWeek at day %d", s.DayOfWeek)
		}
		if res.NewState.TurnNumber != s.TurnNumber {
			t.Fatalf("turn changed mid-week at day %d", s.DayOfWeek)
		}
		s = res.NewState
	}
	res := AdvanceTurn(s)
	if !res.CompletedWeek || res.NewState.TurnNumber != 2 {
		t.Errorf("expected week completion into turn 2, got %+v", res)
	}
}
