package wargame

import "testing"

func TestInitialTurnState(t *testing.T) {
	s := InitialTurnState()
	if s.Phase != PhasePrePlanning {
		t.Errorf("phase = %s, want pre_planning", s.Phase)
	}
	if s.CurrentDate != "2030-06-01" || s.DayOfWeek != 0 || s.TurnNumber != 0 {
		t.Errorf("unexpected initial state: %+v", s)
	}
}

func TestIsTurnChange(t *testing.T) {
	base := turnAt("2030-06-03", 1, 1)
	planning := TurnState{CurrentDate: EpochDate, Phase: PhasePlanning}

	tests := []struct {
		name string
		prev *TurnState
		cur  TurnState
		want bool
	}{
		{"nil prev", nil, base, true},
		{"identical states", &base, base, false},
		{"turn differs", &base, turnAt("2030-06-10", 1, 2), true},
		{"day differs", &base, turnAt("2030-06-04", 2, 1), true},
		{"planning to turn", &planning, turnAt(TurnOneDate, 1, 1), true},
		{"planning to planning", &planning, planning, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTurnChange(tt.prev, tt.cur); got != tt.want {
				t.Errorf("IsTurnChange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekBoundaries(t *testing.T) {
	if !turnAt("2030-06-03", 1, 1).IsStartOfWeek() {
		t.Error("day 1 should be start of week")
	}
	if !turnAt("2030-06-09", 7, 1).IsEndOfWeek() {
		t.Error("day 7 should be end of week")
	}
	if turnAt("2030-06-04", 2, 1).IsStartOfWeek() || turnAt("2030-06-04", 2, 1).IsEndOfWeek() {
		t.Error("day 2 is neither boundary")
	}
	planning := TurnState{DayOfWeek: 1, Phase: PhasePlanning}
	if planning.IsStartOfWeek() || planning.IsEndOfWeek() {
		t.Error("planning states have no week boundaries")
	}
}

func TestGameStage(t *testing.T) {
	tests := []struct {
		name  string
		state TurnState
		want  Stage
	}{
		{"pre-planning", InitialTurnState(), StagePrePlanning},
		{"planning", TurnState{Phase: PhasePlanning}, StagePlanning},
		{"turn 1 early", turnAt("2030-06-02", 1, 1), StageEarly},
		{"turn 2 early", turnAt("2030-06-10", 1, 2), StageEarly},
		{"turn 3 mid", turnAt("2030-06-17", 1, 3), StageMid},
		{"turn 5 mid", turnAt("2030-07-01", 1, 5), StageMid},
		{"turn 6 late", turnAt("2030-07-08", 1, 6), StageLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameStage(tt.state); got != tt.want {
				t.Errorf("GameStage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatTurnDisplay(t *testing.T) {
	tests := []struct {
		state TurnState
		want  string
	}{
		{InitialTurnState(), "Pre-Planning Phase"},
		{TurnState{Phase: PhasePlanning}, "Planning Phase"},
		{turnAt("2030-06-03", 1, 1), "Week 1, Monday (2030-06-03)"},
		{turnAt("2030-06-09", 7, 1), "Week 1, Sunday (2030-06-09)"},
	}
	for _, tt := range tests {
		if got := FormatTurnDisplay(tt.state); got != tt.want {
			t.Errorf("FormatTurnDisplay(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestDayName(t *testing.T) {
	if DayName(1) != "Monday" || DayName(7) != "Sunday" {
		t.Error("day name mapping wrong at the endpoints")
	}
	if DayName(0) != "" || DayName(8) != "" {
		t.Error("out-of-range day codes should map to empty string")
	}
}
