package wargame

import "fmt"

// Phase identifies which stage of the shared clock a game is in.
// Exactly one applies at a time.
type Phase string

const (
	PhasePrePlanning Phase = "pre_planning"
	PhasePlanning    Phase = "planning"
	PhaseTurn        Phase = "turn"
)

// The clock always starts from the same calendar anchor. Turn 1 opens the
// day after the epoch and is always stamped day 1 regardless of what the
// calendar weekday of that date is; subsequent advances re-sync the day
// code to the calendar.
const (
	EpochDate   = "2030-06-01"
	TurnOneDate = "2030-06-02"
)

// TurnState is a snapshot of the shared game clock.
// TurnNumber is 0 during both planning phases and >=1 afterwards.
// DayOfWeek is 0 only during pre-planning.
type TurnState struct {
	CurrentDate string `json:"current_date"`
	DayOfWeek   int    `json:"day_of_week"`
	TurnNumber  int    `json:"turn_number"`
	Phase       Phase  `json:"phase"`
}

// InitialTurnState returns the canonical pre-planning start state.
func InitialTurnState() TurnState {
	return TurnState{
		CurrentDate: EpochDate,
		DayOfWeek:   0,
		TurnNumber:  0,
		Phase:       PhasePrePlanning,
	}
}

// IsPrePlanning reports whether the clock is in the pre-planning phase.
func (s TurnState) IsPrePlanning() bool { return s.Phase == PhasePrePlanning }

// IsPlanning reports whether the clock is in the planning phase.
func (s TurnState) IsPlanning() bool { return s.Phase == PhasePlanning }

// IsStartOfWeek reports whether the clock sits on day 1 of a numbered turn.
func (s TurnState) IsStartOfWeek() bool {
	return s.Phase == PhaseTurn && s.DayOfWeek == 1
}

// IsEndOfWeek reports whether the clock sits on day 7 of a numbered turn.
func (s TurnState) IsEndOfWeek() bool {
	return s.Phase == PhaseTurn && s.DayOfWeek == 7
}

// IsTurnChange reports whether advancing from prev to cur crossed a turn or
// day boundary. A nil prev (first observation) always counts as a change.
// Used to gate one-time effects like deployment resolution sweeps; a no-op
// advance must not fire them twice.
func IsTurnChange(prev *TurnState, cur TurnState) bool {
	if prev == nil {
		return true
	}
	if prev.TurnNumber != cur.TurnNumber || prev.DayOfWeek != cur.DayOfWeek {
		return true
	}
	return prev.Phase != PhaseTurn && cur.Phase == PhaseTurn
}

// Stage is a coarse bucket of game progress used by UI pacing rules.
type Stage string

const (
	StagePrePlanning Stage = "pre-planning"
	StagePlanning    Stage = "planning"
	StageEarly       Stage = "early-game"
	StageMid         Stage = "mid-game"
	StageLate        Stage = "late-game"
)

// GameStage classifies the clock state. Planning phases always override the
// turn-number thresholds.
func GameStage(s TurnState) Stage {
	switch s.Phase {
	case PhasePrePlanning:
		return StagePrePlanning
	case PhasePlanning:
		return StagePlanning
	}
	switch {
	case s.TurnNumber <= 2:
		return StageEarly
	case s.TurnNumber <= 5:
		return StageMid
	default:
		return StageLate
	}
}

var dayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the display name for a 1-7 day code, or empty string
// for out-of-range codes.
func DayName(day int) string {
	if day < 1 || day > 7 {
		return ""
	}
	return dayNames[day]
}

// FormatTurnDisplay renders the clock state as a human-readable label.
func FormatTurnDisplay(s TurnState) string {
	switch s.Phase {
	case PhasePrePlanning:
		return "Pre-Planning Phase"
	case PhasePlanning:
		return "Planning Phase"
	}
	return fmt.Sprintf("Week %d, %s (%s)", s.TurnNumber, DayName(s.DayOfWeek), s.CurrentDate)
}
