package wargame

// ActivationStamp is the (turn, day) point on the shared clock at which a
// queued deployment becomes active. Ordering between stamps and clock
// states is lexicographic on (turn, day); nothing finer-grained exists.
type ActivationStamp struct {
	Turn int `json:"turn"`
	Day  int `json:"day"`
}

// Due reports whether the clock has reached or passed the stamp.
// A day value above 7 is never due within its own turn; stamps with
// overflowed days are never produced (see ActivationFor), so this function
// does not normalize them.
func (a ActivationStamp) Due(s TurnState) bool {
	if s.Phase != PhaseTurn {
		return false
	}
	return s.TurnNumber > a.Turn || (s.TurnNumber == a.Turn && s.DayOfWeek >= a.Day)
}

// ActivationFor computes the stamp delayDays ahead of the current clock.
// Days past the end of the week wrap into the following turn, so the
// resulting Day is always in [1,7]. Deployments issued during the planning
// phases are stamped relative to the opening day of Turn 1.
func ActivationFor(s TurnState, delayDays int) ActivationStamp {
	if delayDays < 0 {
		delayDays = 0
	}
	turn, day := s.TurnNumber, s.DayOfWeek
	if s.Phase != PhaseTurn {
		turn, day = 1, 1
	}
	day += delayDays
	turn += (day - 1) / 7
	day = (day-1)%7 + 1
	return ActivationStamp{Turn: turn, Day: day}
}

// ActivateCard moves a played card into the faction's active pool in its
// destination area.
func (ws *WorldState) ActivateCard(cardID string, f Faction, areaID string) {
	ws.ActiveCards = append(ws.ActiveCards, PlacedCard{CardID: cardID, Faction: f, AreaID: areaID})
}

// ActivateUnit assigns a unit to its task force and area. Returns false if
// the unit no longer exists (the pending entry is then an orphan and the
// caller drops it).
func (ws *WorldState) ActivateUnit(unitID, taskForceID, areaID string) bool {
	u := ws.UnitByID(unitID)
	if u == nil {
		return false
	}
	u.TaskForceID = taskForceID
	if areaID != "" {
		u.AreaID = areaID
	} else if tf := ws.TaskForceByID(taskForceID); tf != nil {
		u.AreaID = tf.AreaID
	}
	return true
}

// ActivateTaskForce clears a task force's pending flag. Returns false if
// the task force no longer exists.
func (ws *WorldState) ActivateTaskForce(taskForceID string) bool {
	tf := ws.TaskForceByID(taskForceID)
	if tf == nil {
		return false
	}
	tf.IsPendingDeployment = false
	return true
}
