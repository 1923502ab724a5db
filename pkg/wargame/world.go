package wargame

// Faction identifies one of the two sides.
type Faction string

const (
	FactionBlue Faction = "blue"
	FactionRed  Faction = "red"
)

// AllFactions returns both factions.
func AllFactions() []Faction {
	return []Faction{FactionBlue, FactionRed}
}

// ValidFaction reports whether s names a playable faction.
func ValidFaction(s string) bool {
	return s == string(FactionBlue) || s == string(FactionRed)
}

// UnitType classifies a naval or amphibious unit.
type UnitType string

const (
	UnitCarrier   UnitType = "carrier"
	UnitDestroyer UnitType = "destroyer"
	UnitSubmarine UnitType = "submarine"
	UnitAmphib    UnitType = "amphib"
	UnitMarines   UnitType = "marines"
)

// Unit is a single deployed or deployable unit.
type Unit struct {
	ID          string   `json:"id"`
	Faction     Faction  `json:"faction"`
	Type        UnitType `json:"type"`
	TaskForceID string   `json:"task_force_id,omitempty"`
	AreaID      string   `json:"area_id,omitempty"`
}

// TaskForce groups units under one command in an operational area.
type TaskForce struct {
	ID                  string  `json:"id"`
	Faction             Faction `json:"faction"`
	Name                string  `json:"name"`
	AreaID              string  `json:"area_id,omitempty"`
	IsPendingDeployment bool    `json:"is_pending_deployment"`
}

// PlacedCard is a card active in an operational area.
type PlacedCard struct {
	CardID  string  `json:"card_id"`
	Faction Faction `json:"faction"`
	AreaID  string  `json:"area_id"`
}

// WorldState is a complete snapshot of the campaign world apart from the
// clock: per-area influence, command point budgets, and all forces. It is
// persisted as a single document and mutated only through the methods here.
type WorldState struct {
	Influence     map[string]map[Faction]int `json:"influence"` // area ID -> faction -> influence
	CommandPoints map[Faction]int            `json:"command_points"`
	Hands         map[Faction][]string       `json:"hands"` // purchased, unplayed card IDs
	ActiveCards   []PlacedCard               `json:"active_cards"`
	TaskForces    []TaskForce                `json:"task_forces"`
	Units         []Unit                     `json:"units"`
}

// StartingCommandPoints is each faction's budget at game start.
const StartingCommandPoints = 10

// WeeklyCommandPoints is the income granted when a week completes.
const WeeklyCommandPoints = 5

// NewInitialWorldState returns the pre-planning starting world: zero
// influence everywhere, starting budgets, empty hands and forces.
func NewInitialWorldState() *WorldState {
	influence := make(map[string]map[Faction]int, len(areas))
	for _, a := range areas {
		influence[a.ID] = map[Faction]int{FactionBlue: 0, FactionRed: 0}
	}
	return &WorldState{
		Influence: influence,
		CommandPoints: map[Faction]int{
			FactionBlue: StartingCommandPoints,
			FactionRed:  StartingCommandPoints,
		},
		Hands: map[Faction][]string{},
	}
}

// InfluenceIn returns a faction's influence in an area.
func (ws *WorldState) InfluenceIn(areaID string, f Faction) int {
	return ws.Influence[areaID][f]
}

// AdjustInfluence shifts a faction's influence in an area by delta and
// returns the new value. Unknown areas get an entry created on demand so
// snapshots from older games stay loadable.
func (ws *WorldState) AdjustInfluence(areaID string, f Faction, delta int) int {
	if ws.Influence == nil {
		ws.Influence = make(map[string]map[Faction]int)
	}
	if ws.Influence[areaID] == nil {
		ws.Influence[areaID] = make(map[Faction]int)
	}
	ws.Influence[areaID][f] += delta
	return ws.Influence[areaID][f]
}

// UnitByID returns the unit with the given ID, or nil.
func (ws *WorldState) UnitByID(id string) *Unit {
	for i := range ws.Units {
		if ws.Units[i].ID == id {
			return &ws.Units[i]
		}
	}
	return nil
}

// TaskForceByID returns the task force with the given ID, or nil.
func (ws *WorldState) TaskForceByID(id string) *TaskForce {
	for i := range ws.TaskForces {
		if ws.TaskForces[i].ID == id {
			return &ws.TaskForces[i]
		}
	}
	return nil
}

// HandContains reports whether a faction holds an unplayed copy of a card.
func (ws *WorldState) HandContains(f Faction, cardID string) bool {
	for _, id := range ws.Hands[f] {
		if id == cardID {
			return true
		}
	}
	return false
}

// RemoveFromHand removes one copy of a card from a faction's hand.
// Returns false if the faction holds no copy.
func (ws *WorldState) RemoveFromHand(f Faction, cardID string) bool {
	hand := ws.Hands[f]
	for i, id := range hand {
		if id == cardID {
			ws.Hands[f] = append(hand[:i], hand[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the world state. Mutations to the clone do
// not affect the original.
func (ws *WorldState) Clone() *WorldState {
	c := &WorldState{}
	if ws.Influence != nil {
		c.Influence = make(map[string]map[Faction]int, len(ws.Influence))
		for area, byFaction := range ws.Influence {
			inner := make(map[Faction]int, len(byFaction))
			for f, v := range byFaction {
				inner[f] = v
			}
			c.Influence[area] = inner
		}
	}
	if ws.CommandPoints != nil {
		c.CommandPoints = make(map[Faction]int, len(ws.CommandPoints))
		for f, v := range ws.CommandPoints {
			c.CommandPoints[f] = v
		}
	}
	if ws.Hands != nil {
		c.Hands = make(map[Faction][]string, len(ws.Hands))
		for f, hand := range ws.Hands {
			cp := make([]string, len(hand))
			copy(cp, hand)
			c.Hands[f] = cp
		}
	}
	if ws.ActiveCards != nil {
		c.ActiveCards = make([]PlacedCard, len(ws.ActiveCards))
		copy(c.ActiveCards, ws.ActiveCards)
	}
	if ws.TaskForces != nil {
		c.TaskForces = make([]TaskForce, len(ws.TaskForces))
		copy(c.TaskForces, ws.TaskForces)
	}
	if ws.Units != nil {
		c.Units = make([]Unit, len(ws.Units))
		copy(c.Units, ws.Units)
	}
	return c
}

// GrantWeeklyIncome adds the weekly command point income to both factions.
// Called once per completed week.
func (ws *WorldState) GrantWeeklyIncome() {
	if ws.CommandPoints == nil {
		ws.CommandPoints = make(map[Faction]int)
	}
	for _, f := range AllFactions() {
		ws.CommandPoints[f] += WeeklyCommandPoints
	}
}
