package wargame

// Card is a purchasable command card. Cards are static reference data;
// purchased copies live in faction hands and active pools in the world state.
//
// DelayDays is how many clock days pass between playing the card and the
// card taking effect in its destination area. Randomized cards resolve an
// influence roll when played instead of applying Influence directly.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cost        int    `json:"cost"`
	DelayDays   int    `json:"delay_days"`
	Randomized  bool   `json:"randomized"`
	Influence   int    `json:"influence"`
	Description string `json:"description"`
}

var cards = []Card{
	{ID: "carrier-strike", Name: "Carrier Strike", Cost: 5, DelayDays: 1, Influence: 3,
		Description: "Carrier air wing projects power over the area."},
	{ID: "asw-patrol", Name: "ASW Patrol", Cost: 2, DelayDays: 0, Influence: 1,
		Description: "Anti-submarine screen secures the sea lanes."},
	{ID: "marine-landing", Name: "Marine Landing", Cost: 6, DelayDays: 2, Influence: 4,
		Description: "Amphibious assault establishes a beachhead."},
	{ID: "supply-convoy", Name: "Supply Convoy", Cost: 3, DelayDays: 1, Influence: 2,
		Description: "Logistics convoy sustains forward forces."},
	{ID: "mine-laying", Name: "Mine Laying", Cost: 3, DelayDays: 1, Influence: 2,
		Description: "Minefields deny the area to enemy shipping."},
	{ID: "recon-flight", Name: "Recon Flight", Cost: 1, DelayDays: 0, Influence: 1,
		Description: "Maritime patrol aircraft sweep the area."},
	{ID: "shore-battery", Name: "Shore Battery", Cost: 4, DelayDays: 2, Influence: 3,
		Description: "Coastal missile battery covers the littoral."},
	{ID: "propaganda-broadcast", Name: "Propaganda Broadcast", Cost: 2, DelayDays: 0, Randomized: true, Influence: 2,
		Description: "Information campaign sways the local population."},
	{ID: "cyber-attack", Name: "Cyber Attack", Cost: 4, DelayDays: 0, Randomized: true, Influence: 3,
		Description: "Network intrusion disrupts enemy command systems."},
	{ID: "diplomatic-pressure", Name: "Diplomatic Pressure", Cost: 3, DelayDays: 0, Randomized: true, Influence: 2,
		Description: "Back-channel pressure shifts regional alignment."},
}

// AllCards returns the static card catalog.
func AllCards() []Card {
	return cards
}

// CardByID looks up a card by its ID.
func CardByID(id string) (Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// InfluenceMagnitude maps a 2d6 roll to the influence swing a randomized
// card actually delivers. Low rolls fizzle, high rolls double the card's
// base influence.
func InfluenceMagnitude(roll, base int) int {
	switch {
	case roll <= 4:
		return 0
	case roll <= 8:
		return base
	default:
		return base * 2
	}
}
