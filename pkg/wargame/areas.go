package wargame

// Area is a fixed operational area on the campaign map. Areas are static
// reference data; the live world state tracks per-area influence and the
// forces present there.
type Area struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Littoral   bool    `json:"littoral"` // supports amphibious landings
	HomeWaters Faction `json:"home_waters,omitempty"`
}

var areas = []Area{
	{ID: "nap", Name: "Northern Approaches", Littoral: false},
	{ID: "cch", Name: "Central Channel", Littoral: false},
	{ID: "sst", Name: "Southern Strait", Littoral: true},
	{ID: "wsh", Name: "Western Shelf", Littoral: true},
	{ID: "eli", Name: "Eastern Littoral", Littoral: true},
	{ID: "bhw", Name: "Blue Home Waters", HomeWaters: FactionBlue},
	{ID: "rhw", Name: "Red Home Waters", HomeWaters: FactionRed},
}

// AllAreas returns the static area catalog.
func AllAreas() []Area {
	return areas
}

// AreaByID looks up an area by its ID.
func AreaByID(id string) (Area, bool) {
	for _, a := range areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}
