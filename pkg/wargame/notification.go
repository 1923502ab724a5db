package wargame

// NotificationPhase tracks the two-step reveal of a played card. A card
// with a randomized outcome is announced to both factions before its roll
// is known (card_shown) and the same record is later amended with the
// resolved result (result_ready). The transition is one-way and happens
// exactly once per notification.
type NotificationPhase string

const (
	NotificationCardShown   NotificationPhase = "card_shown"
	NotificationResultReady NotificationPhase = "result_ready"
)

// CanResolve reports whether a notification in this phase may move to
// result_ready.
func (p NotificationPhase) CanResolve() bool {
	return p == NotificationCardShown
}
