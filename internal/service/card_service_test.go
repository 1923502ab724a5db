package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

func TestPurchaseCardSpendsPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	card, _ := wargame.CardByID("asw-patrol")
	world, err := env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, card.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	want := wargame.StartingCommandPoints - card.Cost
	if world.CommandPoints[wargame.FactionBlue] != want {
		t.Fatalf("expected %d points, got %d", want, world.CommandPoints[wargame.FactionBlue])
	}
	if !world.HandContains(wargame.FactionBlue, card.ID) {
		t.Fatal("expected card in hand")
	}
	if world.CommandPoints[wargame.FactionRed] != wargame.StartingCommandPoints {
		t.Fatal("red's points should be untouched")
	}
	if !env.bc.has("card_purchased") {
		t.Fatal("expected card_purchased broadcast")
	}
}

func TestPurchaseCardInsufficientPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	world := env.world(t)
	world.CommandPoints[wargame.FactionBlue] = 0
	saveWorld(ctx, env.cache, env.gameID, world)

	_, err := env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, "carrier-strike")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if _, err := env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, "no-such-card"); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestPlayCardRequiresHand(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.cardSvc.PlayCard(context.Background(), env.gameID, env.blueUser, "asw-patrol", "nap")
	if !errors.Is(err, ErrCardNotInHand) {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	if _, err := env.cardSvc.PlayCard(context.Background(), env.gameID, env.blueUser, "asw-patrol", "atlantis"); !errors.Is(err, ErrInvalidArea) {
		t.Fatalf("expected ErrInvalidArea, got %v", err)
	}
}

func TestPlayFixedCardResolvesImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	card, _ := wargame.CardByID("asw-patrol")
	if card.Randomized || card.DelayDays != 0 {
		t.Fatalf("test expects a fixed zero-delay card, got %+v", card)
	}

	env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, card.ID)
	res, err := env.cardSvc.PlayCard(ctx, env.gameID, env.blueUser, card.ID, "cch")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Queued != nil {
		t.Fatal("fixed card should not queue a deployment")
	}
	note := res.Notification
	if note == nil {
		t.Fatal("expected a notification")
	}
	if note.Phase != "result_ready" {
		t.Fatalf("fixed card should resolve in one step, got phase %s", note.Phase)
	}
	if note.Roll != 0 || note.Magnitude != card.Influence {
		t.Fatalf("unexpected outcome: roll=%d magnitude=%d", note.Roll, note.Magnitude)
	}

	world := env.world(t)
	if got := world.InfluenceIn("cch", wargame.FactionBlue); got != card.Influence {
		t.Fatalf("expected influence %d, got %d", card.Influence, got)
	}
	if world.HandContains(wargame.FactionBlue, card.ID) {
		t.Fatal("card should leave the hand when played")
	}
	if len(world.ActiveCards) != 1 || world.ActiveCards[0].CardID != card.ID {
		t.Fatalf("expected card active in area, got %+v", world.ActiveCards)
	}
	if !env.bc.has("card_resolved") {
		t.Fatal("expected card_resolved broadcast")
	}
	if env.bc.has("card_played") {
		t.Fatal("fixed cards should not announce a pending roll")
	}

	// The entry is written resolved in a single step; it never exists in
	// card_shown, so a reader listing mid-play cannot observe phase 1.
	if env.notes.resolves != 0 {
		t.Fatalf("fixed card should not amend a notification, got %d amendments", env.notes.resolves)
	}
	notes, _ := env.cardSvc.ListNotifications(ctx, env.gameID, 10)
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	if notes[0].Phase != "result_ready" || notes[0].ResolvedAt == nil {
		t.Fatalf("expected a stored already-resolved entry, got %+v", notes[0])
	}
}

func TestPlayRandomizedCardTwoPhases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	card, _ := wargame.CardByID("propaganda-broadcast")
	if !card.Randomized {
		t.Fatalf("test expects a randomized card, got %+v", card)
	}

	env.cardSvc.roll = func() int { return 9 }
	env.cardSvc.PurchaseCard(ctx, env.gameID, env.redUser, card.ID)
	res, err := env.cardSvc.PlayCard(ctx, env.gameID, env.redUser, card.ID, "sst")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	note := res.Notification
	if note.Roll != 9 {
		t.Fatalf("expected roll 9, got %d", note.Roll)
	}
	// 9 on 2d6 doubles the base effect.
	wantMag := card.Influence * 2
	if note.Magnitude != wantMag {
		t.Fatalf("expected magnitude %d, got %d", wantMag, note.Magnitude)
	}
	if note.InfluenceBefore != 0 || note.InfluenceAfter != wantMag {
		t.Fatalf("expected influence 0 -> %d, got %d -> %d", wantMag, note.InfluenceBefore, note.InfluenceAfter)
	}

	// Both steps of the reveal are broadcast, in order.
	types := env.bc.eventTypes()
	playedIdx, resolvedIdx := -1, -1
	for i, typ := range types {
		switch typ {
		case "card_played":
			playedIdx = i
		case "card_resolved":
			resolvedIdx = i
		}
	}
	if playedIdx == -1 || resolvedIdx == -1 || playedIdx > resolvedIdx {
		t.Fatalf("expected card_played before card_resolved, got %v", types)
	}

	// The stored notification was amended in place, not duplicated.
	notes, _ := env.cardSvc.ListNotifications(ctx, env.gameID, 10)
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	if notes[0].ID != note.ID || notes[0].Phase != "result_ready" {
		t.Fatalf("expected amended notification, got %+v", notes[0])
	}
	if env.notes.resolves != 1 {
		t.Fatalf("expected exactly one amendment, got %d", env.notes.resolves)
	}
}

func TestPlayRandomizedCardLowRollNoEffect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.cardSvc.roll = func() int { return 3 }
	env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, "cyber-attack")
	res, err := env.cardSvc.PlayCard(ctx, env.gameID, env.blueUser, "cyber-attack", "eli")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Notification.Magnitude != 0 {
		t.Fatalf("roll of 3 should have no effect, got magnitude %d", res.Notification.Magnitude)
	}
	if got := env.world(t).InfluenceIn("eli", wargame.FactionBlue); got != 0 {
		t.Fatalf("expected no influence change, got %d", got)
	}
}

func TestPlayDelayedCardQueues(t *testing.T) {
	env := newTestEnv(t)
	env.toTurnPhase(t)
	ctx := context.Background()

	card, _ := wargame.CardByID("marine-landing")
	if card.DelayDays != 2 {
		t.Fatalf("test expects a 2-day delay card, got %+v", card)
	}

	env.cardSvc.PurchaseCard(ctx, env.gameID, env.blueUser, card.ID)
	res, err := env.cardSvc.PlayCard(ctx, env.gameID, env.blueUser, card.ID, "wsh")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Notification != nil {
		t.Fatal("delayed card should not resolve yet")
	}
	q := res.Queued
	if q == nil {
		t.Fatal("expected queued deployment")
	}
	// Played on turn 1 day 1: due two days later on day 3.
	if q.ActivatesAtTurn != 1 || q.ActivatesAtDay != 3 {
		t.Fatalf("expected stamp (1,3), got (%d,%d)", q.ActivatesAtTurn, q.ActivatesAtDay)
	}
	if env.world(t).HandContains(wargame.FactionBlue, card.ID) {
		t.Fatal("card should leave the hand when queued")
	}
	if !env.bc.has("deployment_queued") {
		t.Fatal("expected deployment_queued broadcast")
	}

	// No influence until the sweep reaches the stamp.
	env.advance(t)
	env.advance(t)
	if got := env.world(t).InfluenceIn("wsh", wargame.FactionBlue); got != 0 {
		t.Fatalf("expected no influence before activation, got %d", got)
	}
	env.advance(t)
	if got := env.world(t).InfluenceIn("wsh", wargame.FactionBlue); got != card.Influence {
		t.Fatalf("expected influence %d after activation, got %d", card.Influence, got)
	}
}
