package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/freeeve/narrow-seas/api/internal/model"
)

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, turnDeadline string) (*model.Game, error) {
	g := &model.Game{
		ID:           fmt.Sprintf("game-%d", len(m.games)+1),
		Name:         name,
		CreatorID:    creatorID,
		Status:       "waiting",
		TurnDeadline: turnDeadline,
		CreatedAt:    time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:   gameID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
	return nil
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) AssignFactions(_ context.Context, gameID string, assignments map[string]string) error {
	players := m.players[gameID]
	for i := range players {
		if faction, ok := assignments[players[i].UserID]; ok {
			players[i].Faction = faction
		}
	}
	m.players[gameID] = players
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Winner = winner
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

// mockClockRepo implements repository.ClockRepository with real
// compare-and-swap semantics so version races are testable.
type mockClockRepo struct {
	mu     sync.Mutex
	clocks map[string]*model.GameClock
}

func newMockClockRepo() *mockClockRepo {
	return &mockClockRepo{clocks: make(map[string]*model.GameClock)}
}

func (m *mockClockRepo) CreateClock(_ context.Context, clock *model.GameClock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *clock
	cp.Version = 0
	cp.UpdatedAt = time.Now()
	m.clocks[clock.GameID] = &cp
	return nil
}

func (m *mockClockRepo) GetClock(_ context.Context, gameID string) (*model.GameClock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clocks[gameID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockClockRepo) CompareAndSwap(_ context.Context, clock *model.GameClock) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.clocks[clock.GameID]
	if !ok || stored.Version != clock.Version {
		return false, nil
	}
	cp := *clock
	cp.Version = stored.Version + 1
	cp.UpdatedAt = time.Now()
	m.clocks[clock.GameID] = &cp
	return true, nil
}

func (m *mockClockRepo) ListExpired(_ context.Context) ([]model.GameClock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GameClock
	for _, c := range m.clocks {
		if c.NextDeadline != nil && c.NextDeadline.Before(time.Now()) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClockRepo) DeleteClock(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clocks, gameID)
	return nil
}

type mockTurnRepo struct {
	records []*model.TurnRecord
}

func newMockTurnRepo() *mockTurnRepo {
	return &mockTurnRepo{}
}

func (m *mockTurnRepo) CreateTurnRecord(_ context.Context, rec *model.TurnRecord) (*model.TurnRecord, error) {
	cp := *rec
	cp.ID = fmt.Sprintf("turn-%d", len(m.records)+1)
	cp.CreatedAt = time.Now()
	m.records = append(m.records, &cp)
	out := cp
	return &out, nil
}

func (m *mockTurnRepo) FinalizeTurnRecord(_ context.Context, id string, stateAfter json.RawMessage) error {
	for _, r := range m.records {
		if r.ID == id {
			r.StateAfter = stateAfter
			return nil
		}
	}
	return fmt.Errorf("turn record not found: %s", id)
}

func (m *mockTurnRepo) ListTurnRecords(_ context.Context, gameID string) ([]model.TurnRecord, error) {
	var result []model.TurnRecord
	for _, r := range m.records {
		if r.GameID == gameID {
			result = append(result, *r)
		}
	}
	return result, nil
}

type mockDeployRepo struct {
	seq      int
	pendings map[string]*model.PendingDeployment
}

func newMockDeployRepo() *mockDeployRepo {
	return &mockDeployRepo{pendings: make(map[string]*model.PendingDeployment)}
}

func (m *mockDeployRepo) Create(_ context.Context, d *model.PendingDeployment) (*model.PendingDeployment, error) {
	m.seq++
	cp := *d
	cp.ID = fmt.Sprintf("deploy-%d", m.seq)
	cp.CreatedAt = time.Now()
	m.pendings[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockDeployRepo) ListByGame(_ context.Context, gameID string) ([]model.PendingDeployment, error) {
	var result []model.PendingDeployment
	for _, d := range m.pendings {
		if d.GameID == gameID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDeployRepo) Delete(_ context.Context, id string) error {
	delete(m.pendings, id)
	return nil
}

func (m *mockDeployRepo) DeleteByGame(_ context.Context, gameID string) error {
	for id, d := range m.pendings {
		if d.GameID == gameID {
			delete(m.pendings, id)
		}
	}
	return nil
}

type mockNoteRepo struct {
	seq      int
	resolves int
	notes    map[string]*model.CardNotification
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*model.CardNotification)}
}

func (m *mockNoteRepo) Create(_ context.Context, n *model.CardNotification) (*model.CardNotification, error) {
	m.seq++
	cp := *n
	cp.ID = fmt.Sprintf("note-%d", m.seq)
	cp.CreatedAt = time.Now()
	if cp.Phase == "result_ready" {
		now := time.Now()
		cp.ResolvedAt = &now
	}
	m.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockNoteRepo) Resolve(_ context.Context, id string, roll, magnitude int, description string, before, after int) (bool, error) {
	m.resolves++
	n, ok := m.notes[id]
	if !ok || n.Phase != "card_shown" {
		return false, nil
	}
	n.Phase = "result_ready"
	n.Roll = roll
	n.Magnitude = magnitude
	n.EffectDescription = description
	n.InfluenceBefore = before
	n.InfluenceAfter = after
	now := time.Now()
	n.ResolvedAt = &now
	return true, nil
}

func (m *mockNoteRepo) ListByGame(_ context.Context, gameID string, limit int) ([]model.CardNotification, error) {
	var result []model.CardNotification
	for _, n := range m.notes {
		if n.GameID == gameID {
			result = append(result, *n)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockCache implements repository.GameCache for testing.
type mockCache struct {
	states map[string]json.RawMessage
	timers map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		states: make(map[string]json.RawMessage),
		timers: make(map[string]time.Time),
	}
}

func (c *mockCache) SetWorldState(_ context.Context, gameID string, state json.RawMessage) error {
	c.states[gameID] = state
	return nil
}

func (c *mockCache) GetWorldState(_ context.Context, gameID string) (json.RawMessage, error) {
	return c.states[gameID], nil
}

func (c *mockCache) SetTurnTimer(_ context.Context, gameID string, deadline time.Time) error {
	c.timers[gameID] = deadline
	return nil
}

func (c *mockCache) ClearTurnTimer(_ context.Context, gameID string) error {
	delete(c.timers, gameID)
	return nil
}

func (c *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	delete(c.states, gameID)
	delete(c.timers, gameID)
	return nil
}

// recordingBroadcaster captures broadcast events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	gameID    string
	eventType string
	data      any
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID string, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{gameID: gameID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var types []string
	for _, e := range b.events {
		types = append(types, e.eventType)
	}
	return types
}

func (b *recordingBroadcaster) has(eventType string) bool {
	for _, t := range b.eventTypes() {
		if t == eventType {
			return true
		}
	}
	return false
}
