package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventPlayerRegistered  EventType = "player.registered"
	EventWarbandRegistered EventType = "warband.registered"
	EventRosterSubmitted   EventType = "warband.roster.submitted"
	EventWarbandStatus     EventType = "warband.status.changed"
	EventWarbandDeleted    EventType = "warband.deleted"
	EventGamePlanned       EventType = "game.planned"
	EventGameStarted       EventType = "game.started"
	EventResultSubmitted   EventType = "game.result.submitted"
	EventResultRejected    EventType = "game.result.rejected"
	EventGameFinished      EventType = "game.finished"
	EventGameCancelled     EventType = "game.cancelled"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregatePlayer  AggregateType = "player"
	AggregateWarband AggregateType = "warband"
	AggregateGame    AggregateType = "game"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func newDraft(aggregate AggregateType, id uuid.UUID, evt EventType, payload any) OutboxDraft {
	raw, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggregate,
		AggregateID:   id.String(),
		EventType:     evt,
		Payload:       raw,
		OccurredAt:    time.Now(),
	}
}

// NewPlayerRegisteredEvent creates a player lifecycle event.
func NewPlayerRegisteredEvent(p *Player) OutboxDraft {
	return newDraft(AggregatePlayer, p.ID, EventPlayerRegistered, map[string]string{
		"player_id": p.ID.String(),
		"login":     p.Login,
	})
}

// NewWarbandEvent creates a warband lifecycle event carrying the warband snapshot.
func NewWarbandEvent(evt EventType, w *Warband) OutboxDraft {
	return newDraft(AggregateWarband, w.ID, evt, w)
}

// NewRosterSubmittedEvent records a roster upload and its derived statistics.
func NewRosterSubmittedEvent(r *Roster) OutboxDraft {
	return newDraft(AggregateWarband, r.WarbandID, EventRosterSubmitted, r)
}

// NewGameEvent creates a battle lifecycle event carrying the game snapshot.
func NewGameEvent(evt EventType, g *Game) OutboxDraft {
	return newDraft(AggregateGame, g.ID, evt, g)
}
