package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the battle lifecycle state.
type GameStatus string

const (
	GamePlanned         GameStatus = "planned"
	GameActive          GameStatus = "active"
	GamePendingApproval GameStatus = "pending_approval"
	GameFinished        GameStatus = "finished"
)

// Valid reports whether s is a known status.
func (s GameStatus) Valid() bool {
	switch s {
	case GamePlanned, GameActive, GamePendingApproval, GameFinished:
		return true
	}
	return false
}

// InProgress reports whether a game in this status blocks new games for its warbands.
func (s GameStatus) InProgress() bool {
	return s == GamePlanned || s == GameActive
}

// RollEntry is one injury or skill advancement roll.
type RollEntry struct {
	Name string  `json:"name"`
	Roll float64 `json:"roll"`
}

// Game is one scheduled or played battle between two warbands.
type Game struct {
	ID                    uuid.UUID   `json:"id"`
	CampaignID            *uuid.UUID  `json:"campaign_id,omitempty"`
	Warband1ID            uuid.UUID   `json:"warband_1_id"`
	Warband2ID            uuid.UUID   `json:"warband_2_id"`
	Player1ID             uuid.UUID   `json:"player1_id"`
	Player2ID             uuid.UUID   `json:"player2_id"`
	Warband1GameNumber    int         `json:"warband_1_gameNumber"`
	Warband2GameNumber    int         `json:"warband_2_gameNumber"`
	Status                GameStatus  `json:"status"`
	Player1IsReady        bool        `json:"player1_isReady"`
	Player2IsReady        bool        `json:"player2_isReady"`
	VP1                   int         `json:"vp_1"`
	VP2                   int         `json:"vp_2"`
	GP1                   int         `json:"gp_1"`
	GP2                   int         `json:"gp_2"`
	Player1Approved       bool        `json:"player1_isApprovedResult"`
	Player2Approved       bool        `json:"player2_isApprovedResult"`
	Player1Reinforcements bool        `json:"player1_calledReinforcements"`
	Player2Reinforcements bool        `json:"player2_calledReinforcements"`
	Player1Injuries       []RollEntry `json:"player1_injuries"`
	Player2Injuries       []RollEntry `json:"player2_injuries"`
	Player1Advancements   []RollEntry `json:"player1_skillAdvancements"`
	Player2Advancements   []RollEntry `json:"player2_skillAdvancements"`
	Player1Exploration    []int       `json:"player1_explorationDice"`
	Player2Exploration    []int       `json:"player2_explorationDice"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	FinishedAt            *time.Time  `json:"finished_at,omitempty"`
}

// Involves reports whether warbandID plays in g.
func (g *Game) Involves(warbandID uuid.UUID) bool {
	return g.Warband1ID == warbandID || g.Warband2ID == warbandID
}

// GameNumberFor returns the game number g carries for warbandID.
func (g *Game) GameNumberFor(warbandID uuid.UUID) int {
	if g.Warband1ID == warbandID {
		return g.Warband1GameNumber
	}
	if g.Warband2ID == warbandID {
		return g.Warband2GameNumber
	}
	return 0
}

// GameFilter narrows game listings.
type GameFilter struct {
	CampaignID *uuid.UUID
	WarbandID  *uuid.UUID
	PlayerID   *uuid.UUID
	Statuses   []GameStatus
}
