// Package battle holds the game status machine. Every function mutates the
// game value in place and persists nothing.
package battle

import (
	"time"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
)

// Side identifies which participant of a game is acting.
type Side int

const (
	Side1 Side = 1
	Side2 Side = 2
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Side1 {
		return Side2
	}
	return Side1
}

// SideOf resolves the requester's side from the game's recorded owners.
func SideOf(g *domain.Game, playerID uuid.UUID) (Side, error) {
	switch playerID {
	case g.Player1ID:
		return Side1, nil
	case g.Player2ID:
		return Side2, nil
	}
	return 0, domain.ErrForbidden("you do not own a warband in this game")
}

// Report is one side's post-battle details.
type Report struct {
	CalledReinforcements bool
	Injuries             []domain.RollEntry
	SkillAdvancements    []domain.RollEntry
	ExplorationDice      []int
}

// Result is a submitted battle outcome.
type Result struct {
	VP1, VP2 int
	GP1, GP2 int
	Player1  Report
	Player2  Report
}

// Validate rejects negative scores.
func (r Result) Validate() error {
	if r.VP1 < 0 || r.VP2 < 0 || r.GP1 < 0 || r.GP2 < 0 {
		return domain.ErrValidation("scores cannot be negative")
	}
	return nil
}

// MarkReady sets side's ready flag. The game becomes active once both sides
// are ready; the return value reports that transition.
func MarkReady(g *domain.Game, side Side) (bool, error) {
	if g.Status != domain.GamePlanned {
		return false, domain.ErrValidation("game is not in planning")
	}
	if side == Side1 {
		g.Player1IsReady = true
	} else {
		g.Player2IsReady = true
	}
	if g.Player1IsReady && g.Player2IsReady {
		g.Status = domain.GameActive
		return true, nil
	}
	return false, nil
}

// SubmitResult records a result on behalf of side. The submitter's approval is
// implied; the opponent's approval is cleared because the scores changed.
func SubmitResult(g *domain.Game, side Side, res Result) error {
	if g.Status != domain.GameActive && g.Status != domain.GamePendingApproval {
		return domain.ErrValidation("results can only be submitted for an active game")
	}
	if err := res.Validate(); err != nil {
		return err
	}

	g.VP1, g.VP2 = res.VP1, res.VP2
	g.GP1, g.GP2 = res.GP1, res.GP2
	g.Player1Reinforcements = res.Player1.CalledReinforcements
	g.Player2Reinforcements = res.Player2.CalledReinforcements
	g.Player1Injuries = nonNil(res.Player1.Injuries)
	g.Player2Injuries = nonNil(res.Player2.Injuries)
	g.Player1Advancements = nonNil(res.Player1.SkillAdvancements)
	g.Player2Advancements = nonNil(res.Player2.SkillAdvancements)
	g.Player1Exploration = nonNilInts(res.Player1.ExplorationDice)
	g.Player2Exploration = nonNilInts(res.Player2.ExplorationDice)

	setApproval(g, side, true)
	setApproval(g, side.Opponent(), false)
	g.Status = domain.GamePendingApproval
	return nil
}

// Approve records side's approval of the pending result. The game finishes
// once both approval flags are set; the return value reports that transition.
func Approve(g *domain.Game, side Side, now time.Time) (bool, error) {
	if g.Status != domain.GamePendingApproval {
		return false, domain.ErrValidation("there is no result awaiting approval")
	}
	if approved(g, side) && !approved(g, side.Opponent()) {
		return false, domain.ErrValidation("waiting for the opponent to approve the result")
	}
	setApproval(g, side, true)
	if g.Player1Approved && g.Player2Approved {
		g.Status = domain.GameFinished
		g.FinishedAt = &now
		return true, nil
	}
	return false, nil
}

// Reject discards the pending result and returns the game to active play.
func Reject(g *domain.Game, side Side) error {
	if g.Status != domain.GamePendingApproval {
		return domain.ErrValidation("there is no result awaiting approval")
	}
	g.VP1, g.VP2, g.GP1, g.GP2 = 0, 0, 0, 0
	g.Player1Approved = false
	g.Player2Approved = false
	g.Status = domain.GameActive
	return nil
}

// CanCancel reports whether a participant may delete the game.
func CanCancel(g *domain.Game) error {
	if g.Status != domain.GamePlanned {
		return domain.ErrValidation("only planned games can be cancelled")
	}
	return nil
}

// NextGameNumber returns one more than the highest number played so far.
func NextGameNumber(numbers []int) int {
	highest := 0
	for _, n := range numbers {
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

func approved(g *domain.Game, side Side) bool {
	if side == Side1 {
		return g.Player1Approved
	}
	return g.Player2Approved
}

func setApproval(g *domain.Game, side Side, v bool) {
	if side == Side1 {
		g.Player1Approved = v
	} else {
		g.Player2Approved = v
	}
}

func nonNil(entries []domain.RollEntry) []domain.RollEntry {
	if entries == nil {
		return []domain.RollEntry{}
	}
	return entries
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
