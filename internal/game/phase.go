package game

import "github.com/m-giraud/ascent/internal/models"

// Phase is the turn-cycle position of a session. Setup runs once; afterwards
// every turn is Discard -> Draw -> Action, with Discard skipped while the
// player is under the card budget.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseDiscard Phase = "discard"
	PhaseDraw    Phase = "draw"
	PhaseAction  Phase = "action"
)

// nextPhase maps the player's total card count to the phase a fresh turn
// opens in. At the full budget the turn must shed a card first; under it the
// turn goes straight to drawing.
func nextPhase(totalCards int) Phase {
	if totalCards < models.MaxTotalCards {
		return PhaseDraw
	}
	return PhaseDiscard
}

// handlePassTurn closes the current turn. Every obligation of the turn must
// be settled first: an action taken (or explicitly skipped), the discard and
// draw steps completed.
func (g *AscentGame) handlePassTurn() (string, bool) {
	if g.Phase != PhaseAction {
		return "game.rejected.wrong_phase", false
	}
	if !g.HasPlayedAction {
		return "game.rejected.action_pending", false
	}
	if !g.HasDiscarded || !g.HasDrawn {
		return "game.rejected.turn_incomplete", false
	}

	g.Turn++
	g.SelectedCards = nil
	g.HasPlayedAction = false
	g.HasDrawn = false
	g.Player.HasUsedStrategicShuffle = false

	g.Phase = nextPhase(g.Player.TotalCards())
	// A turn that opens in Draw has no discard obligation.
	g.HasDiscarded = g.Phase == PhaseDraw
	return "game.turn.passed", true
}
