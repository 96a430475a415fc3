package game

// GameState represents the top-level state of a session.
type GameState string

const (
	StateLoading         GameState = "LOADING"
	StateIdle            GameState = "IDLE"
	StatePlaying         GameState = "PLAYING"
	StateJackpotReady    GameState = "JACKPOT_READY"
	StateJackpotSpinning GameState = "JACKPOT_SPINNING"
	StateJackpotPayout   GameState = "JACKPOT_PAYOUT"
	StateGameOver        GameState = "GAME_OVER"
)

// inRound reports whether the state belongs to an active round.
func (s GameState) inRound() bool {
	switch s {
	case StatePlaying, StateJackpotReady, StateJackpotSpinning, StateJackpotPayout:
		return true
	}
	return false
}

// JackpotPhase is the state of the jackpot machine.
type JackpotPhase string

const (
	JackpotIdle           JackpotPhase = "IDLE"
	JackpotAccumulating   JackpotPhase = "ACCUMULATING"
	JackpotReadyCountdown JackpotPhase = "READY_COUNTDOWN"
	JackpotSpinning       JackpotPhase = "SPINNING"
	JackpotEvaluated      JackpotPhase = "EVALUATED"
	JackpotPayoutLockout  JackpotPhase = "PAYOUT_LOCKOUT"
)

// gameStateFor maps a jackpot phase onto the round-level game state.
func gameStateFor(p JackpotPhase) GameState {
	switch p {
	case JackpotReadyCountdown:
		return StateJackpotReady
	case JackpotSpinning:
		return StateJackpotSpinning
	case JackpotEvaluated, JackpotPayoutLockout:
		return StateJackpotPayout
	}
	return StatePlaying
}
