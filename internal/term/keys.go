package term

import (
	"github.com/gdamore/tcell/v2"
)

type action int

const (
	actNone action = iota
	actQuit
	actStart
	actRestart
	actFire
	actAimLeft
	actAimRight
	actLeftFlipper
	actRightFlipper
	actJackpot
)

// actionFor maps a key press to a play action. Initials entry on the game
// over screen is handled before this mapping.
func actionFor(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit
	case tcell.KeyLeft:
		return actAimLeft
	case tcell.KeyRight:
		return actAimRight
	case tcell.KeyEnter:
		return actStart
	case tcell.KeyRune:
	default:
		return actNone
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return actQuit
	case ' ':
		return actFire
	case 's', 'S':
		return actStart
	case 'r', 'R':
		return actRestart
	case 'z', 'Z':
		return actLeftFlipper
	case 'm', 'M', '/':
		return actRightFlipper
	case 'j', 'J':
		return actJackpot
	case 'a', 'A':
		return actAimLeft
	case 'd', 'D':
		return actAimRight
	}
	return actNone
}

// initialsEntry collects up to three characters of high score initials.
type initialsEntry struct {
	runes []rune
}

// handle applies one key press. It reports whether the key was consumed and
// whether the entry should be submitted.
func (e *initialsEntry) handle(ev *tcell.EventKey) (consumed, submit bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return true, len(e.runes) == 3
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(e.runes) > 0 {
			e.runes = e.runes[:len(e.runes)-1]
		}
		return true, false
	case tcell.KeyRune:
		r := ev.Rune()
		if !isInitialRune(r) {
			return false, false
		}
		if len(e.runes) < 3 {
			e.runes = append(e.runes, r)
		}
		return true, false
	}
	return false, false
}

func (e *initialsEntry) String() string { return string(e.runes) }
func (e *initialsEntry) reset()         { e.runes = e.runes[:0] }

func isInitialRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
