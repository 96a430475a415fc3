package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func specialKey(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want action
	}{
		{"space fires", runeKey(' '), actFire},
		{"z left flipper", runeKey('z'), actLeftFlipper},
		{"M right flipper", runeKey('M'), actRightFlipper},
		{"slash right flipper", runeKey('/'), actRightFlipper},
		{"j jackpot", runeKey('j'), actJackpot},
		{"s start", runeKey('s'), actStart},
		{"r restart", runeKey('r'), actRestart},
		{"q quits", runeKey('q'), actQuit},
		{"escape quits", specialKey(tcell.KeyEscape), actQuit},
		{"left arrow aims left", specialKey(tcell.KeyLeft), actAimLeft},
		{"right arrow aims right", specialKey(tcell.KeyRight), actAimRight},
		{"enter starts", specialKey(tcell.KeyEnter), actStart},
		{"unbound rune", runeKey('x'), actNone},
		{"unbound key", specialKey(tcell.KeyF5), actNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, actionFor(tt.ev))
		})
	}
}

func TestInitialsEntry(t *testing.T) {
	var e initialsEntry

	consumed, submit := e.handle(runeKey('a'))
	assert.True(t, consumed)
	assert.False(t, submit)

	e.handle(runeKey('B'))
	consumed, submit = e.handle(specialKey(tcell.KeyEnter))
	assert.True(t, consumed)
	assert.False(t, submit, "two letters must not submit")

	e.handle(runeKey('7'))
	e.handle(runeKey('x'))
	assert.Equal(t, "aB7", e.String(), "a fourth character is ignored")

	consumed, _ = e.handle(runeKey('!'))
	assert.False(t, consumed, "punctuation is left to the game keys")

	e.handle(specialKey(tcell.KeyBackspace2))
	assert.Equal(t, "aB", e.String())
	e.handle(runeKey('c'))

	_, submit = e.handle(specialKey(tcell.KeyEnter))
	assert.True(t, submit)

	e.reset()
	assert.Empty(t, e.String())
}
