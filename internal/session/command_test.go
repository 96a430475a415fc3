package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		valid bool
	}{
		{"fire", Command{Type: CmdFireCannon}, true},
		{"aim", Command{Type: CmdAimCannon, Angle: 1.2}, true},
		{"missing type", Command{}, false},
		{"unknown type", Command{Type: "tilt"}, false},
		{"flipper", Command{Type: CmdFlipper, Side: "left", Active: true}, true},
		{"flipper without side", Command{Type: CmdFlipper}, false},
		{"flipper bad side", Command{Type: CmdFlipper, Side: "up"}, false},
		{"initials", Command{Type: CmdSubmitHighScore, Initials: "ab1"}, true},
		{"no initials", Command{Type: CmdSubmitHighScore}, false},
		{"long initials", Command{Type: CmdSubmitHighScore, Initials: "abcd"}, false},
		{"punctuation", Command{Type: CmdSubmitHighScore, Initials: "a-b"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
