package session

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/playmatatu/pegfall/internal/game"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CommandType names a player command.
type CommandType string

const (
	CmdStart           CommandType = "start"
	CmdFireCannon      CommandType = "fire_cannon"
	CmdAimCannon       CommandType = "aim_cannon"
	CmdNudgeCannon     CommandType = "nudge_cannon"
	CmdFlipper         CommandType = "flipper"
	CmdTriggerJackpot  CommandType = "trigger_jackpot"
	CmdRestart         CommandType = "restart"
	CmdSubmitHighScore CommandType = "submit_high_score"
)

// Command is one player input. Fields other than Type are used by the
// commands that need them.
type Command struct {
	Type     CommandType `json:"type" validate:"required,oneof=start fire_cannon aim_cannon nudge_cannon flipper trigger_jackpot restart submit_high_score"`
	Angle    float64     `json:"angle,omitempty"`
	Delta    float64     `json:"delta,omitempty"`
	Side     string      `json:"side,omitempty" validate:"required_if=Type flipper,omitempty,oneof=left right"`
	Active   bool        `json:"active,omitempty"`
	Initials string      `json:"initials,omitempty" validate:"required_if=Type submit_high_score,omitempty,len=3,alphanum"`
}

// Validate checks the command shape before it is queued.
func (c Command) Validate() error {
	return validate.Struct(c)
}

// Result reports how a command was applied. Commands refused by the current
// state come back with Accepted false and no error.
type Result struct {
	Accepted bool    `json:"accepted"`
	Angle    float64 `json:"angle,omitempty"`
	Rank     int     `json:"rank,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func ParseSide(s string) (game.Side, error) {
	switch s {
	case "left":
		return game.SideLeft, nil
	case "right":
		return game.SideRight, nil
	}
	return 0, fmt.Errorf("unknown flipper side %q", s)
}
