package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/physics"
)

const hudWidth = 30

var (
	styleDefault = tcell.StyleDefault
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePeg     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleBumper  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleSensor  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleFlipper = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBall    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCannon  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xff, 0x70, 0x43))
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// view is everything one frame of the terminal needs.
type view struct {
	layout   *physics.Layout
	cannon   game.CannonTuning
	snap     game.Snapshot
	balls    []physics.BallState
	banner   game.Banner
	initials string
	entering bool
	rank     int
	sound    bool
}

// projector maps playfield coordinates onto terminal cells.
type projector struct {
	sx, sy float64
	w, h   int
}

func newProjector(l *physics.Layout, w, h int) projector {
	return projector{
		sx: float64(w-1) / l.Width,
		sy: float64(h-1) / l.Height,
		w:  w,
		h:  h,
	}
}

func (p projector) cell(v game.Vec2) (int, int, bool) {
	x := int(math.Round(v.X * p.sx))
	y := int(math.Round(v.Y * p.sy))
	return x, y, x >= 0 && x < p.w && y >= 0 && y < p.h
}

func (p projector) put(s tcell.Screen, v game.Vec2, r rune, style tcell.Style) {
	if x, y, ok := p.cell(v); ok {
		s.SetContent(x, y, r, nil, style)
	}
}

// line plots a segment with one sample per crossed cell.
func (p projector) line(s tcell.Screen, a, b game.Vec2, r rune, style tcell.Style) {
	ax, ay, _ := p.cell(a)
	bx, by, _ := p.cell(b)
	n := max(abs(bx-ax), abs(by-ay), 1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p.put(s, a.Plus(b.Minus(a).Times(t)), r, style)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func draw(s tcell.Screen, v view) {
	s.Clear()
	w, h := s.Size()
	fieldW := w - hudWidth - 1
	if fieldW < 20 || h < 16 {
		drawText(s, 0, 0, styleWarn, "terminal too small")
		return
	}

	p := newProjector(v.layout, fieldW, h)
	drawField(s, p, v)
	drawHUD(s, fieldW+2, h, v)
}

func drawField(s tcell.Screen, p projector, v view) {
	for _, wall := range v.layout.Walls {
		p.line(s, wall.P1, wall.P2, '#', styleWall)
	}
	for _, sensor := range v.layout.Sensors {
		switch sensor.Tag {
		case game.TagJackpotIntake:
			p.line(s, sensor.Min, game.NewVec2(sensor.Max.X, sensor.Min.Y), '~', styleSensor)
		case game.TagRamp:
			p.line(s, sensor.Min, game.NewVec2(sensor.Min.X, sensor.Max.Y), ':', styleSensor)
			p.line(s, game.NewVec2(sensor.Max.X, sensor.Min.Y), sensor.Max, ':', styleSensor)
		}
	}
	for _, f := range v.layout.Fixtures {
		switch f.Tag {
		case game.TagBumper:
			p.put(s, f.Center, 'O', styleBumper)
		case game.TagTarget:
			p.put(s, f.Center, '+', styleTarget)
		default:
			p.put(s, f.Center, '.', stylePeg)
		}
	}
	for _, f := range v.layout.Flippers {
		active := v.snap.LeftFlipper
		if f.Side == game.SideRight {
			active = v.snap.RightFlipper
		}
		p.line(s, f.Pivot, f.Tip(active), '=', styleFlipper)
	}

	muzzle := game.NewVec2(v.cannon.X, v.cannon.Y)
	p.put(s, muzzle.Plus(game.FromAngle(v.snap.Cannon.Angle, 30)), '*', styleCannon)
	p.put(s, muzzle, 'V', styleCannon)

	for _, b := range v.balls {
		p.put(s, b.Position, 'o', styleBall)
	}
}

func drawHUD(s tcell.Screen, x, h int, v view) {
	snap := v.snap
	y := 0
	row := func(style tcell.Style, format string, args ...any) {
		if y < h {
			drawText(s, x, y, style, fmt.Sprintf(format, args...))
		}
		y++
	}

	row(styleTitle, "P E G F A L L")
	y++
	row(styleDefault, "SCORE    %d", snap.Score)
	mult := fmt.Sprintf("x%d", snap.Multiplier)
	if snap.Fever {
		mult += " FEVER"
	}
	row(styleDefault, "MULT     %s", mult)
	row(styleDefault, "COMBO    %d", snap.Combo)
	row(styleDefault, "BALLS    %d", snap.TotalBalls)
	row(styleDefault, "IN PLAY  %d", snap.ActiveBalls)
	row(styleDefault, "TARGETS  %d", snap.TargetsHit)
	row(styleDefault, "BADGES   %d", len(snap.Achievements))
	y++
	row(styleDefault, "JACKPOT  %d/%d", snap.Jackpot.Chute, snap.Jackpot.Threshold)
	row(styleDefault, "REELS    %s", reelsText(snap.Jackpot.Reels))
	if snap.Jackpot.Phase == game.JackpotReadyCountdown {
		row(styleWarn, "SPIN IN  %.1fs", snap.Jackpot.Countdown)
	}
	row(styleHelp, "STATE    %s", snap.State)
	y++

	if v.banner.Text != "" {
		style := styleDefault
		if v.banner.Color != "" {
			style = style.Foreground(tcell.GetColor(v.banner.Color)).Bold(true)
		}
		row(style, "%s", v.banner.Text)
		y++
	}

	switch snap.State {
	case game.StateIdle:
		row(styleTitle, "PRESS S TO START")
	case game.StateGameOver:
		row(styleWarn, "GAME OVER")
		switch {
		case v.rank > 0:
			row(styleTitle, "RANKED #%d", v.rank)
		case v.entering:
			row(styleTitle, "NEW HIGH SCORE")
			row(styleDefault, "INITIALS %s", padInitials(v.initials))
			row(styleHelp, "type 3 letters, enter")
			row(styleHelp, "tab to skip")
		}
		row(styleHelp, "R TO PLAY AGAIN")
	}

	help := []string{
		"space fire   <- -> aim",
		"z / m flippers",
		"j jackpot    q quit",
	}
	if v.sound {
		help = append(help, "sound on")
	}
	y = max(y+1, h-len(help))
	for _, line := range help {
		row(styleHelp, "%s", line)
	}
}

func reelsText(reels []string) string {
	cells := [3]string{"?", "?", "?"}
	for i := 0; i < len(reels) && i < 3; i++ {
		if reels[i] != "" {
			cells[i] = reels[i]
		}
	}
	return "[" + strings.Join(cells[:], "|") + "]"
}

func padInitials(s string) string {
	return s + strings.Repeat("_", max(0, 3-len(s)))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
