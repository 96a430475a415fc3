package game

// NotificationType identifies a one-way notification to renderer/UI/audio.
type NotificationType string

const (
	NoteScoreChanged     NotificationType = "score_changed"
	NoteBallCountChanged NotificationType = "ball_count_changed"
	NoteComboChanged     NotificationType = "combo_changed"
	NoteMultiplier       NotificationType = "multiplier_changed"
	NoteBanner           NotificationType = "banner"
	NoteSound            NotificationType = "sound"
	NoteStateChanged     NotificationType = "state_changed"
	NoteJackpotCount     NotificationType = "jackpot_count"
	NoteJackpotReady     NotificationType = "jackpot_ready"
	NoteJackpotCountdown NotificationType = "jackpot_countdown"
	NoteReelSpin         NotificationType = "reel_spin"
	NoteReelStop         NotificationType = "reel_stop"
	NoteJackpotResult    NotificationType = "jackpot_result"
	NoteGameOver         NotificationType = "game_over"
)

// Notification is fire-and-forget; no reply is expected.
type Notification struct {
	Type NotificationType `json:"type"`
	Data any              `json:"data,omitempty"`
}

// Notifier receives notifications. Implementations must not block the frame.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

// Notifiers fans a notification out to several receivers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		x.Notify(n)
	}
}

type ScoreChanged struct {
	Score uint64 `json:"score"`
	Delta uint64 `json:"delta"`
}

type BallCountChanged struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type ComboChanged struct {
	Count uint32 `json:"count"`
}

type MultiplierChanged struct {
	Multiplier uint32 `json:"multiplier"`
	Fever      bool   `json:"fever"`
}

// Banner is event text with a display color. An empty Text clears the banner.
type Banner struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

type Sound struct {
	Cue string `json:"cue"`
}

type StateChanged struct {
	From GameState `json:"from"`
	To   GameState `json:"to"`
}

type JackpotCount struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

type JackpotReady struct {
	Countdown float64 `json:"countdown"`
}

type JackpotCountdown struct {
	Seconds int `json:"seconds"`
}

type ReelSpin struct {
	Index int `json:"index"`
}

type ReelStop struct {
	Index  int    `json:"index"`
	Symbol Symbol `json:"symbol"`
}

type JackpotResult struct {
	Reels  [3]Symbol    `json:"reels"`
	Payout PayoutResult `json:"payout"`
}

type GameOver struct {
	FinalScore  uint64 `json:"final_score"`
	IsHighScore bool   `json:"is_high_score"`
}

const (
	ColorInfo   = "#4fc3f7"
	ColorWarn   = "#ff7043"
	ColorReward = "#ffd54f"
	ColorMega   = "#e040fb"
)

const (
	CuePeg      = "peg"
	CueBumper   = "bumper"
	CueTarget   = "target"
	CueRamp     = "ramp"
	CueDrain    = "drain"
	CueIntake   = "intake"
	CueCannon   = "cannon"
	CueFlipper  = "flipper"
	CueReelSpin = "reel_spin"
	CueReelStop = "reel_stop"
	CueWin      = "win"
	CueMegaWin  = "mega_win"
	CueGameOver = "game_over"
)
