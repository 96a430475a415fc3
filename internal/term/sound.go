package term

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/playmatatu/pegfall/internal/game"
)

const sampleRate = beep.SampleRate(44100)

type tone struct {
	freq     float64
	duration time.Duration
}

// cueTones maps sound cues to short decaying sine blips. Peg hits are too
// frequent to voice individually and are left silent.
var cueTones = map[string]tone{
	game.CueBumper:   {freq: 660, duration: 60 * time.Millisecond},
	game.CueTarget:   {freq: 990, duration: 80 * time.Millisecond},
	game.CueRamp:     {freq: 523, duration: 120 * time.Millisecond},
	game.CueDrain:    {freq: 110, duration: 150 * time.Millisecond},
	game.CueIntake:   {freq: 784, duration: 90 * time.Millisecond},
	game.CueCannon:   {freq: 220, duration: 40 * time.Millisecond},
	game.CueFlipper:  {freq: 330, duration: 30 * time.Millisecond},
	game.CueReelSpin: {freq: 440, duration: 50 * time.Millisecond},
	game.CueReelStop: {freq: 880, duration: 70 * time.Millisecond},
	game.CueWin:      {freq: 1175, duration: 250 * time.Millisecond},
	game.CueMegaWin:  {freq: 1568, duration: 500 * time.Millisecond},
	game.CueGameOver: {freq: 147, duration: 600 * time.Millisecond},
}

// minCueGap throttles repeats of the same cue.
const minCueGap = 40 * time.Millisecond

// SoundManager plays cue tones through a shared mixer.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	lastPlayed  map[string]time.Time
	now         func() time.Time
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer:      &beep.Mixer{},
		lastPlayed: make(map[string]time.Time),
		now:        time.Now,
	}
}

// Initialize opens the audio device. Callers treat failure as "no sound".
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Play queues the tone for cue. Unknown cues and throttled repeats are
// dropped.
func (sm *SoundManager) Play(cue string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	t, ok := cueTones[cue]
	if !ok {
		return
	}
	now := sm.now()
	if last, ok := sm.lastPlayed[cue]; ok && now.Sub(last) < minCueGap {
		return
	}
	sm.lastPlayed[cue] = now

	speaker.Lock()
	sm.mixer.Add(newBlip(sampleRate, t))
	speaker.Unlock()
}

// newBlip returns a sine tone with a linear decay envelope.
func newBlip(sr beep.SampleRate, t tone) beep.Streamer {
	total := sr.N(t.duration)
	step := 2 * math.Pi * t.freq / float64(sr)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			env := 1 - float64(pos)/float64(total)
			v := 0.3 * env * math.Sin(step*float64(pos))
			samples[i][0] = v
			samples[i][1] = v
			pos++
			n++
		}
		return n, true
	})
}
