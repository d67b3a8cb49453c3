// Package audio plays the gun shot sound effect.
package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player accepts streamers to play.
type Player interface {
	Play(s beep.Streamer)
}

// Output mixes sounds onto the system speaker.
type Output struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewOutput returns an output that stays silent until Initialize succeeds.
func NewOutput() *Output {
	return &Output{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker.
func (o *Output) Initialize() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(o.mixer)
	o.initialized = true
	return nil
}

// Play adds s to the mixer. It does nothing before Initialize.
func (o *Output) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return
	}
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

// Close stops every playing sound.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return
	}
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	o.initialized = false
}

// Gun renders the shot sample once in the background and replays it.
type Gun struct {
	out    Player
	volume float64
	buf    atomic.Pointer[beep.Buffer]
	once   sync.Once
	done   chan struct{}
}

// NewGun returns a gun playing through out at volume 0-100.
func NewGun(out Player, volume int) *Gun {
	volume = max(0, min(volume, 100))
	return &Gun{out: out, volume: float64(volume), done: make(chan struct{})}
}

// Load renders the sample asynchronously. The returned channel closes once the
// gun is ready. Calling Load again returns the same channel.
func (g *Gun) Load() <-chan struct{} {
	g.once.Do(func() {
		go func() {
			format := beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
			buf := beep.NewBuffer(format)
			buf.Append(newShot(sampleRate, 120*time.Millisecond))
			g.buf.Store(buf)
			close(g.done)
		}()
	})
	return g.done
}

// Ready reports whether the sample has been rendered.
func (g *Gun) Ready() bool {
	return g.buf.Load() != nil
}

// Play fires the sound. Before the sample is ready it does nothing and
// reports false.
func (g *Gun) Play() bool {
	buf := g.buf.Load()
	if buf == nil || g.out == nil {
		return false
	}
	g.out.Play(g.streamer(buf))
	return true
}

func (g *Gun) streamer(buf *beep.Buffer) beep.Streamer {
	return &effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   math.Log2(math.Max(g.volume, 1) / 100),
		Silent:   g.volume == 0,
	}
}

// shot is a decaying noise burst over a low thump.
type shot struct {
	sr    beep.SampleRate
	total int
	pos   int
	seed  uint32
}

func newShot(sr beep.SampleRate, d time.Duration) *shot {
	return &shot{sr: sr, total: sr.N(d), seed: 0x2545f491}
}

func (s *shot) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.total {
		return 0, false
	}
	n := 0
	for i := range samples {
		if s.pos >= s.total {
			break
		}
		t := float64(s.pos) / float64(s.sr)
		s.seed = s.seed*1664525 + 1013904223
		noise := float64(s.seed)/float64(math.MaxUint32)*2 - 1
		thump := math.Sin(2 * math.Pi * 90 * t)
		v := math.Exp(-t*35) * (0.6*noise + 0.4*thump)
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (s *shot) Err() error { return nil }
