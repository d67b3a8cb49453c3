package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type capture struct {
	played []beep.Streamer
}

func (c *capture) Play(s beep.Streamer) { c.played = append(c.played, s) }

func TestGunIsSilentUntilLoaded(t *testing.T) {
	out := &capture{}
	g := NewGun(out, 80)
	if g.Ready() || g.Play() {
		t.Fatalf("expected gun not ready before load")
	}
	if len(out.played) != 0 {
		t.Fatalf("expected nothing played")
	}

	select {
	case <-g.Load():
	case <-time.After(5 * time.Second):
		t.Fatalf("load did not finish")
	}
	if g.Load() != g.Load() {
		t.Fatalf("expected the same ready channel")
	}
	if !g.Ready() || !g.Play() || len(out.played) != 1 {
		t.Fatalf("expected one playback after load")
	}
}

func TestShotSampleIsShortAndAudible(t *testing.T) {
	out := &capture{}
	g := NewGun(out, 100)
	<-g.Load()
	g.Play()

	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := out.played[0].Stream(buf)
		for _, s := range buf[:n] {
			if s[0] > peak {
				peak = s[0]
			}
		}
		total += n
		if !ok {
			break
		}
	}
	if want := sampleRate.N(120 * time.Millisecond); total != want {
		t.Fatalf("expected %d samples, got %d", want, total)
	}
	if peak <= 0.05 {
		t.Fatalf("expected audible sample, peak %v", peak)
	}
}

func TestVolumeClampAndMute(t *testing.T) {
	out := &capture{}
	g := NewGun(out, 0)
	<-g.Load()
	g.Play()
	vol, ok := out.played[0].(*effects.Volume)
	if !ok || !vol.Silent {
		t.Fatalf("expected a silent volume streamer")
	}
	if NewGun(out, 250).volume != 100 || NewGun(out, -5).volume != 0 {
		t.Fatalf("expected volume clamped to 0-100")
	}
}
