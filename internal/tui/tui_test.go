package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/logging"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/wordlist"
)

type fakeRecorder struct {
	results []model.Result
}

func (f *fakeRecorder) Finish(_ context.Context, user model.User, r model.Result) backend.Summary {
	f.results = append(f.results, r)
	entry := model.LeaderboardEntry{UserID: user.ID, Score: r.Score}
	return backend.Summary{
		Entry:    &entry,
		Unlocked: []model.Achievement{{AchievementDef: model.AchievementDef{Title: "First Shot", CoinReward: 50}}},
		Coins:    50,
	}
}

type fakeSound struct {
	plays int
}

func (f *fakeSound) Play() bool {
	f.plays++
	return true
}

// collect runs cmd and every command batched inside it, returning the
// resulting messages. Frame ticks are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if _, ok := msg.(frameMsg); ok {
		return nil
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func hasQuit(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestAimModelPlaysAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	snd := &fakeSound{}
	gen := generator.NewSeeded(wordlist.Default(), 7)
	m := NewAimModel(game.AimConfig{Duration: 5 * time.Second, Targets: 3}, gen, Options{
		User:     model.User{ID: "u1", DisplayName: "ann"},
		Recorder: rec,
		Sound:    snd,
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "AIM DRILL") {
		t.Fatalf("expected start screen")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Session().Phase() != model.PhaseActive {
		t.Fatalf("expected active session without countdown, got %s", m.Session().Phase())
	}

	target := m.Session().Snapshot().Targets[0]
	spot := Project(target, m.fieldWidth(), m.fieldHeight())
	m.Update(tea.MouseMsg{X: spot.Col, Y: spot.Row + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 0, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	snap := m.Session().Snapshot()
	if snap.Score != 1 || snap.Hits != 1 || snap.Attempts != 2 || snap.Accuracy != 50 {
		t.Fatalf("unexpected snapshot after hit and miss: %+v", snap)
	}
	if snd.plays != 2 {
		t.Fatalf("expected a shot sound for every shot, got %d plays", snd.plays)
	}
	if !strings.Contains(m.View(), "Hits 1/2") {
		t.Fatalf("expected HUD with hits")
	}

	start := time.Unix(1000, 0)
	m.Update(frameMsg(start))
	_, cmd := m.Update(frameMsg(start.Add(5 * time.Second)))
	if m.Session().Phase() != model.PhaseEnded {
		t.Fatalf("expected session ended after the duration")
	}
	if !strings.Contains(m.View(), "Saving score") {
		t.Fatalf("expected saving notice while recording")
	}
	var recorded *recordedMsg
	for _, msg := range collect(cmd) {
		if r, ok := msg.(recordedMsg); ok {
			recorded = &r
		}
	}
	if recorded == nil || len(rec.results) != 1 || rec.results[0].Score != 1 {
		t.Fatalf("expected the result recorded once, got %+v", rec.results)
	}
	m.Update(*recorded)
	view := m.View()
	if !strings.Contains(view, "First Shot") || !strings.Contains(view, "Coins earned: 50") {
		t.Fatalf("expected summary in end view:\n%s", view)
	}

	_, cmd = m.Update(keyRunes("q"))
	if !hasQuit(collect(cmd)) {
		t.Fatalf("expected quit after exit")
	}
}

func TestAimModelKeyboardCrosshair(t *testing.T) {
	m := NewAimModel(game.AimConfig{Targets: 3}, generator.NewSeeded(wordlist.Default(), 3), Options{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	x, y := m.aimX, m.aimY
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(keyRunes("j"))
	if m.aimX != x-2 || m.aimY != y+1 {
		t.Fatalf("expected crosshair moved, got %d,%d from %d,%d", m.aimX, m.aimY, x, y)
	}
	for range 100 {
		m.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	if m.aimY != 0 {
		t.Fatalf("expected crosshair clamped to the field, got %d", m.aimY)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Session().Phase() != model.PhasePaused || !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("expected paused")
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.Session().Snapshot().Attempts != 0 {
		t.Fatalf("expected fire ignored while paused")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Session().Phase() != model.PhaseActive {
		t.Fatalf("expected resumed")
	}
}

func typingVocab() wordlist.Vocabulary {
	return wordlist.Vocabulary{
		Easy:       []string{"GUN", "CAT", "DOG", "AXE"},
		Paragraphs: []string{"ZOMBIE HORDE"},
	}
}

func TestTypingModelTypesWords(t *testing.T) {
	snd := &fakeSound{}
	m := NewTypingModel(game.TypingConfig{}, generator.NewSeeded(typingVocab(), 5), Options{Sound: snd})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(keyRunes("g"))
	if m.Session().Snapshot().Score != 0 {
		t.Fatalf("expected keys ignored before start")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	snap := m.Session().Snapshot()
	if snap.Phase != model.PhaseActive || len(snap.Zombies) != 2 {
		t.Fatalf("expected active wave 1 with two zombies, got %+v", snap)
	}

	word := snap.Zombies[snap.Active].Word
	m.Update(keyRunes(strings.ToLower(word)))
	snap = m.Session().Snapshot()
	if snap.Score != 130 || snap.Kills != 1 {
		t.Fatalf("expected 130 points for a three letter word, got %d", snap.Score)
	}
	if snd.plays != 3 {
		t.Fatalf("expected one shot sound per correct key, got %d", snd.plays)
	}
	if !strings.Contains(m.View(), "Wave 1") {
		t.Fatalf("expected HUD with wave")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Session().Phase() != model.PhasePaused {
		t.Fatalf("expected paused")
	}
	m.Update(keyRunes("x"))
	if m.Session().Snapshot().Accuracy != 100 {
		t.Fatalf("expected keys ignored while paused")
	}
	_, cmd := m.Update(keyRunes("q"))
	if !hasQuit(collect(cmd)) {
		t.Fatalf("expected quit from pause menu")
	}
}

func TestTypingModelRestart(t *testing.T) {
	m := NewTypingModel(game.TypingConfig{}, generator.NewSeeded(typingVocab(), 9), Options{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	snap := m.Session().Snapshot()
	m.Update(keyRunes(snap.Zombies[snap.Active].Word[:1]))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	snap = m.Session().Snapshot()
	if snap.Phase != model.PhaseActive || snap.Accuracy != 0 || snap.Zombies[snap.Active].Typed != 0 {
		t.Fatalf("expected a fresh session after restart, got %+v", snap)
	}
}

func TestTypingFieldPlacesZombies(t *testing.T) {
	m := NewTypingModel(game.TypingConfig{}, generator.NewSeeded(typingVocab(), 2), Options{})
	m.width = 60
	snap := game.TypingSnapshot{
		Active: 0,
		Zombies: []game.Zombie{
			{Word: "GUN", Typed: 1, X: 0, Z: game.ZombieReachZ},
			{Word: "CAT", X: 0, Z: game.ZombieSpawnZ - 5},
			{Word: "DOG", Dead: true, Z: 0},
		},
	}
	lines := m.field(snap, 12).plain()
	if !strings.Contains(lines[9], "GUN") {
		t.Fatalf("expected the closest zombie just above the player line, got %q", lines[9])
	}
	if !strings.HasPrefix(lines[0], "+1 incoming") {
		t.Fatalf("expected far zombies counted, got %q", lines[0])
	}
	for _, line := range lines {
		if strings.Contains(line, "DOG") {
			t.Fatalf("dead zombies must not be drawn")
		}
	}
	if !strings.HasPrefix(lines[11], "───") {
		t.Fatalf("expected player line at the bottom, got %q", lines[11])
	}
}

func TestEventsDrain(t *testing.T) {
	var ev events
	obs := ev.observer()
	obs.InputCapture(true)
	obs.Shot()
	obs.Shot()
	obs.SessionEnded(model.Result{Score: 3})
	obs.Exited()

	snd := &fakeSound{}
	rec := &fakeRecorder{}
	cmds := ev.drain(Options{Sound: snd, Recorder: rec}, false)
	if len(cmds) != 2 {
		t.Fatalf("expected record and quit commands, got %d", len(cmds))
	}
	if snd.plays != 2 {
		t.Fatalf("expected two sounds, got %d", snd.plays)
	}
	if _, ok := cmds[1]().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit last")
	}
	if ev.shots != 0 || ev.ended != nil || ev.exited {
		t.Fatalf("expected events reset after drain")
	}
}

func TestClockTick(t *testing.T) {
	var c clock
	start := time.Unix(50, 0)
	if c.tick(start) != 0 {
		t.Fatalf("first frame must not advance time")
	}
	if got := c.tick(start.Add(40 * time.Millisecond)); got != 40*time.Millisecond {
		t.Fatalf("expected 40ms, got %v", got)
	}
	if c.tick(start) != 0 {
		t.Fatalf("a frame from the past must not advance time")
	}
}

func TestRecordedSummaryIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	opts := Options{User: model.User{ID: "u1", DisplayName: "ann"}, Log: logger}
	m := NewTypingModel(game.DefaultTypingConfig(), generator.NewSeeded(wordlist.Default(), 1), opts)

	m.Update(recordedMsg{summary: backend.Summary{Failures: 3}})
	if !strings.Contains(buf.String(), "score not saved") {
		t.Fatalf("expected a warning for a lost score, got %q", buf.String())
	}

	buf.Reset()
	entry := model.LeaderboardEntry{Score: 9}
	m.Update(recordedMsg{summary: backend.Summary{Entry: &entry, Failures: 1}})
	if !strings.Contains(buf.String(), "session partly recorded") {
		t.Fatalf("expected a warning for partial failures, got %q", buf.String())
	}
}
