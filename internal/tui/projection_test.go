package tui

import (
	"testing"

	"github.com/verte-zerg/tuidrill/internal/model"
)

func TestProjectCenter(t *testing.T) {
	s := Project(model.Vec3{X: 0, Y: centerY, Z: 0}, 80, 22)
	if s.Col != 40 || s.Row != 11 {
		t.Fatalf("expected the corridor center at the field center, got %+v", s)
	}
	far := Project(model.Vec3{X: 0, Y: centerY, Z: -8}, 80, 22)
	if far.RX >= s.RX || far.Depth <= s.Depth {
		t.Fatalf("expected farther targets smaller, got %+v vs %+v", far, s)
	}
}

func TestProjectKeepsCorridorOnScreen(t *testing.T) {
	for _, p := range []model.Vec3{{X: -2.5, Y: 1.0, Z: 0}, {X: 2.5, Y: 1.8, Z: 0}} {
		s := Project(p, 80, 22)
		if s.Col-s.RX < 0 || s.Col+s.RX >= 80 || s.Row-s.RY < 0 || s.Row+s.RY >= 22 {
			t.Fatalf("expected %+v inside the field, got %+v", p, s)
		}
	}
}

func TestHitTestPrefersNearestTarget(t *testing.T) {
	near := model.Vec3{X: 0, Y: centerY, Z: 0}
	far := model.Vec3{X: 0, Y: centerY, Z: -6}
	targets := []model.Vec3{far, near}
	if got := HitTest(targets, 40, 11, 80, 22); got != 1 {
		t.Fatalf("expected the nearer target, got %d", got)
	}
	if got := HitTest(targets, 0, 0, 80, 22); got != -1 {
		t.Fatalf("expected a miss, got %d", got)
	}
	s := Project(near, 80, 22)
	if got := HitTest([]model.Vec3{near}, s.Col+s.RX, s.Row, 80, 22); got != 0 {
		t.Fatalf("expected the target edge to count")
	}
}
