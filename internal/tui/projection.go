package tui

import (
	"math"

	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/model"
)

// Camera placement for the aim corridor. A target at MaxZ is drawn at full size.
const (
	cameraZ = generator.MaxZ + 4
	focal   = 4.0
	centerY = (generator.MinY + generator.MaxY) / 2
)

// Spot is a target projected onto the terminal grid.
type Spot struct {
	Col   int
	Row   int
	RX    int
	RY    int
	Depth float64
}

// Project maps a target position onto a width x height field.
func Project(p model.Vec3, width, height int) Spot {
	depth := cameraZ - p.Z
	scale := focal / depth
	w, h := float64(width), float64(height)
	return Spot{
		Col:   width/2 + int(math.Round(p.X*scale*w*0.18)),
		Row:   height/2 - int(math.Round((p.Y-centerY)*scale*h)),
		RX:    max(1, int(math.Round(scale*w/25))),
		RY:    max(0, int(math.Round(scale*h/16))),
		Depth: depth,
	}
}

// Contains reports whether the cell (x, y) lies on the projected target.
func (s Spot) Contains(x, y int) bool {
	dx := float64(x-s.Col) / (float64(s.RX) + 0.5)
	dy := float64(y-s.Row) / (float64(s.RY) + 0.5)
	return dx*dx+dy*dy <= 1
}

// HitTest returns the index of the nearest target under (x, y), or -1.
func HitTest(targets []model.Vec3, x, y, width, height int) int {
	hit := -1
	nearest := math.Inf(1)
	for i, p := range targets {
		s := Project(p, width, height)
		if s.Contains(x, y) && s.Depth < nearest {
			hit = i
			nearest = s.Depth
		}
	}
	return hit
}
