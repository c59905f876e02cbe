package game

import (
	"errors"
	"math"

	"github.com/playperu/eastertrail/internal/storybook"
)

const (
	// PanStep is how far one arrow press moves the view.
	PanStep = 15.0
	// DragSensitivity scales pointer deltas (pixels) into scene units.
	DragSensitivity = 0.15
)

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

var ErrUnknownDirection = errors.New("unknown pan direction")

// Nudge moves p one step in d, clamped to the scene.
func Nudge(p storybook.Position, d Direction) (storybook.Position, error) {
	switch d {
	case Left:
		p.X -= PanStep
	case Right:
		p.X += PanStep
	case Up:
		p.Y -= PanStep
	case Down:
		p.Y += PanStep
	default:
		return p, ErrUnknownDirection
	}
	return clampPos(p), nil
}

// DragBy applies one pointer-move delta. dx and dy are the pointer's
// movement since the previous event reversed, i.e. start minus current.
func DragBy(p storybook.Position, dx, dy, sensitivity float64) storybook.Position {
	if math.IsNaN(dx) || math.IsNaN(dy) {
		return p
	}
	p.X += dx * sensitivity
	p.Y += dy * sensitivity
	return clampPos(p)
}

func clampPos(p storybook.Position) storybook.Position {
	return storybook.Position{X: clamp(p.X), Y: clamp(p.Y)}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Bearing is the angle in degrees from the view centre to target, as used
// for the hint arrow. 0 points right, 90 points down.
func Bearing(from, to storybook.Position) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
}
