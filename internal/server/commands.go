package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/playperu/eastertrail/internal/game"
)

// Command is one player action. The same shape arrives over HTTP and over
// the WebSocket channel.
type Command struct {
	Type      string         `json:"type" enum:"discover,open_story,dismiss,audio_loaded,audio_progress,audio_playing,audio_paused,audio_ended,audio_error,hint,pan,drag,open_goody_bag,close_goody_bag,select_activity"`
	ItemID    int            `json:"itemId,omitempty"`
	Part      int            `json:"part,omitempty"`
	Activity  string         `json:"activity,omitempty"`
	Direction game.Direction `json:"direction,omitempty"`
	DX        float64        `json:"dx,omitempty"`
	DY        float64        `json:"dy,omitempty"`
	// Seconds carries the clip duration for audio_loaded and the playback
	// position for audio_progress.
	Seconds float64 `json:"seconds,omitempty"`
}

var errUnknownCommand = errors.New("unknown command")

func apply(g *game.Session, c Command) error {
	switch c.Type {
	case "discover":
		_, err := g.Discover(c.ItemID)
		return err
	case "open_story":
		return g.OpenStory(c.Part)
	case "dismiss":
		return g.Dismiss()
	case "audio_loaded":
		return g.AudioLoaded(c.Seconds)
	case "audio_progress":
		return g.AudioProgress(c.Seconds)
	case "audio_playing":
		return g.AudioPlaying()
	case "audio_paused":
		return g.AudioPaused()
	case "audio_ended":
		return g.AudioEnded()
	case "audio_error":
		return g.AudioFailed()
	case "hint":
		g.RequestHint()
		return nil
	case "pan":
		return g.Pan(c.Direction)
	case "drag":
		g.Drag(c.DX, c.DY)
		return nil
	case "open_goody_bag":
		return g.OpenGoodyBag()
	case "close_goody_bag":
		return g.CloseGoodyBag()
	case "select_activity":
		return g.SelectActivity(c.Activity)
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, c.Type)
	}
}

// commandStatus maps a rejected command to an HTTP status: malformed
// commands are 400, well-formed ones the game refuses in its current
// state are 409.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, errUnknownCommand),
		errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, game.ErrUnknownDirection),
		errors.Is(err, game.ErrUnknownActivity):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}
