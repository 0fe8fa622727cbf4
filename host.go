package nodemat

import (
	"context"
	"time"
)

// FrameFunc is called once per display refresh with the time since the
// loop started.
type FrameFunc func(elapsed time.Duration) error

// Host drives a frame callback until it decides to stop.
type Host interface {
	Run(ctx context.Context, frame FrameFunc) error
}

// TickerHost calls the frame callback FPS times per second on the calling
// goroutine. Frames, when positive, stops the loop after that many frames.
type TickerHost struct {
	FPS    int
	Frames int
}

func (h TickerHost) Run(ctx context.Context, frame FrameFunc) error {
	fps := h.FPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	for n := 0; h.Frames <= 0 || n < h.Frames; n++ {
		if err := frame(time.Since(start)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
