// Package preview serves rendered frames to a browser over a websocket and
// feeds the browser's viewport and pointer input back to the frame loop.
package preview

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/netisu/nodemat"
	"github.com/pkg/errors"
)

//go:embed index.html
var indexHTML []byte

// Source is where frames come from; *nodemat.SoftwareSurface is one.
type Source interface {
	Frame() image.Image
	Frames() int
}

// Message is what the browser sends.
type Message struct {
	Type   string  `json:"type"` // resize, orbit or zoom
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

// Event converts a browser message into a frame loop event.
func (m Message) Event() (nodemat.Event, error) {
	switch m.Type {
	case "resize":
		return nodemat.ResizeEvent{Width: m.Width, Height: m.Height}, nil
	case "orbit":
		return nodemat.OrbitEvent{DX: m.DX, DY: m.DY}, nil
	case "zoom":
		return nodemat.ZoomEvent{Delta: m.Delta}, nil
	default:
		return nil, errors.Errorf("preview: unknown message type %q", m.Type)
	}
}

type Server struct {
	Source Source
	Poster nodemat.Poster
	// Interval is how often a connection checks for a new frame.
	Interval time.Duration

	log      *slog.Logger
	upgrader websocket.Upgrader
}

func New(src Source, poster nodemat.Poster, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Source: src, Poster: poster, Interval: time.Second / 30, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	mux.HandleFunc("/frame.png", s.serveFrame)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) serveFrame(w http.ResponseWriter, r *http.Request) {
	frame := s.Source.Frame()
	if frame == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, frame); err != nil {
		s.log.Warn("encode frame", "err", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				s.log.Debug("bad preview message", "err", err)
				continue
			}
			ev, err := m.Event()
			if err != nil {
				s.log.Debug("bad preview message", "err", err)
				continue
			}
			s.Poster.Post(ev)
		}
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	last := -1
	var buf bytes.Buffer
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		n := s.Source.Frames()
		frame := s.Source.Frame()
		if n == last || frame == nil {
			continue
		}
		last = n
		buf.Reset()
		if err := png.Encode(&buf, frame); err != nil {
			s.log.Warn("encode frame", "err", err)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			return
		}
	}
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("preview listening", "addr", addr)
	select {
	case err := <-errc:
		return errors.Wrap(err, "preview")
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
