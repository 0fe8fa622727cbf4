package preview

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/netisu/nodemat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	frame image.Image
	n     int
}

func (s *stubSource) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *stubSource) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func (s *stubSource) set(img image.Image) {
	s.mu.Lock()
	s.frame = img
	s.n++
	s.mu.Unlock()
}

type chanPoster chan nodemat.Event

func (c chanPoster) Post(e nodemat.Event) { c <- e }

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	return img
}

func TestMessageEvent(t *testing.T) {
	tests := []struct {
		msg  Message
		want nodemat.Event
	}{
		{Message{Type: "resize", Width: 640, Height: 480}, nodemat.ResizeEvent{Width: 640, Height: 480}},
		{Message{Type: "orbit", DX: 3, DY: -2}, nodemat.OrbitEvent{DX: 3, DY: -2}},
		{Message{Type: "zoom", Delta: 1.5}, nodemat.ZoomEvent{Delta: 1.5}},
	}
	for _, tt := range tests {
		got, err := tt.msg.Event()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Message{Type: "scroll"}.Event()
	assert.Error(t, err)
}

func TestServeFrame(t *testing.T) {
	src := &stubSource{}
	srv := httptest.NewServer(New(src, chanPoster(make(chan nodemat.Event, 1)), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	src.set(testImage())
	resp, err = http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nothing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocket(t *testing.T) {
	src := &stubSource{}
	src.set(testImage())
	events := make(chan nodemat.Event, 4)
	s := New(src, chanPoster(events), nil)
	s.Interval = 5 * time.Millisecond
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	img, err := png.Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	msg, err := json.Marshal(Message{Type: "resize", Width: 300, Height: 200})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	select {
	case ev := <-events:
		assert.Equal(t, nodemat.ResizeEvent{Width: 300, Height: 200}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no event posted")
	}
}
