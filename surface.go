package nodemat

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/nfnt/resize"
)

// Surface is the render target a scene is drawn onto.
type Surface interface {
	Render(scene *Scene, camera *Camera) error
	SetSize(width, height int)
	Size() (width, height int)
}

// SoftwareSurface renders with the CPU rasterizer. Frames are drawn at
// Supersample times the surface size and filtered down.
type SoftwareSurface struct {
	Supersample int

	mu     sync.RWMutex
	width  int
	height int
	dc     *Context
	frame  *image.NRGBA
	frames int
}

func NewSoftwareSurface(width, height, supersample int) *SoftwareSurface {
	if supersample < 1 {
		supersample = 1
	}
	s := &SoftwareSurface{Supersample: supersample}
	s.SetSize(width, height)
	s.dc = NewContext(s.width*supersample, s.height*supersample)
	return s
}

// SetSize changes the output size; buffers follow on the next Render.
func (s *SoftwareSurface) SetSize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *SoftwareSurface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Context exposes the rasterizer state (culling, wireframe, line width).
func (s *SoftwareSurface) Context() *Context {
	return s.dc
}

func (s *SoftwareSurface) Render(scene *Scene, camera *Camera) error {
	w, h := s.Size()
	ss := s.Supersample
	if ss < 1 {
		ss = 1
	}
	dc := s.dc
	dc.Resize(w*ss, h*ss)
	dc.LineWidth = float64(ss)
	dc.ClearColor = scene.Background
	dc.ClearColorBuffer()
	dc.ClearDepthBuffer()

	vp := camera.Matrix()
	scene.Root.Walk(Identity(), func(n *Node, world Matrix) bool {
		if n.Hidden {
			return false
		}
		if n.IsMesh() && n.Material != nil {
			ns := NewNodeShader(vp, world, n.Material, scene.Time, scene)
			var shader Shader = ns
			if scene.Toon {
				shader = NewToonShader(ns)
			}
			dc.DrawMesh(shader, n.Mesh)
		}
		return true
	})

	var src image.Image = dc.Image()
	if ss > 1 {
		src = resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
	}
	frame := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(frame, frame.Bounds(), src, src.Bounds().Min, draw.Src)

	s.mu.Lock()
	s.frame = frame
	s.frames++
	s.mu.Unlock()
	return nil
}

// Frame returns the last rendered frame, or nil before the first Render.
// The image must not be modified.
func (s *SoftwareSurface) Frame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return nil
	}
	return s.frame
}

// Frames counts completed renders.
func (s *SoftwareSurface) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// EncodePNG writes the last frame.
func (s *SoftwareSurface) EncodePNG(w io.Writer) error {
	frame := s.Frame()
	if frame == nil {
		return ErrNoFrame
	}
	return png.Encode(w, frame)
}
