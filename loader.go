package nodemat

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// DecodeFunc turns an asset path into a node tree.
type DecodeFunc func(path string) (*Node, error)

// DecodeFile picks a decoder from the file extension.
func DecodeFile(path string) (*Node, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedAsset, "%s", path)
	}
}

// LoadResult is the outcome of one load: Root on success, Err otherwise.
type LoadResult struct {
	Path    string
	Root    *Node
	Err     error
	Elapsed time.Duration
}

func (r LoadResult) OK() bool {
	return r.Err == nil
}

// Pending is an in-flight load. It cannot be cancelled.
type Pending struct {
	path   string
	done   chan struct{}
	result LoadResult
}

func (p *Pending) Path() string {
	return p.path
}

// Done is closed when the result is ready.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Poll returns the result without blocking; ok is false while loading.
func (p *Pending) Poll() (result LoadResult, ok bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return LoadResult{}, false
	}
}

// Wait blocks until the load finishes or ctx is done. Giving up on the
// wait does not stop the load.
func (p *Pending) Wait(ctx context.Context) (LoadResult, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	}
}

// Loader decodes assets off the frame loop.
type Loader struct {
	Decode DecodeFunc
	// Simplify, when in (0, 1), decimates every loaded mesh to that
	// fraction of its faces.
	Simplify float64

	log *slog.Logger
}

func NewLoader(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{Decode: DecodeFile, log: log}
}

// Load starts decoding path in the background and returns immediately.
func (l *Loader) Load(path string) *Pending {
	p := &Pending{path: path, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		start := time.Now()
		root, err := l.load(path)
		p.result = LoadResult{Path: path, Root: root, Err: err, Elapsed: time.Since(start)}
	}()
	return p
}

func (l *Loader) load(path string) (root *Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root, err = nil, errors.Errorf("nodemat: decoding %s panicked: %v", path, r)
		}
	}()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "nodemat: expand %s", path)
	}
	decode := l.Decode
	if decode == nil {
		decode = DecodeFile
	}
	root, err = decode(expanded)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.Wrap(ErrNoTriangles, path)
	}
	if l.Simplify > 0 && l.Simplify < 1 {
		for _, n := range root.Meshes() {
			before := len(n.Mesh.Triangles)
			n.Mesh = n.Mesh.Simplify(l.Simplify)
			l.log.Debug("simplified mesh", "mesh", n.Name, "before", before, "after", len(n.Mesh.Triangles))
		}
	}
	return root, nil
}
