package nodemat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadOBJ loads a Wavefront OBJ file. Each run of faces sharing an object
// or group name and a usemtl name becomes one mesh node whose authored
// material carries that usemtl name.
func LoadOBJ(path string) (*Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "nodemat: open %s", path)
	}
	defer file.Close()
	return LoadOBJFromReader(file, filepath.Base(path))
}

func LoadOBJFromBytes(b []byte, name string) (*Node, error) {
	return LoadOBJFromReader(bytes.NewReader(b), name)
}

func LoadOBJFromReader(r io.Reader, name string) (*Node, error) {
	vs := make([]Vector, 1, 1024)
	vts := make([]Vector, 1, 1024)
	vns := make([]Vector, 1, 1024)

	root := NewNode(name)
	materials := make(map[string]*Material)
	object, usemtl := "", ""
	var triangles []*Triangle

	flush := func() {
		if len(triangles) == 0 {
			return
		}
		m, ok := materials[usemtl]
		if !ok {
			m = DefaultAuthored
			if usemtl != "" {
				m = NewSolidMaterial(usemtl, HexColor("777"))
			}
			materials[usemtl] = m
		}
		nodeName := object
		if nodeName == "" {
			nodeName = fmt.Sprintf("%s_%d", name, len(root.Children))
		}
		root.Add(NewMeshNode(nodeName, NewTriangleMesh(triangles), m))
		triangles = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			vs = append(vs, Vector{pf(fields[1]), pf(fields[2]), pf(fields[3])})
		case "vt":
			if len(fields) < 3 {
				continue
			}
			vts = append(vts, Vector{pf(fields[1]), pf(fields[2]), 0})
		case "vn":
			if len(fields) < 4 {
				continue
			}
			vns = append(vns, Vector{pf(fields[1]), pf(fields[2]), pf(fields[3])})
		case "o", "g":
			flush()
			object = strings.Join(fields[1:], " ")
		case "usemtl":
			flush()
			usemtl = strings.Join(fields[1:], " ")
		case "f":
			args := fields[1:]
			fvs := make([]int, len(args))
			fvts := make([]int, len(args))
			fvns := make([]int, len(args))

			for i, arg := range args {
				vertex := strings.Split(arg+"//", "/")
				fvs[i] = fixIndex(vertex[0], len(vs))
				fvts[i] = fixIndex(vertex[1], len(vts))
				fvns[i] = fixIndex(vertex[2], len(vns))
				if fvs[i] <= 0 || fvs[i] >= len(vs) || fvts[i] >= len(vts) || fvns[i] >= len(vns) {
					return nil, errors.Errorf("nodemat: bad face index in %s: %q", name, arg)
				}
			}

			for i := 1; i < len(fvs)-1; i++ {
				t := &Triangle{}
				i1, i2, i3 := 0, i, i+1

				t.V1.Position = vs[fvs[i1]]
				t.V2.Position = vs[fvs[i2]]
				t.V3.Position = vs[fvs[i3]]

				if fvns[i1] > 0 && fvns[i2] > 0 && fvns[i3] > 0 {
					t.V1.Normal = vns[fvns[i1]]
					t.V2.Normal = vns[fvns[i2]]
					t.V3.Normal = vns[fvns[i3]]
				}
				if fvts[i1] > 0 && fvts[i2] > 0 && fvts[i3] > 0 {
					t.V1.Texture = vts[fvts[i1]]
					t.V2.Texture = vts[fvts[i2]]
					t.V3.Texture = vts[fvts[i3]]
				}

				t.FixNormals()
				triangles = append(triangles, t)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "nodemat: read %s", name)
	}
	flush()
	if len(root.Children) == 0 {
		return nil, errors.Wrap(ErrNoTriangles, name)
	}
	return root, nil
}

func pf(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// fixIndex resolves negative (relative) OBJ indices.
func fixIndex(value string, length int) int {
	if value == "" {
		return 0
	}
	parsed, _ := strconv.Atoi(value)
	if parsed < 0 {
		return parsed + length
	}
	return parsed
}
