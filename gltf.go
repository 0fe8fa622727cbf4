package nodemat

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// dracoExtension marks Draco-compressed geometry. Decoding it would need
// github.com/qmuntal/draco-go (cgo bindings to the Draco C++ library);
// such assets are rejected with ErrUnsupportedAsset instead.
const dracoExtension = "KHR_draco_mesh_compression"

// DefaultAuthored is given to primitives that reference no material.
var DefaultAuthored = NewSolidMaterial("", HexColor("777"))

// LoadGLTF loads a .gltf or .glb file into a node tree rooted at a group
// named after the file.
func LoadGLTF(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "nodemat: open %s", path)
	}
	return DecodeGLTF(doc, filepath.Base(path))
}

// DecodeGLTF converts a parsed document. Every primitive becomes a mesh
// node carrying its authored material name; a mesh with several
// primitives becomes a group whose first child keeps the mesh name and
// the rest are suffixed _1, _2 and so on.
func DecodeGLTF(doc *gltf.Document, name string) (*Node, error) {
	for _, ext := range doc.ExtensionsRequired {
		if ext == dracoExtension {
			return nil, errors.Wrapf(ErrUnsupportedAsset, "%s requires %s", name, ext)
		}
	}

	d := &gltfDecoder{doc: doc, materials: make([]*Material, len(doc.Materials))}
	for i, m := range doc.Materials {
		d.materials[i] = authoredMaterial(m)
	}

	root := NewNode(name)
	for _, i := range sceneRoots(doc) {
		n, err := d.node(i, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	if len(root.Meshes()) == 0 {
		return nil, errors.Wrap(ErrNoTriangles, name)
	}
	return root, nil
}

func sceneRoots(doc *gltf.Document) []int {
	scene := 0
	if doc.Scene != nil {
		scene = int(*doc.Scene)
	}
	var roots []int
	if scene < len(doc.Scenes) {
		for _, i := range doc.Scenes[scene].Nodes {
			roots = append(roots, int(i))
		}
		return roots
	}
	// no scene: every node that is nobody's child
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func authoredMaterial(m *gltf.Material) *Material {
	c := Color{1, 1, 1, 1}
	if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		f := *pbr.BaseColorFactor
		c = Color{f[0], f[1], f[2], 1}
	}
	return NewSolidMaterial(m.Name, c)
}

type gltfDecoder struct {
	doc       *gltf.Document
	materials []*Material
}

// maxDepth guards against cyclic node references in malformed files.
const maxDepth = 256

func (d *gltfDecoder) node(i, depth int) (*Node, error) {
	if i < 0 || i >= len(d.doc.Nodes) {
		return nil, errors.Errorf("nodemat: node index %d out of range", i)
	}
	if depth > maxDepth {
		return nil, errors.New("nodemat: node hierarchy too deep")
	}
	src := d.doc.Nodes[i]
	n := NewNode(src.Name)
	applyGLTFTransform(n, src)

	if src.Mesh != nil {
		mi := int(*src.Mesh)
		if mi < 0 || mi >= len(d.doc.Meshes) {
			return nil, errors.Errorf("nodemat: mesh index %d out of range", mi)
		}
		mesh := d.doc.Meshes[mi]
		if n.Name == "" {
			n.Name = mesh.Name
		}
		prims, err := d.primitives(mesh)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %q", mesh.Name)
		}
		if len(prims) == 1 {
			n.Mesh = prims[0].Mesh
			n.Material = prims[0].Material
			n.Authored = prims[0].Material
		} else {
			// the first primitive keeps the mesh name so name rules still match
			for k, p := range prims {
				name := n.Name
				if k > 0 {
					name = fmt.Sprintf("%s_%d", n.Name, k)
				}
				n.Add(NewMeshNode(name, p.Mesh, p.Material))
			}
		}
	}

	for _, c := range src.Children {
		child, err := d.node(int(c), depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

var identity16 = [16]float64(mgl64.Ident4())

func applyGLTFTransform(n *Node, src *gltf.Node) {
	if src.Matrix != ([16]float64{}) && src.Matrix != identity16 {
		m := Matrix(mgl64.Mat4(src.Matrix))
		n.Transform = &m
		return
	}
	t := src.Translation
	n.Position = V(t[0], t[1], t[2])
	if r := src.Rotation; r != ([4]float64{}) {
		n.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
	}
	if s := src.Scale; s != ([3]float64{}) {
		n.Scale = V(s[0], s[1], s[2])
	}
}

type primitive struct {
	Mesh     *Mesh
	Material *Material
}

func (d *gltfDecoder) primitives(mesh *gltf.Mesh) ([]primitive, error) {
	doc := d.doc
	var out []primitive
	for _, p := range mesh.Primitives {
		// triangles only
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := p.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, errors.Wrap(err, "positions")
		}

		var normals [][3]float32
		if normIdx, ok := p.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return nil, errors.Wrap(err, "normals")
			}
		}

		var texCoords [][2]float32
		if texIdx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
			texCoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[texIdx], nil)
			if err != nil {
				return nil, errors.Wrap(err, "texture coordinates")
			}
		}

		var indices []uint32
		if p.Indices != nil {
			// converts uint8/uint16/uint32 to []uint32
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
			if err != nil {
				return nil, err
			}
		} else {
			indices = make([]uint32, len(positions))
			for k := range indices {
				indices[k] = uint32(k)
			}
		}

		vertex := func(i uint32) (Vertex, bool) {
			if int(i) >= len(positions) {
				return Vertex{}, false
			}
			v := Vertex{Position: vec3f(positions[i])}
			if int(i) < len(normals) {
				v.Normal = vec3f(normals[i])
			}
			if int(i) < len(texCoords) {
				v.Texture = Vector{float64(texCoords[i][0]), float64(texCoords[i][1]), 0}
			}
			return v, true
		}

		var triangles []*Triangle
		for i := 0; i+2 < len(indices); i += 3 {
			v1, ok1 := vertex(indices[i])
			v2, ok2 := vertex(indices[i+1])
			v3, ok3 := vertex(indices[i+2])
			if !ok1 || !ok2 || !ok3 {
				return nil, errors.Errorf("nodemat: index out of range in mesh %q", mesh.Name)
			}
			triangles = append(triangles, NewTriangle(v1, v2, v3))
		}
		if len(triangles) == 0 {
			continue
		}

		material := DefaultAuthored
		if p.Material != nil {
			if mi := int(*p.Material); mi >= 0 && mi < len(d.materials) {
				material = d.materials[mi]
			}
		}
		out = append(out, primitive{NewTriangleMesh(triangles), material})
	}
	return out, nil
}

func vec3f(v [3]float32) Vector {
	return Vector{float64(v[0]), float64(v[1]), float64(v[2])}
}
