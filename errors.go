package nodemat

import "github.com/pkg/errors"

var (
	// ErrUnsupportedAsset is returned for asset formats or extensions the
	// loader cannot decode, such as Draco-compressed glTF.
	ErrUnsupportedAsset = errors.New("nodemat: unsupported asset")

	// ErrNoTriangles is returned when an asset decodes to no drawable mesh.
	ErrNoTriangles = errors.New("nodemat: no triangles found in asset")

	ErrNoFrame = errors.New("nodemat: no frame rendered")

	// ErrUnknownProcedural is returned for names missing from the registry.
	ErrUnknownProcedural = errors.New("nodemat: unknown procedural expression")
)
