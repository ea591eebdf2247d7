package loader

import "io"

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a glTF backend converting keyframe seconds at the given framerate.
//
// Parameters:
//   - framerate: frames per second
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(framerate float64) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(framerate),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*importedAsset, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader) (*importedAsset, error) {
	return b.importer.ImportReader(name, r)
}
