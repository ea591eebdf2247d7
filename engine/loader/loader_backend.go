package loader

import "io"

// loaderBackend reads one asset format into uncompiled asset data.
type loaderBackend interface {
	// Load imports the asset at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *importedAsset: the imported asset data
	//   - error: error if the file cannot be read or decoded
	Load(path string) (*importedAsset, error)

	// LoadReader imports an asset from a stream.
	//
	// Parameters:
	//   - name: the asset name used when the data carries none
	//   - r: the reader providing the asset data
	//
	// Returns:
	//   - *importedAsset: the imported asset data
	//   - error: error if the data cannot be decoded
	LoadReader(name string, r io.Reader) (*importedAsset, error)
}
