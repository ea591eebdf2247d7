package audio

import "errors"

var (
	// ErrUnsupportedSound is returned for a sound file whose extension no decoder reads.
	ErrUnsupportedSound = errors.New("unsupported sound format")
)
