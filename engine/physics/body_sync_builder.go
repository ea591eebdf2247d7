package physics

import "github.com/jakecoffman/cp"

// BodySyncBuilderOption is a functional option for configuring a BodySync during construction.
type BodySyncBuilderOption func(*bodySync)

// WithBody syncs an existing body instead of creating a kinematic one.
//
// Parameters:
//   - body: the body to drive
//
// Returns:
//   - BodySyncBuilderOption: functional option to set the body
func WithBody(body *cp.Body) BodySyncBuilderOption {
	return func(b *bodySync) {
		b.body = body
	}
}

// WithSpace adds the body to a space and reindexes its shapes on every sync.
// The body must not already belong to a space.
//
// Parameters:
//   - space: the physics space
//
// Returns:
//   - BodySyncBuilderOption: functional option to set the space
func WithSpace(space *cp.Space) BodySyncBuilderOption {
	return func(b *bodySync) {
		b.space = space
	}
}
