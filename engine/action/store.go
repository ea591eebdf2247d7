package action

import (
	"sync"

	"github.com/google/uuid"
)

// PoseFrames holds baked skinning data for one (entity, action) pair. For each
// sample, Trans packs (x, y, z, scale) and Quats packs (x, y, z, w) per deform bone.
type PoseFrames struct {
	Trans [][]float32
	Quats [][]float32
}

type poseKey struct {
	entity uuid.UUID
	action *Action
}

// Store is the registry of compiled actions and the cache of baked poses.
type Store struct {
	mu      sync.RWMutex
	actions []*Action
	poses   map[poseKey]*PoseFrames
}

func NewStore() *Store {
	return &Store{
		poses: make(map[poseKey]*PoseFrames),
	}
}

// Append registers a compiled action. Earlier registrations win name lookups.
func (s *Store) Append(a *Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
}

// Lookup finds an action by exact name, falling back to its baked variant.
//
// Parameters:
//   - name: the action name
//
// Returns:
//   - *Action: the matching action
//   - bool: whether one was found
func (s *Store) Lookup(name string) (*Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.find(name); a != nil {
		return a, true
	}
	if a := s.find(name + BakedSuffix); a != nil {
		return a, true
	}
	return nil, false
}

func (s *Store) find(name string) *Action {
	for _, a := range s.actions {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Actions returns a snapshot of the registered actions in registration order.
func (s *Store) Actions() []*Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Action, len(s.actions))
	copy(out, s.actions)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions)
}

// RemoveBySource drops every action declared by source along with the poses baked from them.
//
// Parameters:
//   - source: the asset identifier
//
// Returns:
//   - int: the number of actions removed
func (s *Store) RemoveBySource(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.actions[:0]
	removed := make(map[*Action]struct{})
	for _, a := range s.actions {
		if a.source == source {
			removed[a] = struct{}{}
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(s.actions); i++ {
		s.actions[i] = nil
	}
	s.actions = kept

	for k := range s.poses {
		if _, ok := removed[k.action]; ok {
			delete(s.poses, k)
		}
	}
	return len(removed)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = nil
	s.poses = make(map[poseKey]*PoseFrames)
}

// Pose returns the cached pose frames for an entity and action.
func (s *Store) Pose(entity uuid.UUID, a *Action) (*PoseFrames, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.poses[poseKey{entity: entity, action: a}]
	return p, ok
}

// PoseOrBake returns the cached pose frames for an entity and action, calling
// bake and caching its result on a miss. A cached entry is never recomputed.
//
// Parameters:
//   - entity: the armature entity ID
//   - a: the action
//   - bake: computes the pose frames on a cache miss
//
// Returns:
//   - *PoseFrames: the cached or freshly baked frames
//   - error: any error from bake
func (s *Store) PoseOrBake(entity uuid.UUID, a *Action, bake func() (*PoseFrames, error)) (*PoseFrames, error) {
	if p, ok := s.Pose(entity, a); ok {
		return p, nil
	}

	p, err := bake()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := poseKey{entity: entity, action: a}
	if existing, ok := s.poses[key]; ok {
		return existing, nil
	}
	s.poses[key] = p
	return p, nil
}

// NumPoses returns the number of cached pose entries.
func (s *Store) NumPoses() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.poses)
}
