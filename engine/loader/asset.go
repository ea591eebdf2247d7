package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// Asset is a loaded animation asset: its armatures, compiled actions and object descriptions.
// The actions are also registered in the loader's store under the asset's Source.
type Asset struct {
	Name      string
	Source    string
	Armatures map[string]*skeleton.Armature
	Actions   []*action.Action
	Objects   []Object
}

// Object describes an animatable object declared by an asset.
type Object struct {
	Name            string
	Type            animator.EntityType
	Armature        string // ARMATURE: own rig, MESH: skinning rig
	Actions         []string
	Cyclic          bool
	Physics         bool
	Sound           string // SPEAKER: sound file, relative to the asset's directory
	VertexAnims     []animator.VertexAnim
	ParticleSystems []ParticleSystem
}

// ParticleSystem describes one particle system of an object.
type ParticleSystem struct {
	Name       string
	Type       string
	FrameStart float64
	FrameEnd   float64
	Lifetime   float64
	Cyclic     bool
	Count      int
}

// Action returns the asset's compiled action with the given name.
//
// Parameters:
//   - name: the action name
//
// Returns:
//   - *action.Action: the action
//   - bool: true if the asset declares it
func (a *Asset) Action(name string) (*action.Action, bool) {
	for _, act := range a.Actions {
		if act.Name() == name {
			return act, true
		}
	}
	return nil, false
}

// Object returns the object with the given name.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - Object: the object
//   - bool: true if the asset declares it
func (a *Asset) Object(name string) (Object, bool) {
	for _, obj := range a.Objects {
		if obj.Name == name {
			return obj, true
		}
	}
	return Object{}, false
}

// importedAsset is what a backend produces before the loader compiles its actions.
type importedAsset struct {
	Name      string
	Armatures []*skeleton.Armature
	Actions   []action.RawAction
	Objects   []Object
}
