package export

import "fmt"

// propertyKind names one definition array of the document. Every kind
// owns an independent index space, so a node and a mesh may both hold
// index zero.
type propertyKind int

const (
	kindScene propertyKind = iota
	kindNode
	kindMesh
	kindMaterial
	kindImage
	kindSkin
	kindCamera
)

func (k propertyKind) String() string {
	switch k {
	case kindScene:
		return "scene"
	case kindNode:
		return "node"
	case kindMesh:
		return "mesh"
	case kindMaterial:
		return "material"
	case kindImage:
		return "image"
	case kindSkin:
		return "skin"
	case kindCamera:
		return "camera"
	}
	return fmt.Sprintf("propertyKind(%d)", int(k))
}

// indexRegistry assigns document indices to scene objects. Keys are
// object identities: registering the same pointer again yields the
// index assigned the first time, while two distinct objects with equal
// contents keep distinct indices.
type indexRegistry struct {
	indices map[propertyKind]map[any]int
}

func newIndexRegistry() *indexRegistry {
	return &indexRegistry{indices: make(map[propertyKind]map[any]int)}
}

// lookup returns the index already assigned to obj under kind.
func (r *indexRegistry) lookup(kind propertyKind, obj any) (int, bool) {
	idx, ok := r.indices[kind][obj]
	return idx, ok
}

// register returns the index assigned to obj, invoking grow exactly
// once on first registration. grow must append the definition to the
// kind's array and return its position, which becomes the index every
// later registration of obj observes.
func (r *indexRegistry) register(kind propertyKind, obj any, grow func() int) int {
	if idx, ok := r.indices[kind][obj]; ok {
		return idx
	}
	m := r.indices[kind]
	if m == nil {
		m = make(map[any]int)
		r.indices[kind] = m
	}
	idx := grow()
	m[obj] = idx
	return idx
}
