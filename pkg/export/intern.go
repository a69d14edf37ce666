package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/glbforge/pkg/gltf"
	"github.com/Faultbox/glbforge/pkg/scene"
)

// internTable deduplicates value-like definitions by canonical content
// key. Unlike the identity registry, two records with equal content are
// the same definition no matter which objects supplied them.
type internTable struct {
	indices map[string]int
}

func newInternTable() *internTable {
	return &internTable{indices: make(map[string]int)}
}

// intern returns the index assigned to key, invoking grow exactly once
// for a key never seen before.
func (t *internTable) intern(key string, grow func() int) int {
	if idx, ok := t.indices[key]; ok {
		return idx
	}
	idx := grow()
	t.indices[key] = idx
	return idx
}

// canonicalKey assembles a deterministic encoding of a definition
// record. Fields are sorted by name before joining, so neither struct
// layout nor insertion order leaks into the key. Fields holding their
// default value must not be added at all: an explicit default and an
// absent field encode identically.
type canonicalKey struct {
	fields []string
}

func (k *canonicalKey) addInt(name string, v int) {
	k.fields = append(k.fields, fmt.Sprintf("%s=%d", name, v))
}

func (k *canonicalKey) String() string {
	sort.Strings(k.fields)
	return strings.Join(k.fields, "&")
}

// samplerRecord is the normalized form of sampler settings: glTF codes
// with every default collapsed to zero. The zero record stands for the
// sampler every texture gets when it names none.
type samplerRecord struct {
	magFilter int
	minFilter int
	wrapS     int
	wrapT     int
}

func makeSamplerRecord(s scene.Sampler) samplerRecord {
	return samplerRecord{
		magFilter: filterToGLTF(s.MagFilter),
		minFilter: filterToGLTF(s.MinFilter),
		wrapS:     wrapToGLTF(s.WrapS),
		wrapT:     wrapToGLTF(s.WrapT),
	}
}

func (r samplerRecord) isZero() bool {
	return r == samplerRecord{}
}

func (r samplerRecord) key() string {
	var k canonicalKey
	if r.magFilter != 0 {
		k.addInt("magFilter", r.magFilter)
	}
	if r.minFilter != 0 {
		k.addInt("minFilter", r.minFilter)
	}
	if r.wrapS != 0 {
		k.addInt("wrapS", r.wrapS)
	}
	if r.wrapT != 0 {
		k.addInt("wrapT", r.wrapT)
	}
	return k.String()
}

// textureKey identifies a texture binding by its resolved references.
// A nil sampler is the implicit default sampler and stays out of the
// key, exactly like a record that normalized to zero.
func textureKey(source int, sampler *int) string {
	var k canonicalKey
	k.addInt("source", source)
	if sampler != nil {
		k.addInt("sampler", *sampler)
	}
	return k.String()
}

// filterToGLTF maps a filter to its glTF code, 0 when unset.
func filterToGLTF(f scene.Filter) int {
	switch f {
	case scene.FilterNearest:
		return gltf.FilterNearest
	case scene.FilterLinear:
		return gltf.FilterLinear
	case scene.FilterNearestMipmapNearest:
		return gltf.FilterNearestMipmapNearest
	case scene.FilterLinearMipmapNearest:
		return gltf.FilterLinearMipmapNearest
	case scene.FilterNearestMipmapLinear:
		return gltf.FilterNearestMipmapLinear
	case scene.FilterLinearMipmapLinear:
		return gltf.FilterLinearMipmapLinear
	}
	return 0
}

// wrapToGLTF maps a wrap mode to its glTF code. Repeat is the glTF
// default and maps to 0: it is never stored in a definition.
func wrapToGLTF(w scene.Wrap) int {
	switch w {
	case scene.WrapClampToEdge:
		return gltf.WrapClampToEdge
	case scene.WrapMirroredRepeat:
		return gltf.WrapMirroredRepeat
	}
	return 0
}
