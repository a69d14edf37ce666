// Package scene defines the in-memory scene graph accepted by the
// exporter. The graph is plain data: objects reference each other by
// pointer, and the same pointer appearing in several places means the
// same object, which the exporter serializes exactly once.
package scene

import "fmt"

// Scene is a named collection of root nodes.
type Scene struct {
	Name  string
	Nodes []*Node
}

// Node is one element of the transform hierarchy. Zero-valued transform
// fields are treated as unset: no translation, identity rotation, unit
// scale. Matrix, when non-nil, replaces the TRS fields entirely.
type Node struct {
	Name        string
	Children    []*Node
	Mesh        *Mesh
	Skin        *Skin
	Camera      *Camera
	Matrix      *[16]float32
	Translation [3]float32
	Rotation    [4]float32 // quaternion x, y, z, w
	Scale       [3]float32
}

// Mesh is a set of primitives sharing one name.
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// Primitive holds one batch of vertex data. Positions are mandatory;
// every other attribute is optional but must match the position count
// when present. An empty Indices slice means non-indexed geometry.
type Primitive struct {
	Material  *Material
	Mode      Mode
	Positions [][3]float32
	Normals   [][3]float32
	Tangents  [][4]float32
	TexCoords [][2]float32
	Colors    [][4]uint8
	Joints    [][4]uint16
	Weights   [][4]float32
	Indices   []uint32
}

// Mode is the primitive topology. The zero value is Triangles.
type Mode int

// Topologies.
const (
	Triangles Mode = iota
	Points
	Lines
	LineLoop
	LineStrip
	TriangleStrip
	TriangleFan
)

func (m Mode) String() string {
	switch m {
	case Triangles:
		return "triangles"
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineLoop:
		return "line_loop"
	case LineStrip:
		return "line_strip"
	case TriangleStrip:
		return "triangle_strip"
	case TriangleFan:
		return "triangle_fan"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a topology name as used in manifests.
func ParseMode(s string) (Mode, error) {
	for m := Triangles; m <= TriangleFan; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown primitive mode %q", s)
}

// Material describes surface appearance. Nil factor pointers mean the
// glTF defaults (white base color, fully metallic, fully rough); scalar
// zero values on the remaining fields likewise mean "use the default".
type Material struct {
	Name                     string
	BaseColor                *[4]float32
	Metallic                 *float32
	Roughness                *float32
	BaseColorTexture         *Texture
	MetallicRoughnessTexture *Texture
	NormalTexture            *Texture
	NormalScale              float32
	OcclusionTexture         *Texture
	OcclusionStrength        float32
	EmissiveTexture          *Texture
	EmissiveFactor           [3]float32
	AlphaMode                AlphaMode
	AlphaCutoff              float32
	DoubleSided              bool
}

// AlphaMode selects alpha handling. The zero value is Opaque.
type AlphaMode int

// Alpha modes.
const (
	Opaque AlphaMode = iota
	Mask
	Blend
)

func (a AlphaMode) String() string {
	switch a {
	case Opaque:
		return "opaque"
	case Mask:
		return "mask"
	case Blend:
		return "blend"
	}
	return fmt.Sprintf("AlphaMode(%d)", int(a))
}

// ParseAlphaMode converts an alpha mode name as used in manifests.
func ParseAlphaMode(s string) (AlphaMode, error) {
	for a := Opaque; a <= Blend; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown alpha mode %q", s)
}

// Texture pairs an image with sampler settings. Sampler is a value:
// two textures with equal settings are interchangeable regardless of
// which Texture object carries them.
type Texture struct {
	Name    string
	Image   *Image
	Sampler Sampler
}

// Sampler holds filtering and wrapping settings. The zero value means
// renderer-chosen filtering with repeat wrapping, which matches the
// glTF defaults and produces no sampler definition at all.
type Sampler struct {
	MagFilter Filter
	MinFilter Filter
	WrapS     Wrap
	WrapT     Wrap
}

// IsDefault reports whether every setting is at its default.
func (s Sampler) IsDefault() bool {
	return s.MagFilter == FilterAuto && s.MinFilter == FilterAuto &&
		s.WrapS == WrapRepeat && s.WrapT == WrapRepeat
}

// Filter is a texture filtering mode. The zero value FilterAuto leaves
// the choice to the renderer.
type Filter int

// Filtering modes.
const (
	FilterAuto Filter = iota
	FilterNearest
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

func (f Filter) String() string {
	switch f {
	case FilterAuto:
		return "auto"
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterNearestMipmapNearest:
		return "nearest_mipmap_nearest"
	case FilterLinearMipmapNearest:
		return "linear_mipmap_nearest"
	case FilterNearestMipmapLinear:
		return "nearest_mipmap_linear"
	case FilterLinearMipmapLinear:
		return "linear_mipmap_linear"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter converts a filter name as used in manifests.
func ParseFilter(s string) (Filter, error) {
	for f := FilterAuto; f <= FilterLinearMipmapLinear; f++ {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// Wrap is a texture wrapping mode. The zero value is WrapRepeat.
type Wrap int

// Wrapping modes.
const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

func (w Wrap) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClampToEdge:
		return "clamp_to_edge"
	case WrapMirroredRepeat:
		return "mirrored_repeat"
	}
	return fmt.Sprintf("Wrap(%d)", int(w))
}

// ParseWrap converts a wrap mode name as used in manifests.
func ParseWrap(s string) (Wrap, error) {
	for w := WrapRepeat; w <= WrapMirroredRepeat; w++ {
		if w.String() == s {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown wrap mode %q", s)
}

// Image is encoded pixel data. URI optionally declares the exact
// resource name to publish the payload under when exporting with
// external images; when empty the exporter generates one. MIME may be
// left empty, in which case the exporter sniffs the payload.
type Image struct {
	Name string
	URI  string
	MIME string
	Data []byte
}

// Skin binds meshes under a node to a set of joint nodes. When
// InverseBindMatrices is empty the identity is assumed for every joint;
// otherwise its length must equal the joint count.
type Skin struct {
	Name                string
	Joints              []*Node
	Skeleton            *Node
	InverseBindMatrices [][16]float32
}

// Camera is a projection. Exactly one of the two fields must be set.
type Camera struct {
	Name         string
	Perspective  *Perspective
	Orthographic *Orthographic
}

// Perspective projection. AspectRatio zero leaves the aspect to the
// viewer; ZFar zero means an infinite projection.
type Perspective struct {
	AspectRatio float32
	YFov        float32
	ZNear       float32
	ZFar        float32
}

// Orthographic projection.
type Orthographic struct {
	XMag  float32
	YMag  float32
	ZNear float32
	ZFar  float32
}
