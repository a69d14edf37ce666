// Package gltf defines the glTF 2.0 document model used for serialization.
// Types map one-to-one onto the glTF JSON schema; optional scalars are
// pointers so that unset fields are dropped by omitempty.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

// Document is the root of a glTF asset. Definition arrays are parallel
// index spaces: cross references between definitions are integer indices
// into these slices.
type Document struct {
	Asset              Asset         `json:"asset"`
	Scene              *int          `json:"scene,omitempty"`
	Scenes             []*Scene      `json:"scenes,omitempty"`
	Nodes              []*Node       `json:"nodes,omitempty"`
	Meshes             []*Mesh       `json:"meshes,omitempty"`
	Materials          []*Material   `json:"materials,omitempty"`
	Textures           []*Texture    `json:"textures,omitempty"`
	Images             []*Image      `json:"images,omitempty"`
	Samplers           []*Sampler    `json:"samplers,omitempty"`
	Cameras            []*Camera     `json:"cameras,omitempty"`
	Skins              []*Skin       `json:"skins,omitempty"`
	Accessors          []*Accessor   `json:"accessors,omitempty"`
	BufferViews        []*BufferView `json:"bufferViews,omitempty"`
	Buffers            []*Buffer     `json:"buffers,omitempty"`
	ExtensionsUsed     []string      `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string      `json:"extensionsRequired,omitempty"`
}

// NewDocument returns an empty document with the mandatory asset version.
func NewDocument() *Document {
	return &Document{Asset: Asset{Version: Version}}
}

// Asset holds document metadata.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene is a set of root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is an element of the transform hierarchy. Matrix excludes the
// TRS fields; the document writer must set one form or the other.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Skin        *int         `json:"skin,omitempty"`
	Camera      *int         `json:"camera,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
	Weights     []float32    `json:"weights,omitempty"`
}

// Mesh is a set of primitives.
type Mesh struct {
	Name       string       `json:"name,omitempty"`
	Primitives []*Primitive `json:"primitives"`
	Weights    []float32    `json:"weights,omitempty"`
}

// Primitive is renderable geometry. Attributes maps semantic names
// (POSITION, NORMAL, ...) to accessor indices.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// Material describes surface appearance in the metallic-roughness model.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTextureInfo `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PBRMetallicRoughness holds the base PBR parameters.
type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo references a texture definition from a material slot.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// NormalTextureInfo references a normal map.
type NormalTextureInfo struct {
	TextureInfo
	Scale *float32 `json:"scale,omitempty"`
}

// OcclusionTextureInfo references an occlusion map.
type OcclusionTextureInfo struct {
	TextureInfo
	Strength *float32 `json:"strength,omitempty"`
}

// Texture pairs an image with a sampler. A nil Sampler means default
// filtering with repeat wrapping.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is pixel data addressed either by URI or by buffer view, never both.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler holds texture filtering and wrapping modes. Zero-valued fields
// are unset and omitted; wrap fields never store the REPEAT default.
type Sampler struct {
	Name      string `json:"name,omitempty"`
	MagFilter int    `json:"magFilter,omitempty"`
	MinFilter int    `json:"minFilter,omitempty"`
	WrapS     int    `json:"wrapS,omitempty"`
	WrapT     int    `json:"wrapT,omitempty"`
}

// Camera is a projection definition. Exactly one of Perspective or
// Orthographic must be set, matching Type.
type Camera struct {
	Name         string        `json:"name,omitempty"`
	Type         string        `json:"type"`
	Perspective  *Perspective  `json:"perspective,omitempty"`
	Orthographic *Orthographic `json:"orthographic,omitempty"`
}

// Perspective holds a perspective projection.
type Perspective struct {
	AspectRatio *float32 `json:"aspectRatio,omitempty"`
	YFov        float32  `json:"yfov"`
	ZFar        *float32 `json:"zfar,omitempty"`
	ZNear       float32  `json:"znear"`
}

// Orthographic holds an orthographic projection.
type Orthographic struct {
	XMag  float32 `json:"xmag"`
	YMag  float32 `json:"ymag"`
	ZFar  float32 `json:"zfar"`
	ZNear float32 `json:"znear"`
}

// Skin binds a mesh to skeleton joints.
type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
	Joints              []int  `json:"joints"`
}

// Accessor types a region of a buffer view.
type Accessor struct {
	Name          string        `json:"name,omitempty"`
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
	Min           []float32     `json:"min,omitempty"`
	Max           []float32     `json:"max,omitempty"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Name       string `json:"name,omitempty"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"`
	Target     int    `json:"target,omitempty"`
}

// Buffer is a binary payload. An empty URI designates the GLB-embedded
// buffer, which is only legal at index zero.
type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// Index returns a pointer to i, for optional index fields.
func Index(i int) *int { return &i }

// Float returns a pointer to f, for optional float fields.
func Float(f float32) *float32 { return &f }
