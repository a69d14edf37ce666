// Package manifest loads YAML scene descriptions into scene graphs.
// Declarations are flat named lists that reference each other by name,
// so meshes, textures and nodes shared between parents resolve to the
// same object.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the root of a scene description file.
type Manifest struct {
	Scene     SceneDecl      `yaml:"scene"`
	Nodes     []NodeDecl     `yaml:"nodes"`
	Meshes    []MeshDecl     `yaml:"meshes"`
	Materials []MaterialDecl `yaml:"materials"`
	Textures  []TextureDecl  `yaml:"textures"`
	Images    []ImageDecl    `yaml:"images"`
	Cameras   []CameraDecl   `yaml:"cameras"`
}

// SceneDecl names the scene and its root nodes.
type SceneDecl struct {
	Name  string   `yaml:"name"`
	Nodes []string `yaml:"nodes"`
}

// NodeDecl declares a node. Mesh, camera and children are references
// to other declarations by name.
type NodeDecl struct {
	Name        string    `yaml:"name"`
	Children    []string  `yaml:"children"`
	Mesh        string    `yaml:"mesh"`
	Camera      string    `yaml:"camera"`
	Translation []float32 `yaml:"translation"`
	Rotation    []float32 `yaml:"rotation"`
	Scale       []float32 `yaml:"scale"`
	Matrix      []float32 `yaml:"matrix"`
}

// MeshDecl declares a mesh as a list of primitives.
type MeshDecl struct {
	Name       string          `yaml:"name"`
	Primitives []PrimitiveDecl `yaml:"primitives"`
}

// PrimitiveDecl declares one primitive with inline vertex data. Joints
// and colors use plain ints; Build range-checks them into their narrow
// component types.
type PrimitiveDecl struct {
	Material  string      `yaml:"material"`
	Mode      string      `yaml:"mode"`
	Positions [][]float32 `yaml:"positions"`
	Normals   [][]float32 `yaml:"normals"`
	Tangents  [][]float32 `yaml:"tangents"`
	TexCoords [][]float32 `yaml:"texcoords"`
	Colors    [][]int     `yaml:"colors"`
	Joints    [][]int     `yaml:"joints"`
	Weights   [][]float32 `yaml:"weights"`
	Indices   []uint32    `yaml:"indices"`
}

// MaterialDecl declares a material. Texture fields reference texture
// declarations by name.
type MaterialDecl struct {
	Name                     string    `yaml:"name"`
	BaseColor                []float32 `yaml:"base_color"`
	Metallic                 *float32  `yaml:"metallic"`
	Roughness                *float32  `yaml:"roughness"`
	BaseColorTexture         string    `yaml:"base_color_texture"`
	MetallicRoughnessTexture string    `yaml:"metallic_roughness_texture"`
	NormalTexture            string    `yaml:"normal_texture"`
	NormalScale              float32   `yaml:"normal_scale"`
	OcclusionTexture         string    `yaml:"occlusion_texture"`
	OcclusionStrength        float32   `yaml:"occlusion_strength"`
	EmissiveTexture          string    `yaml:"emissive_texture"`
	EmissiveFactor           []float32 `yaml:"emissive_factor"`
	AlphaMode                string    `yaml:"alpha_mode"`
	AlphaCutoff              float32   `yaml:"alpha_cutoff"`
	DoubleSided              bool      `yaml:"double_sided"`
}

// TextureDecl declares a texture binding: an image reference plus
// sampler settings. Empty settings mean the glTF defaults.
type TextureDecl struct {
	Name      string `yaml:"name"`
	Image     string `yaml:"image"`
	MagFilter string `yaml:"mag_filter"`
	MinFilter string `yaml:"min_filter"`
	WrapS     string `yaml:"wrap_s"`
	WrapT     string `yaml:"wrap_t"`
}

// ImageDecl declares an image loaded from disk. URI optionally fixes
// the output file name when images stay external.
type ImageDecl struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
	URI  string `yaml:"uri"`
}

// CameraDecl declares a camera with exactly one projection.
type CameraDecl struct {
	Name         string            `yaml:"name"`
	Perspective  *PerspectiveDecl  `yaml:"perspective"`
	Orthographic *OrthographicDecl `yaml:"orthographic"`
}

// PerspectiveDecl mirrors scene.Perspective.
type PerspectiveDecl struct {
	AspectRatio float32 `yaml:"aspect_ratio"`
	YFov        float32 `yaml:"yfov"`
	ZNear       float32 `yaml:"znear"`
	ZFar        float32 `yaml:"zfar"`
}

// OrthographicDecl mirrors scene.Orthographic.
type OrthographicDecl struct {
	XMag  float32 `yaml:"xmag"`
	YMag  float32 `yaml:"ymag"`
	ZNear float32 `yaml:"znear"`
	ZFar  float32 `yaml:"zfar"`
}

// Parse decodes manifest YAML. Unknown fields are rejected so typos in
// hand-written manifests fail instead of silently dropping data.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}
