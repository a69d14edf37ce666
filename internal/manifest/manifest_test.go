package manifest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/glbforge/pkg/export"
	"github.com/Faultbox/glbforge/pkg/scene"
)

const fullManifest = `
scene:
  name: demo
  nodes: [root]

nodes:
  - name: root
    translation: [1, 2, 3]
    mesh: quad
    children: [eye]
  - name: eye
    camera: main

meshes:
  - name: quad
    primitives:
      - material: wood
        positions: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
        texcoords: [[0, 0], [1, 0], [1, 1], [0, 1]]
        indices: [0, 1, 2, 0, 2, 3]

materials:
  - name: wood
    base_color: [0.8, 0.7, 0.6, 1]
    roughness: 0.9
    base_color_texture: wood_tex
    alpha_mode: mask
    alpha_cutoff: 0.4

textures:
  - name: wood_tex
    image: wood
    min_filter: linear_mipmap_linear
    wrap_s: clamp_to_edge

images:
  - name: wood
    file: wood.png
    uri: textures/wood.png

cameras:
  - name: main
    perspective:
      yfov: 0.8
      znear: 0.1
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(fullManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if m.Scene.Name != "demo" {
		t.Errorf("scene name = %q, want demo", m.Scene.Name)
	}
	if len(m.Nodes) != 2 || len(m.Meshes) != 1 || len(m.Materials) != 1 {
		t.Errorf("got %d nodes, %d meshes, %d materials", len(m.Nodes), len(m.Meshes), len(m.Materials))
	}
	if m.Nodes[0].Mesh != "quad" {
		t.Errorf("node mesh ref = %q, want quad", m.Nodes[0].Mesh)
	}
	if m.Materials[0].Roughness == nil || *m.Materials[0].Roughness != 0.9 {
		t.Errorf("roughness = %v, want 0.9", m.Materials[0].Roughness)
	}
	if m.Materials[0].Metallic != nil {
		t.Error("absent metallic decoded as set")
	}
	if got := m.Meshes[0].Primitives[0].Indices; len(got) != 6 {
		t.Errorf("indices = %v, want 6 entries", got)
	}
}

func TestParse_UnknownField(t *testing.T) {
	bad := `
meshes:
  - name: quad
    primitives:
      - positons: [[0, 0, 0]]
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("Parse accepted a misspelled field")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("nodes: {not: a list}")); err == nil {
		t.Error("Parse accepted mistyped YAML")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.yaml")
	if err := os.WriteFile(path, []byte(fullManifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Scene.Name != "demo" {
		t.Errorf("scene name = %q, want demo", m.Scene.Name)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/scene.yaml"); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestBuild(t *testing.T) {
	tmpDir := t.TempDir()
	writePNG(t, filepath.Join(tmpDir, "wood.png"))

	m, err := Parse([]byte(fullManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sc, err := m.Build(tmpDir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if sc.Name != "demo" {
		t.Errorf("scene name = %q, want demo", sc.Name)
	}
	if len(sc.Nodes) != 1 {
		t.Fatalf("root count = %d, want 1", len(sc.Nodes))
	}
	root := sc.Nodes[0]
	if root.Translation != [3]float32{1, 2, 3} {
		t.Errorf("root translation = %v, want [1 2 3]", root.Translation)
	}
	if root.Mesh == nil || root.Mesh.Name != "quad" {
		t.Fatal("root mesh did not resolve to quad")
	}

	prim := root.Mesh.Primitives[0]
	if len(prim.Positions) != 4 || len(prim.TexCoords) != 4 {
		t.Errorf("got %d positions, %d texcoords, want 4 each", len(prim.Positions), len(prim.TexCoords))
	}
	if prim.Positions[2] != [3]float32{1, 1, 0} {
		t.Errorf("position 2 = %v, want [1 1 0]", prim.Positions[2])
	}

	mat := prim.Material
	if mat == nil || mat.Name != "wood" {
		t.Fatal("primitive material did not resolve to wood")
	}
	if mat.BaseColor == nil || *mat.BaseColor != [4]float32{0.8, 0.7, 0.6, 1} {
		t.Errorf("base color = %v", mat.BaseColor)
	}
	if mat.AlphaMode != scene.Mask || mat.AlphaCutoff != 0.4 {
		t.Errorf("alpha = %v cutoff %g, want mask 0.4", mat.AlphaMode, mat.AlphaCutoff)
	}

	tex := mat.BaseColorTexture
	if tex == nil {
		t.Fatal("base color texture did not resolve")
	}
	if tex.Sampler.MinFilter != scene.FilterLinearMipmapLinear {
		t.Errorf("min filter = %v, want linear_mipmap_linear", tex.Sampler.MinFilter)
	}
	if tex.Sampler.WrapS != scene.WrapClampToEdge {
		t.Errorf("wrap s = %v, want clamp_to_edge", tex.Sampler.WrapS)
	}
	if tex.Sampler.MagFilter != scene.FilterAuto || tex.Sampler.WrapT != scene.WrapRepeat {
		t.Error("unset sampler fields did not stay at defaults")
	}
	if tex.Image == nil || tex.Image.MIME != "image/png" {
		t.Fatalf("image did not load as PNG: %+v", tex.Image)
	}
	if tex.Image.URI != "textures/wood.png" {
		t.Errorf("image URI = %q, want textures/wood.png", tex.Image.URI)
	}

	if len(root.Children) != 1 || root.Children[0].Camera == nil {
		t.Fatal("child node with camera did not resolve")
	}
	cam := root.Children[0].Camera
	if cam.Perspective == nil || cam.Perspective.YFov != 0.8 {
		t.Errorf("camera = %+v, want perspective yfov 0.8", cam)
	}
}

func TestBuild_ExportsCleanly(t *testing.T) {
	tmpDir := t.TempDir()
	writePNG(t, filepath.Join(tmpDir, "wood.png"))

	m, err := Parse([]byte(fullManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sc, err := m.Build(tmpDir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := export.Export(sc, export.Options{Binary: true, EmbedImages: true})
	if err != nil {
		t.Fatalf("Export of built scene failed: %v", err)
	}
	if len(res.Doc.Meshes) != 1 || len(res.Doc.Cameras) != 1 || len(res.Doc.Textures) != 1 {
		t.Errorf("exported %d meshes, %d cameras, %d textures, want 1 each",
			len(res.Doc.Meshes), len(res.Doc.Cameras), len(res.Doc.Textures))
	}
}

func TestBuild_SharedMeshResolvesOnce(t *testing.T) {
	src := `
scene:
  nodes: [a, b]
nodes:
  - name: a
    mesh: quad
  - name: b
    mesh: quad
meshes:
  - name: quad
    primitives:
      - positions: [[0, 0, 0]]
`
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sc, err := m.Build(t.TempDir())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if sc.Nodes[0].Mesh != sc.Nodes[1].Mesh {
		t.Error("two references to one mesh resolved to different objects")
	}
}

func TestBuild_TGANormalized(t *testing.T) {
	tmpDir := t.TempDir()
	writeTGA(t, filepath.Join(tmpDir, "sprite.tga"))

	src := `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: sprite
        positions: [[0, 0, 0]]
materials:
  - name: sprite
    base_color_texture: sprite_tex
textures:
  - name: sprite_tex
    image: sprite
images:
  - name: sprite
    file: sprite.tga
`
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sc, err := m.Build(tmpDir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	img := sc.Nodes[0].Mesh.Primitives[0].Material.BaseColorTexture.Image
	if img.MIME != "image/png" {
		t.Errorf("TGA payload normalized to %q, want image/png", img.MIME)
	}
	if !bytes.HasPrefix(img.Data, []byte("\x89PNG")) {
		t.Error("normalized payload is not PNG encoded")
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown root node",
			src: `
scene:
  nodes: [ghost]
`,
			want: `unknown node "ghost"`,
		},
		{
			name: "unknown mesh",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: ghost
`,
			want: `unknown mesh "ghost"`,
		},
		{
			name: "unknown material",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: ghost
        positions: [[0, 0, 0]]
`,
			want: `unknown material "ghost"`,
		},
		{
			name: "unknown texture",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: bare
        positions: [[0, 0, 0]]
materials:
  - name: bare
    base_color_texture: ghost
`,
			want: `unknown texture "ghost"`,
		},
		{
			name: "unknown image",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: bare
        positions: [[0, 0, 0]]
materials:
  - name: bare
    base_color_texture: tex
textures:
  - name: tex
    image: ghost
`,
			want: `unknown image "ghost"`,
		},
		{
			name: "unknown camera",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    camera: ghost
`,
			want: `unknown camera "ghost"`,
		},
		{
			name: "duplicate node name",
			src: `
nodes:
  - name: twin
  - name: twin
`,
			want: `duplicate node name "twin"`,
		},
		{
			name: "duplicate material name",
			src: `
materials:
  - name: twin
  - name: twin
`,
			want: `duplicate material name "twin"`,
		},
		{
			name: "unnamed mesh",
			src: `
meshes:
  - primitives:
      - positions: [[0, 0, 0]]
`,
			want: "has no name",
		},
		{
			name: "node cycle",
			src: `
scene:
  nodes: [a]
nodes:
  - name: a
    children: [b]
  - name: b
    children: [a]
`,
			want: "node cycle",
		},
		{
			name: "bad translation length",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    translation: [1, 2]
`,
			want: "expected 3 components",
		},
		{
			name: "bad matrix length",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    matrix: [1, 0, 0, 0, 1, 0, 0, 0, 1]
`,
			want: "expected 16 components",
		},
		{
			name: "bad position row",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - positions: [[0, 0]]
`,
			want: "expected 3 components",
		},
		{
			name: "color out of range",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - positions: [[0, 0, 0]]
        colors: [[300, 0, 0, 255]]
`,
			want: "out of byte range",
		},
		{
			name: "bad primitive mode",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - mode: hexagons
        positions: [[0, 0, 0]]
`,
			want: "unknown primitive mode",
		},
		{
			name: "texture without image",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: bare
        positions: [[0, 0, 0]]
materials:
  - name: bare
    base_color_texture: tex
textures:
  - name: tex
`,
			want: "has no image",
		},
		{
			name: "image without file",
			src: `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: bare
        positions: [[0, 0, 0]]
materials:
  - name: bare
    base_color_texture: tex
textures:
  - name: tex
    image: img
images:
  - name: img
`,
			want: "has no file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			_, err = m.Build(t.TempDir())
			if err == nil {
				t.Fatal("Build succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestBuild_MissingImageFile(t *testing.T) {
	src := `
scene:
  nodes: [root]
nodes:
  - name: root
    mesh: quad
meshes:
  - name: quad
    primitives:
      - material: bare
        positions: [[0, 0, 0]]
materials:
  - name: bare
    base_color_texture: tex
textures:
  - name: tex
    image: img
images:
  - name: img
    file: gone.png
`
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := m.Build(t.TempDir()); err == nil {
		t.Error("Build succeeded with a missing image file")
	}
}

// Helper functions for creating test data

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 120, B: 40, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 40, G: 120, B: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture PNG: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture PNG: %v", err)
	}
}

func writeTGA(t *testing.T, path string) {
	t.Helper()
	// Uncompressed true-color 1x1, 24-bit, top-to-bottom.
	header := make([]byte, 18)
	header[2] = 2
	header[12] = 1 // width
	header[14] = 1 // height
	header[16] = 24
	header[17] = 0x20
	data := append(header, 0x10, 0x20, 0x30) // BGR
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture TGA: %v", err)
	}
}
