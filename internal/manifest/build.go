package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/glbforge/pkg/scene"
	"github.com/Faultbox/glbforge/pkg/texture"
)

// Build resolves the manifest into a scene graph. Image files load
// relative to baseDir and are normalized into formats glTF accepts.
func (m *Manifest) Build(baseDir string) (*scene.Scene, error) {
	b := &builder{
		baseDir:   baseDir,
		nodes:     map[string]*scene.Node{},
		meshes:    map[string]*scene.Mesh{},
		materials: map[string]*scene.Material{},
		textures:  map[string]*scene.Texture{},
		images:    map[string]*scene.Image{},
		cameras:   map[string]*scene.Camera{},
		building:  map[string]bool{},
	}
	if err := b.index(m); err != nil {
		return nil, err
	}

	sc := &scene.Scene{Name: m.Scene.Name}
	for _, name := range m.Scene.Nodes {
		n, err := b.node(name)
		if err != nil {
			return nil, err
		}
		sc.Nodes = append(sc.Nodes, n)
	}
	return sc, nil
}

// builder memoizes resolved declarations so repeated references share
// one object and the export session deduplicates them by identity.
type builder struct {
	baseDir string

	nodeDecls     map[string]*NodeDecl
	meshDecls     map[string]*MeshDecl
	materialDecls map[string]*MaterialDecl
	textureDecls  map[string]*TextureDecl
	imageDecls    map[string]*ImageDecl
	cameraDecls   map[string]*CameraDecl

	nodes     map[string]*scene.Node
	meshes    map[string]*scene.Mesh
	materials map[string]*scene.Material
	textures  map[string]*scene.Texture
	images    map[string]*scene.Image
	cameras   map[string]*scene.Camera

	building map[string]bool
}

func (b *builder) index(m *Manifest) error {
	b.nodeDecls = map[string]*NodeDecl{}
	for i := range m.Nodes {
		d := &m.Nodes[i]
		if d.Name == "" {
			return fmt.Errorf("node declaration %d has no name", i)
		}
		if _, dup := b.nodeDecls[d.Name]; dup {
			return fmt.Errorf("duplicate node name %q", d.Name)
		}
		b.nodeDecls[d.Name] = d
	}
	b.meshDecls = map[string]*MeshDecl{}
	for i := range m.Meshes {
		d := &m.Meshes[i]
		if d.Name == "" {
			return fmt.Errorf("mesh declaration %d has no name", i)
		}
		if _, dup := b.meshDecls[d.Name]; dup {
			return fmt.Errorf("duplicate mesh name %q", d.Name)
		}
		b.meshDecls[d.Name] = d
	}
	b.materialDecls = map[string]*MaterialDecl{}
	for i := range m.Materials {
		d := &m.Materials[i]
		if d.Name == "" {
			return fmt.Errorf("material declaration %d has no name", i)
		}
		if _, dup := b.materialDecls[d.Name]; dup {
			return fmt.Errorf("duplicate material name %q", d.Name)
		}
		b.materialDecls[d.Name] = d
	}
	b.textureDecls = map[string]*TextureDecl{}
	for i := range m.Textures {
		d := &m.Textures[i]
		if d.Name == "" {
			return fmt.Errorf("texture declaration %d has no name", i)
		}
		if _, dup := b.textureDecls[d.Name]; dup {
			return fmt.Errorf("duplicate texture name %q", d.Name)
		}
		b.textureDecls[d.Name] = d
	}
	b.imageDecls = map[string]*ImageDecl{}
	for i := range m.Images {
		d := &m.Images[i]
		if d.Name == "" {
			return fmt.Errorf("image declaration %d has no name", i)
		}
		if _, dup := b.imageDecls[d.Name]; dup {
			return fmt.Errorf("duplicate image name %q", d.Name)
		}
		b.imageDecls[d.Name] = d
	}
	b.cameraDecls = map[string]*CameraDecl{}
	for i := range m.Cameras {
		d := &m.Cameras[i]
		if d.Name == "" {
			return fmt.Errorf("camera declaration %d has no name", i)
		}
		if _, dup := b.cameraDecls[d.Name]; dup {
			return fmt.Errorf("duplicate camera name %q", d.Name)
		}
		b.cameraDecls[d.Name] = d
	}
	return nil
}

func (b *builder) node(name string) (*scene.Node, error) {
	if n, ok := b.nodes[name]; ok {
		return n, nil
	}
	d, ok := b.nodeDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", name)
	}
	if b.building[name] {
		return nil, fmt.Errorf("node cycle through %q", name)
	}
	b.building[name] = true
	defer delete(b.building, name)

	n := &scene.Node{Name: name}
	if len(d.Matrix) > 0 {
		m, err := mat4(d.Matrix)
		if err != nil {
			return nil, fmt.Errorf("node %q matrix: %w", name, err)
		}
		n.Matrix = &m
	}
	if len(d.Translation) > 0 {
		v, err := vec3(d.Translation)
		if err != nil {
			return nil, fmt.Errorf("node %q translation: %w", name, err)
		}
		n.Translation = v
	}
	if len(d.Rotation) > 0 {
		v, err := vec4(d.Rotation)
		if err != nil {
			return nil, fmt.Errorf("node %q rotation: %w", name, err)
		}
		n.Rotation = v
	}
	if len(d.Scale) > 0 {
		v, err := vec3(d.Scale)
		if err != nil {
			return nil, fmt.Errorf("node %q scale: %w", name, err)
		}
		n.Scale = v
	}
	if d.Mesh != "" {
		mesh, err := b.mesh(d.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		n.Mesh = mesh
	}
	if d.Camera != "" {
		cam, err := b.camera(d.Camera)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		n.Camera = cam
	}
	for _, c := range d.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	b.nodes[name] = n
	return n, nil
}

func (b *builder) mesh(name string) (*scene.Mesh, error) {
	if m, ok := b.meshes[name]; ok {
		return m, nil
	}
	d, ok := b.meshDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown mesh %q", name)
	}

	m := &scene.Mesh{Name: name}
	for i := range d.Primitives {
		p, err := b.primitive(&d.Primitives[i])
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, i, err)
		}
		m.Primitives = append(m.Primitives, p)
	}

	b.meshes[name] = m
	return m, nil
}

func (b *builder) primitive(d *PrimitiveDecl) (*scene.Primitive, error) {
	p := &scene.Primitive{Indices: d.Indices}
	var err error

	if d.Mode != "" {
		if p.Mode, err = scene.ParseMode(d.Mode); err != nil {
			return nil, err
		}
	}
	if p.Positions, err = vec3Rows(d.Positions); err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	if p.Normals, err = vec3Rows(d.Normals); err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}
	if p.Tangents, err = vec4Rows(d.Tangents); err != nil {
		return nil, fmt.Errorf("tangents: %w", err)
	}
	if p.TexCoords, err = vec2Rows(d.TexCoords); err != nil {
		return nil, fmt.Errorf("texcoords: %w", err)
	}
	if p.Colors, err = colorRows(d.Colors); err != nil {
		return nil, fmt.Errorf("colors: %w", err)
	}
	if p.Joints, err = jointRows(d.Joints); err != nil {
		return nil, fmt.Errorf("joints: %w", err)
	}
	if p.Weights, err = vec4Rows(d.Weights); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}

	if d.Material != "" {
		if p.Material, err = b.material(d.Material); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (b *builder) material(name string) (*scene.Material, error) {
	if m, ok := b.materials[name]; ok {
		return m, nil
	}
	d, ok := b.materialDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}

	m := &scene.Material{
		Name:              name,
		Metallic:          d.Metallic,
		Roughness:         d.Roughness,
		NormalScale:       d.NormalScale,
		OcclusionStrength: d.OcclusionStrength,
		AlphaCutoff:       d.AlphaCutoff,
		DoubleSided:       d.DoubleSided,
	}
	if len(d.BaseColor) > 0 {
		c, err := vec4(d.BaseColor)
		if err != nil {
			return nil, fmt.Errorf("material %q base color: %w", name, err)
		}
		m.BaseColor = &c
	}
	if len(d.EmissiveFactor) > 0 {
		e, err := vec3(d.EmissiveFactor)
		if err != nil {
			return nil, fmt.Errorf("material %q emissive factor: %w", name, err)
		}
		m.EmissiveFactor = e
	}
	if d.AlphaMode != "" {
		a, err := scene.ParseAlphaMode(d.AlphaMode)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		m.AlphaMode = a
	}

	slots := []struct {
		ref  string
		dst  **scene.Texture
		what string
	}{
		{d.BaseColorTexture, &m.BaseColorTexture, "base color texture"},
		{d.MetallicRoughnessTexture, &m.MetallicRoughnessTexture, "metallic-roughness texture"},
		{d.NormalTexture, &m.NormalTexture, "normal texture"},
		{d.OcclusionTexture, &m.OcclusionTexture, "occlusion texture"},
		{d.EmissiveTexture, &m.EmissiveTexture, "emissive texture"},
	}
	for _, s := range slots {
		if s.ref == "" {
			continue
		}
		tex, err := b.texture(s.ref)
		if err != nil {
			return nil, fmt.Errorf("material %q %s: %w", name, s.what, err)
		}
		*s.dst = tex
	}

	b.materials[name] = m
	return m, nil
}

func (b *builder) texture(name string) (*scene.Texture, error) {
	if t, ok := b.textures[name]; ok {
		return t, nil
	}
	d, ok := b.textureDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown texture %q", name)
	}
	if d.Image == "" {
		return nil, fmt.Errorf("texture %q has no image", name)
	}
	img, err := b.image(d.Image)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}

	t := &scene.Texture{Name: name, Image: img}
	if d.MagFilter != "" {
		if t.Sampler.MagFilter, err = scene.ParseFilter(d.MagFilter); err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
	}
	if d.MinFilter != "" {
		if t.Sampler.MinFilter, err = scene.ParseFilter(d.MinFilter); err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
	}
	if d.WrapS != "" {
		if t.Sampler.WrapS, err = scene.ParseWrap(d.WrapS); err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
	}
	if d.WrapT != "" {
		if t.Sampler.WrapT, err = scene.ParseWrap(d.WrapT); err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
	}

	b.textures[name] = t
	return t, nil
}

func (b *builder) image(name string) (*scene.Image, error) {
	if img, ok := b.images[name]; ok {
		return img, nil
	}
	d, ok := b.imageDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown image %q", name)
	}
	if d.File == "" {
		return nil, fmt.Errorf("image %q has no file", name)
	}

	raw, err := os.ReadFile(filepath.Join(b.baseDir, filepath.FromSlash(d.File)))
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", name, err)
	}
	data, mime, err := texture.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", name, err)
	}

	img := &scene.Image{Name: name, URI: d.URI, MIME: mime, Data: data}
	b.images[name] = img
	return img, nil
}

func (b *builder) camera(name string) (*scene.Camera, error) {
	if c, ok := b.cameras[name]; ok {
		return c, nil
	}
	d, ok := b.cameraDecls[name]
	if !ok {
		return nil, fmt.Errorf("unknown camera %q", name)
	}

	c := &scene.Camera{Name: name}
	if d.Perspective != nil {
		c.Perspective = &scene.Perspective{
			AspectRatio: d.Perspective.AspectRatio,
			YFov:        d.Perspective.YFov,
			ZNear:       d.Perspective.ZNear,
			ZFar:        d.Perspective.ZFar,
		}
	}
	if d.Orthographic != nil {
		c.Orthographic = &scene.Orthographic{
			XMag:  d.Orthographic.XMag,
			YMag:  d.Orthographic.YMag,
			ZNear: d.Orthographic.ZNear,
			ZFar:  d.Orthographic.ZFar,
		}
	}

	b.cameras[name] = c
	return c, nil
}

func vec2(v []float32) ([2]float32, error) {
	if len(v) != 2 {
		return [2]float32{}, fmt.Errorf("expected 2 components, got %d", len(v))
	}
	return [2]float32{v[0], v[1]}, nil
}

func vec3(v []float32) ([3]float32, error) {
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return [3]float32{v[0], v[1], v[2]}, nil
}

func vec4(v []float32) ([4]float32, error) {
	if len(v) != 4 {
		return [4]float32{}, fmt.Errorf("expected 4 components, got %d", len(v))
	}
	return [4]float32{v[0], v[1], v[2], v[3]}, nil
}

func mat4(v []float32) ([16]float32, error) {
	var m [16]float32
	if len(v) != 16 {
		return m, fmt.Errorf("expected 16 components, got %d", len(v))
	}
	copy(m[:], v)
	return m, nil
}

func vec2Rows(rows [][]float32) ([][2]float32, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][2]float32, len(rows))
	for i, r := range rows {
		v, err := vec2(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func vec3Rows(rows [][]float32) ([][3]float32, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][3]float32, len(rows))
	for i, r := range rows {
		v, err := vec3(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func vec4Rows(rows [][]float32) ([][4]float32, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][4]float32, len(rows))
	for i, r := range rows {
		v, err := vec4(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func colorRows(rows [][]int) ([][4]uint8, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][4]uint8, len(rows))
	for i, r := range rows {
		if len(r) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 components, got %d", i, len(r))
		}
		for j, c := range r {
			if c < 0 || c > 255 {
				return nil, fmt.Errorf("row %d: component %d out of byte range", i, c)
			}
			out[i][j] = uint8(c)
		}
	}
	return out, nil
}

func jointRows(rows [][]int) ([][4]uint16, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([][4]uint16, len(rows))
	for i, r := range rows {
		if len(r) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 components, got %d", i, len(r))
		}
		for j, c := range r {
			if c < 0 || c > 0xFFFF {
				return nil, fmt.Errorf("row %d: joint index %d out of range", i, c)
			}
			out[i][j] = uint16(c)
		}
	}
	return out, nil
}
