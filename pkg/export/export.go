package export

import (
	"errors"
	"fmt"

	"github.com/Faultbox/glbforge/pkg/gltf"
	"github.com/Faultbox/glbforge/pkg/scene"
	"github.com/Faultbox/glbforge/pkg/texture"
)

// Export serializes sc into a finalized result in one call. It is the
// whole-scene convenience over NewSession, AddScene and Finalize.
func Export(sc *scene.Scene, opts Options) (*Result, error) {
	s := NewSession(opts)
	if err := s.AddScene(sc); err != nil {
		return nil, err
	}
	return s.Finalize()
}

// AddScene registers sc and everything reachable from it. Objects
// already registered by an earlier call keep their indices, so scenes
// may share nodes, meshes and materials freely. On error the session
// is left half built and only fit for discarding.
func (s *Session) AddScene(sc *scene.Scene) error {
	if s.finalized {
		return ErrSessionFinalized
	}
	if sc == nil {
		return errors.New("nil scene")
	}
	_, err := s.addScene(sc)
	return err
}

func (s *Session) addScene(sc *scene.Scene) (int, error) {
	if idx, ok := s.registry.lookup(kindScene, sc); ok {
		return idx, nil
	}
	def := &gltf.Scene{Name: sc.Name}
	idx := s.registry.register(kindScene, sc, func() int {
		s.doc.Scenes = append(s.doc.Scenes, def)
		return len(s.doc.Scenes) - 1
	})
	if s.doc.Scene == nil {
		s.doc.Scene = gltf.Index(idx)
	}

	for _, n := range sc.Nodes {
		ni, err := s.addNode(n)
		if err != nil {
			return 0, err
		}
		def.Nodes = append(def.Nodes, ni)
	}

	// Skins resolve after the node walk so that joints anywhere in the
	// graph already hold their indices.
	if err := s.resolveSkins(); err != nil {
		return 0, err
	}
	return idx, nil
}

type pendingSkin struct {
	node *gltf.Node
	skin *scene.Skin
}

func (s *Session) resolveSkins() error {
	for len(s.pendingSkins) > 0 {
		pending := s.pendingSkins
		s.pendingSkins = nil
		for _, p := range pending {
			idx, err := s.addSkin(p.skin)
			if err != nil {
				return err
			}
			p.node.Skin = gltf.Index(idx)
		}
	}
	return nil
}

// addNode registers n depth first: the node claims its index before
// its children, so parents always precede their subtrees.
func (s *Session) addNode(n *scene.Node) (int, error) {
	if n == nil {
		return 0, errors.New("nil node")
	}
	if idx, ok := s.registry.lookup(kindNode, n); ok {
		return idx, nil
	}
	def := &gltf.Node{Name: n.Name}
	idx := s.registry.register(kindNode, n, func() int {
		s.doc.Nodes = append(s.doc.Nodes, def)
		return len(s.doc.Nodes) - 1
	})
	applyTransform(def, n)

	if n.Mesh != nil {
		mi, err := s.addMesh(n.Mesh)
		if err != nil {
			return 0, err
		}
		def.Mesh = gltf.Index(mi)
	}
	if n.Camera != nil {
		ci, err := s.addCamera(n.Camera)
		if err != nil {
			return 0, err
		}
		def.Camera = gltf.Index(ci)
	}
	if n.Skin != nil {
		if n.Mesh == nil {
			return 0, fmt.Errorf("node %q has a skin but no mesh", n.Name)
		}
		s.pendingSkins = append(s.pendingSkins, pendingSkin{node: def, skin: n.Skin})
	}

	for _, c := range n.Children {
		ci, err := s.addNode(c)
		if err != nil {
			return 0, err
		}
		def.Children = append(def.Children, ci)
	}
	return idx, nil
}

var identityRotation = [4]float32{0, 0, 0, 1}

// applyTransform copies the transform, dropping every component at its
// default. A matrix replaces TRS entirely.
func applyTransform(def *gltf.Node, n *scene.Node) {
	if n.Matrix != nil {
		m := *n.Matrix
		def.Matrix = &m
		return
	}
	if n.Translation != [3]float32{} {
		t := n.Translation
		def.Translation = &t
	}
	if n.Rotation != [4]float32{} && n.Rotation != identityRotation {
		r := n.Rotation
		def.Rotation = &r
	}
	if n.Scale != [3]float32{} && n.Scale != [3]float32{1, 1, 1} {
		sc := n.Scale
		def.Scale = &sc
	}
}

func (s *Session) addMesh(m *scene.Mesh) (int, error) {
	if idx, ok := s.registry.lookup(kindMesh, m); ok {
		return idx, nil
	}
	if len(m.Primitives) == 0 {
		return 0, fmt.Errorf("mesh %q has no primitives", m.Name)
	}
	def := &gltf.Mesh{Name: m.Name}
	idx := s.registry.register(kindMesh, m, func() int {
		s.doc.Meshes = append(s.doc.Meshes, def)
		return len(s.doc.Meshes) - 1
	})
	for i, p := range m.Primitives {
		prim, err := s.addPrimitive(p)
		if err != nil {
			return 0, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		def.Primitives = append(def.Primitives, prim)
	}
	return idx, nil
}

func (s *Session) addPrimitive(p *scene.Primitive) (*gltf.Primitive, error) {
	count := len(p.Positions)
	if count == 0 {
		return nil, errors.New("no positions")
	}
	for _, c := range []struct {
		what string
		got  int
	}{
		{"normals", len(p.Normals)},
		{"tangents", len(p.Tangents)},
		{"texture coordinates", len(p.TexCoords)},
		{"colors", len(p.Colors)},
		{"joint sets", len(p.Joints)},
		{"weight sets", len(p.Weights)},
	} {
		if c.got != 0 && c.got != count {
			return nil, fmt.Errorf("%d %s for %d positions", c.got, c.what, count)
		}
	}
	if (len(p.Joints) == 0) != (len(p.Weights) == 0) {
		return nil, errors.New("joints and weights must be present together")
	}
	if p.Mode < scene.Triangles || p.Mode > scene.TriangleFan {
		return nil, fmt.Errorf("unknown primitive mode %d", int(p.Mode))
	}

	prim := &gltf.Primitive{Attributes: make(map[string]int)}

	pos := s.addAccessor(packVec3(p.Positions), gltf.ComponentFloat, gltf.TypeVec3, count, gltf.TargetArrayBuffer)
	s.doc.Accessors[pos].Min, s.doc.Accessors[pos].Max = vec3Bounds(p.Positions)
	prim.Attributes[gltf.AttrPosition] = pos

	if len(p.Normals) > 0 {
		prim.Attributes[gltf.AttrNormal] = s.addAccessor(
			packVec3(p.Normals), gltf.ComponentFloat, gltf.TypeVec3, count, gltf.TargetArrayBuffer)
	}
	if len(p.Tangents) > 0 {
		prim.Attributes[gltf.AttrTangent] = s.addAccessor(
			packVec4(p.Tangents), gltf.ComponentFloat, gltf.TypeVec4, count, gltf.TargetArrayBuffer)
	}
	if len(p.TexCoords) > 0 {
		prim.Attributes[gltf.AttrTexCoord0] = s.addAccessor(
			packVec2(p.TexCoords), gltf.ComponentFloat, gltf.TypeVec2, count, gltf.TargetArrayBuffer)
	}
	if len(p.Colors) > 0 {
		ci := s.addAccessor(packVec4U8(p.Colors), gltf.ComponentUnsignedByte, gltf.TypeVec4, count, gltf.TargetArrayBuffer)
		s.doc.Accessors[ci].Normalized = true
		prim.Attributes[gltf.AttrColor0] = ci
	}
	if len(p.Joints) > 0 {
		prim.Attributes[gltf.AttrJoints0] = s.addAccessor(
			packVec4U16(p.Joints), gltf.ComponentUnsignedShort, gltf.TypeVec4, count, gltf.TargetArrayBuffer)
		prim.Attributes[gltf.AttrWeights0] = s.addAccessor(
			packVec4(p.Weights), gltf.ComponentFloat, gltf.TypeVec4, count, gltf.TargetArrayBuffer)
	}

	if len(p.Indices) > 0 {
		for i, ix := range p.Indices {
			if int(ix) >= count {
				return nil, fmt.Errorf("index %d at position %d exceeds vertex count %d", ix, i, count)
			}
		}
		// Indices compact to 16 bits whenever every vertex is reachable.
		var ii int
		if count <= 0xFFFF {
			ii = s.addAccessor(packIndicesU16(p.Indices), gltf.ComponentUnsignedShort, gltf.TypeScalar,
				len(p.Indices), gltf.TargetElementArrayBuffer)
		} else {
			ii = s.addAccessor(packIndicesU32(p.Indices), gltf.ComponentUnsignedInt, gltf.TypeScalar,
				len(p.Indices), gltf.TargetElementArrayBuffer)
		}
		prim.Indices = gltf.Index(ii)
	}

	if p.Material != nil {
		mi, err := s.addMaterial(p.Material)
		if err != nil {
			return nil, err
		}
		prim.Material = gltf.Index(mi)
	}
	if p.Mode != scene.Triangles {
		prim.Mode = gltf.Index(modeToGLTF(p.Mode))
	}
	return prim, nil
}

// addAccessor embeds payload behind a fresh buffer view and appends a
// typed accessor for it. Payloads are four-byte aligned first, keeping
// every accessor offset legal regardless of what preceded it.
func (s *Session) addAccessor(payload []byte, ct gltf.ComponentType, at gltf.AccessorType, count, target int) int {
	s.pad(4)
	view := s.embed(payload, target)
	s.doc.Accessors = append(s.doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(view),
		ComponentType: ct,
		Type:          at,
		Count:         count,
	})
	return len(s.doc.Accessors) - 1
}

func (s *Session) addMaterial(m *scene.Material) (int, error) {
	if idx, ok := s.registry.lookup(kindMaterial, m); ok {
		return idx, nil
	}
	def := &gltf.Material{Name: m.Name, DoubleSided: m.DoubleSided}

	pbr := &gltf.PBRMetallicRoughness{}
	hasPBR := false
	if m.BaseColor != nil {
		c := *m.BaseColor
		pbr.BaseColorFactor = &c
		hasPBR = true
	}
	if m.Metallic != nil {
		pbr.MetallicFactor = gltf.Float(*m.Metallic)
		hasPBR = true
	}
	if m.Roughness != nil {
		pbr.RoughnessFactor = gltf.Float(*m.Roughness)
		hasPBR = true
	}
	if m.BaseColorTexture != nil {
		ti, err := s.addTextureInfo(m.BaseColorTexture)
		if err != nil {
			return 0, fmt.Errorf("material %q base color: %w", m.Name, err)
		}
		pbr.BaseColorTexture = ti
		hasPBR = true
	}
	if m.MetallicRoughnessTexture != nil {
		ti, err := s.addTextureInfo(m.MetallicRoughnessTexture)
		if err != nil {
			return 0, fmt.Errorf("material %q metallic-roughness: %w", m.Name, err)
		}
		pbr.MetallicRoughnessTexture = ti
		hasPBR = true
	}
	if hasPBR {
		def.PBRMetallicRoughness = pbr
	}

	if m.NormalTexture != nil {
		ti, err := s.addTextureInfo(m.NormalTexture)
		if err != nil {
			return 0, fmt.Errorf("material %q normal map: %w", m.Name, err)
		}
		nt := &gltf.NormalTextureInfo{TextureInfo: *ti}
		if m.NormalScale != 0 && m.NormalScale != 1 {
			nt.Scale = gltf.Float(m.NormalScale)
		}
		def.NormalTexture = nt
	}
	if m.OcclusionTexture != nil {
		ti, err := s.addTextureInfo(m.OcclusionTexture)
		if err != nil {
			return 0, fmt.Errorf("material %q occlusion map: %w", m.Name, err)
		}
		ot := &gltf.OcclusionTextureInfo{TextureInfo: *ti}
		if m.OcclusionStrength != 0 && m.OcclusionStrength != 1 {
			ot.Strength = gltf.Float(m.OcclusionStrength)
		}
		def.OcclusionTexture = ot
	}
	if m.EmissiveTexture != nil {
		ti, err := s.addTextureInfo(m.EmissiveTexture)
		if err != nil {
			return 0, fmt.Errorf("material %q emissive map: %w", m.Name, err)
		}
		def.EmissiveTexture = ti
	}
	if m.EmissiveFactor != [3]float32{} {
		e := m.EmissiveFactor
		def.EmissiveFactor = &e
	}

	switch m.AlphaMode {
	case scene.Opaque:
	case scene.Mask:
		def.AlphaMode = gltf.AlphaMask
		if m.AlphaCutoff != 0 && m.AlphaCutoff != 0.5 {
			def.AlphaCutoff = gltf.Float(m.AlphaCutoff)
		}
	case scene.Blend:
		def.AlphaMode = gltf.AlphaBlend
	default:
		return 0, fmt.Errorf("material %q: unknown alpha mode %d", m.Name, int(m.AlphaMode))
	}

	idx := s.registry.register(kindMaterial, m, func() int {
		s.doc.Materials = append(s.doc.Materials, def)
		return len(s.doc.Materials) - 1
	})
	return idx, nil
}

func (s *Session) addTextureInfo(t *scene.Texture) (*gltf.TextureInfo, error) {
	ti, err := s.addTexture(t)
	if err != nil {
		return nil, err
	}
	return &gltf.TextureInfo{Index: ti}, nil
}

// addTexture interns the binding for t. Bindings are content keyed by
// the resolved (image, sampler) pair, so distinct Texture objects with
// identical content collapse into one definition.
func (s *Session) addTexture(t *scene.Texture) (int, error) {
	if t.Image == nil {
		return 0, fmt.Errorf("texture %q has no image", t.Name)
	}
	src, err := s.addImage(t.Image)
	if err != nil {
		return 0, err
	}
	sampler := s.addSampler(t.Sampler)
	idx := s.textures.intern(textureKey(src, sampler), func() int {
		s.doc.Textures = append(s.doc.Textures, &gltf.Texture{
			Name:    t.Name,
			Source:  gltf.Index(src),
			Sampler: sampler,
		})
		return len(s.doc.Textures) - 1
	})
	return idx, nil
}

// addSampler interns sampler settings, normalizing defaults away. The
// all-default record yields no definition: its textures simply omit
// their sampler reference.
func (s *Session) addSampler(set scene.Sampler) *int {
	rec := makeSamplerRecord(set)
	if rec.isZero() {
		return nil
	}
	idx := s.samplers.intern(rec.key(), func() int {
		s.doc.Samplers = append(s.doc.Samplers, &gltf.Sampler{
			MagFilter: rec.magFilter,
			MinFilter: rec.minFilter,
			WrapS:     rec.wrapS,
			WrapT:     rec.wrapT,
		})
		return len(s.doc.Samplers) - 1
	})
	return gltf.Index(idx)
}

// addImage routes the payload of img and appends its definition: into
// the shared buffer behind a view when embedding, otherwise into the
// external resource table under an allocated name.
func (s *Session) addImage(img *scene.Image) (int, error) {
	if idx, ok := s.registry.lookup(kindImage, img); ok {
		return idx, nil
	}
	if len(img.Data) == 0 {
		return 0, fmt.Errorf("image %q has no payload", img.Name)
	}
	mime := img.MIME
	if mime == "" {
		mime = texture.SniffMIME(img.Data)
	}

	def := &gltf.Image{Name: img.Name, MimeType: mime}
	if s.opts.EmbedImages {
		if mime != gltf.MimePNG && mime != gltf.MimeJPEG {
			return 0, fmt.Errorf("image %q: payload type %q cannot be embedded", img.Name, mime)
		}
		s.pad(4)
		def.BufferView = gltf.Index(s.embed(img.Data, 0))
	} else {
		name := s.imageURIs.nameFor(img.URI, texture.ExtensionForMIME(mime))
		if err := s.storeExternal(name, img.Data); err != nil {
			return 0, fmt.Errorf("image %q: %w", img.Name, err)
		}
		def.URI = name
	}

	idx := s.registry.register(kindImage, img, func() int {
		s.doc.Images = append(s.doc.Images, def)
		return len(s.doc.Images) - 1
	})
	return idx, nil
}

func (s *Session) addSkin(sk *scene.Skin) (int, error) {
	if idx, ok := s.registry.lookup(kindSkin, sk); ok {
		return idx, nil
	}
	if len(sk.Joints) == 0 {
		return 0, fmt.Errorf("skin %q has no joints", sk.Name)
	}
	if n := len(sk.InverseBindMatrices); n != 0 && n != len(sk.Joints) {
		return 0, fmt.Errorf("skin %q has %d inverse bind matrices for %d joints", sk.Name, n, len(sk.Joints))
	}

	def := &gltf.Skin{Name: sk.Name}
	idx := s.registry.register(kindSkin, sk, func() int {
		s.doc.Skins = append(s.doc.Skins, def)
		return len(s.doc.Skins) - 1
	})

	for _, j := range sk.Joints {
		ji, err := s.addNode(j)
		if err != nil {
			return 0, err
		}
		def.Joints = append(def.Joints, ji)
	}
	if sk.Skeleton != nil {
		si, err := s.addNode(sk.Skeleton)
		if err != nil {
			return 0, err
		}
		def.Skeleton = gltf.Index(si)
	}
	if len(sk.InverseBindMatrices) > 0 {
		ai := s.addAccessor(packMat4(sk.InverseBindMatrices), gltf.ComponentFloat, gltf.TypeMat4,
			len(sk.InverseBindMatrices), 0)
		def.InverseBindMatrices = gltf.Index(ai)
	}
	return idx, nil
}

func (s *Session) addCamera(c *scene.Camera) (int, error) {
	if idx, ok := s.registry.lookup(kindCamera, c); ok {
		return idx, nil
	}
	def := &gltf.Camera{Name: c.Name}
	switch {
	case c.Perspective != nil && c.Orthographic != nil:
		return 0, fmt.Errorf("camera %q has both projections", c.Name)
	case c.Perspective != nil:
		p := c.Perspective
		if p.YFov <= 0 || p.ZNear <= 0 {
			return 0, fmt.Errorf("camera %q: yfov and znear must be positive", c.Name)
		}
		if p.ZFar != 0 && p.ZFar <= p.ZNear {
			return 0, fmt.Errorf("camera %q: zfar %g not beyond znear %g", c.Name, p.ZFar, p.ZNear)
		}
		def.Type = gltf.CameraPerspective
		def.Perspective = &gltf.Perspective{YFov: p.YFov, ZNear: p.ZNear}
		if p.AspectRatio != 0 {
			def.Perspective.AspectRatio = gltf.Float(p.AspectRatio)
		}
		if p.ZFar != 0 {
			def.Perspective.ZFar = gltf.Float(p.ZFar)
		}
	case c.Orthographic != nil:
		o := c.Orthographic
		if o.XMag == 0 || o.YMag == 0 {
			return 0, fmt.Errorf("camera %q: xmag and ymag must be nonzero", c.Name)
		}
		if o.ZFar <= o.ZNear {
			return 0, fmt.Errorf("camera %q: zfar %g not beyond znear %g", c.Name, o.ZFar, o.ZNear)
		}
		def.Type = gltf.CameraOrthographic
		def.Orthographic = &gltf.Orthographic{XMag: o.XMag, YMag: o.YMag, ZFar: o.ZFar, ZNear: o.ZNear}
	default:
		return 0, fmt.Errorf("camera %q has no projection", c.Name)
	}

	idx := s.registry.register(kindCamera, c, func() int {
		s.doc.Cameras = append(s.doc.Cameras, def)
		return len(s.doc.Cameras) - 1
	})
	return idx, nil
}

func modeToGLTF(m scene.Mode) int {
	switch m {
	case scene.Points:
		return gltf.ModePoints
	case scene.Lines:
		return gltf.ModeLines
	case scene.LineLoop:
		return gltf.ModeLineLoop
	case scene.LineStrip:
		return gltf.ModeLineStrip
	case scene.TriangleStrip:
		return gltf.ModeTriangleStrip
	case scene.TriangleFan:
		return gltf.ModeTriangleFan
	}
	return gltf.ModeTriangles
}
