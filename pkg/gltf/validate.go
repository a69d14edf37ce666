package gltf

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Validation errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidDocument = errors.New("invalid document")
)

// Validate checks every cross reference in the document against the
// definition array it points into, plus the structural rules a writer
// can get wrong: accessor ranges inside their views, view ranges inside
// their buffers, and exclusive field pairs. All failures are collected
// and returned as one combined error.
func Validate(doc *Document) error {
	var err error

	if doc.Asset.Version != Version {
		err = multierr.Append(err, fmt.Errorf("%w: asset version %q, want %q", ErrInvalidDocument, doc.Asset.Version, Version))
	}

	check := func(owner, what string, idx, n int) {
		if idx < 0 || idx >= n {
			err = multierr.Append(err, fmt.Errorf("%w: %s references %s %d of %d", ErrIndexOutOfRange, owner, what, idx, n))
		}
	}
	checkOpt := func(owner, what string, idx *int, n int) {
		if idx != nil {
			check(owner, what, *idx, n)
		}
	}

	checkOpt("document", "scene", doc.Scene, len(doc.Scenes))

	for i, s := range doc.Scenes {
		owner := fmt.Sprintf("scenes[%d]", i)
		for _, n := range s.Nodes {
			check(owner, "node", n, len(doc.Nodes))
		}
	}

	for i, n := range doc.Nodes {
		owner := fmt.Sprintf("nodes[%d]", i)
		for _, c := range n.Children {
			check(owner, "child node", c, len(doc.Nodes))
		}
		checkOpt(owner, "mesh", n.Mesh, len(doc.Meshes))
		checkOpt(owner, "skin", n.Skin, len(doc.Skins))
		checkOpt(owner, "camera", n.Camera, len(doc.Cameras))
		if n.Matrix != nil && (n.Translation != nil || n.Rotation != nil || n.Scale != nil) {
			err = multierr.Append(err, fmt.Errorf("%w: %s sets both matrix and TRS", ErrInvalidDocument, owner))
		}
		if n.Skin != nil && n.Mesh == nil {
			err = multierr.Append(err, fmt.Errorf("%w: %s has a skin but no mesh", ErrInvalidDocument, owner))
		}
	}

	for i, m := range doc.Meshes {
		owner := fmt.Sprintf("meshes[%d]", i)
		if len(m.Primitives) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has no primitives", ErrInvalidDocument, owner))
		}
		for j, p := range m.Primitives {
			owner := fmt.Sprintf("meshes[%d].primitives[%d]", i, j)
			if len(p.Attributes) == 0 {
				err = multierr.Append(err, fmt.Errorf("%w: %s has no attributes", ErrInvalidDocument, owner))
			}
			for sem, a := range p.Attributes {
				check(owner, "accessor for "+sem, a, len(doc.Accessors))
			}
			checkOpt(owner, "index accessor", p.Indices, len(doc.Accessors))
			checkOpt(owner, "material", p.Material, len(doc.Materials))
		}
	}

	for i, m := range doc.Materials {
		owner := fmt.Sprintf("materials[%d]", i)
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorTexture != nil {
				check(owner, "base color texture", pbr.BaseColorTexture.Index, len(doc.Textures))
			}
			if pbr.MetallicRoughnessTexture != nil {
				check(owner, "metallic-roughness texture", pbr.MetallicRoughnessTexture.Index, len(doc.Textures))
			}
		}
		if m.NormalTexture != nil {
			check(owner, "normal texture", m.NormalTexture.Index, len(doc.Textures))
		}
		if m.OcclusionTexture != nil {
			check(owner, "occlusion texture", m.OcclusionTexture.Index, len(doc.Textures))
		}
		if m.EmissiveTexture != nil {
			check(owner, "emissive texture", m.EmissiveTexture.Index, len(doc.Textures))
		}
	}

	for i, t := range doc.Textures {
		owner := fmt.Sprintf("textures[%d]", i)
		checkOpt(owner, "image", t.Source, len(doc.Images))
		checkOpt(owner, "sampler", t.Sampler, len(doc.Samplers))
	}

	for i, img := range doc.Images {
		owner := fmt.Sprintf("images[%d]", i)
		checkOpt(owner, "buffer view", img.BufferView, len(doc.BufferViews))
		switch {
		case img.URI != "" && img.BufferView != nil:
			err = multierr.Append(err, fmt.Errorf("%w: %s sets both uri and bufferView", ErrInvalidDocument, owner))
		case img.URI == "" && img.BufferView == nil:
			err = multierr.Append(err, fmt.Errorf("%w: %s has neither uri nor bufferView", ErrInvalidDocument, owner))
		case img.BufferView != nil && img.MimeType == "":
			err = multierr.Append(err, fmt.Errorf("%w: %s embeds pixel data without a mimeType", ErrInvalidDocument, owner))
		}
	}

	for i, c := range doc.Cameras {
		owner := fmt.Sprintf("cameras[%d]", i)
		ok := (c.Type == CameraPerspective && c.Perspective != nil && c.Orthographic == nil) ||
			(c.Type == CameraOrthographic && c.Orthographic != nil && c.Perspective == nil)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: %s type %q does not match its projection", ErrInvalidDocument, owner, c.Type))
		}
	}

	for i, s := range doc.Skins {
		owner := fmt.Sprintf("skins[%d]", i)
		checkOpt(owner, "inverse bind matrix accessor", s.InverseBindMatrices, len(doc.Accessors))
		checkOpt(owner, "skeleton node", s.Skeleton, len(doc.Nodes))
		if len(s.Joints) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has no joints", ErrInvalidDocument, owner))
		}
		for _, j := range s.Joints {
			check(owner, "joint node", j, len(doc.Nodes))
		}
	}

	for i, a := range doc.Accessors {
		owner := fmt.Sprintf("accessors[%d]", i)
		if a.ComponentType.Size() == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has unknown component type %d", ErrInvalidDocument, owner, int(a.ComponentType)))
			continue
		}
		if a.Type.Components() == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has unknown element type %q", ErrInvalidDocument, owner, a.Type))
			continue
		}
		if a.BufferView == nil {
			continue
		}
		check(owner, "buffer view", *a.BufferView, len(doc.BufferViews))
		if *a.BufferView < 0 || *a.BufferView >= len(doc.BufferViews) {
			continue
		}
		view := doc.BufferViews[*a.BufferView]
		need := a.Count * a.Type.Components() * a.ComponentType.Size()
		if a.ByteOffset+need > view.ByteLength {
			err = multierr.Append(err, fmt.Errorf("%w: %s needs %d bytes at offset %d, view holds %d",
				ErrInvalidDocument, owner, need, a.ByteOffset, view.ByteLength))
		}
	}

	for i, v := range doc.BufferViews {
		owner := fmt.Sprintf("bufferViews[%d]", i)
		check(owner, "buffer", v.Buffer, len(doc.Buffers))
		if v.Buffer < 0 || v.Buffer >= len(doc.Buffers) {
			continue
		}
		buf := doc.Buffers[v.Buffer]
		if v.ByteOffset+v.ByteLength > buf.ByteLength {
			err = multierr.Append(err, fmt.Errorf("%w: %s spans [%d,%d), buffer holds %d",
				ErrInvalidDocument, owner, v.ByteOffset, v.ByteOffset+v.ByteLength, buf.ByteLength))
		}
	}

	for i, b := range doc.Buffers {
		if b.URI == "" && i != 0 {
			err = multierr.Append(err, fmt.Errorf("%w: buffers[%d] has no uri; only buffer 0 may be embedded", ErrInvalidDocument, i))
		}
	}

	return err
}
