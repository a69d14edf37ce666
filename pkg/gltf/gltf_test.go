package gltf

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	if doc.Asset.Version != "2.0" {
		t.Errorf("Asset.Version = %q, want %q", doc.Asset.Version, "2.0")
	}
}

func TestDocumentJSON_EmptyArraysOmitted(t *testing.T) {
	data, err := json.Marshal(NewDocument())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"asset":{"version":"2.0"}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestDocumentJSON_DefaultsOmitted(t *testing.T) {
	doc := NewDocument()
	doc.Samplers = append(doc.Samplers, &Sampler{MagFilter: FilterNearest})
	doc.Accessors = append(doc.Accessors, &Accessor{
		BufferView:    Index(0),
		ComponentType: ComponentFloat,
		Count:         3,
		Type:          TypeVec3,
	})

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	for _, absent := range []string{"minFilter", "wrapS", "wrapT", "byteOffset", "normalized", "mode"} {
		if strings.Contains(s, absent) {
			t.Errorf("output contains %q, want it omitted: %s", absent, s)
		}
	}
	for _, present := range []string{`"magFilter":9728`, `"componentType":5126`, `"type":"VEC3"`, `"count":3`} {
		if !strings.Contains(s, present) {
			t.Errorf("output missing %q: %s", present, s)
		}
	}
}

func TestDocumentJSON_SchemaNames(t *testing.T) {
	doc := NewDocument()
	doc.Buffers = append(doc.Buffers, &Buffer{ByteLength: 12})
	doc.BufferViews = append(doc.BufferViews, &BufferView{ByteLength: 12, Target: TargetArrayBuffer})
	doc.Materials = append(doc.Materials, &Material{
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorTexture: &TextureInfo{Index: 0},
			MetallicFactor:   Float(0),
		},
	})

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	for _, present := range []string{
		`"bufferViews"`, `"byteLength":12`, `"target":34962`,
		`"pbrMetallicRoughness"`, `"baseColorTexture":{"index":0}`, `"metallicFactor":0`,
	} {
		if !strings.Contains(s, present) {
			t.Errorf("output missing %q: %s", present, s)
		}
	}
}

func TestNormalTextureInfo_InlinesTextureInfo(t *testing.T) {
	info := &NormalTextureInfo{TextureInfo: TextureInfo{Index: 2}, Scale: Float(0.5)}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"index":2,"scale":0.5}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestComponentType_Size(t *testing.T) {
	tests := []struct {
		ct   ComponentType
		want int
	}{
		{ComponentByte, 1},
		{ComponentUnsignedByte, 1},
		{ComponentShort, 2},
		{ComponentUnsignedShort, 2},
		{ComponentUnsignedInt, 4},
		{ComponentFloat, 4},
		{ComponentType(9999), 0},
	}

	for _, tt := range tests {
		if got := tt.ct.Size(); got != tt.want {
			t.Errorf("ComponentType(%d).Size() = %d, want %d", int(tt.ct), got, tt.want)
		}
	}
}

func TestAccessorType_Components(t *testing.T) {
	tests := []struct {
		at   AccessorType
		want int
	}{
		{TypeScalar, 1},
		{TypeVec2, 2},
		{TypeVec3, 3},
		{TypeVec4, 4},
		{TypeMat2, 4},
		{TypeMat3, 9},
		{TypeMat4, 16},
		{AccessorType("VEC9"), 0},
	}

	for _, tt := range tests {
		if got := tt.at.Components(); got != tt.want {
			t.Errorf("AccessorType(%q).Components() = %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	p := Index(5)
	if p == nil || *p != 5 {
		t.Errorf("Index(5) = %v, want pointer to 5", p)
	}
}
