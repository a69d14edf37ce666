package scene

import "testing"

func TestSampler_IsDefault(t *testing.T) {
	tests := []struct {
		name    string
		sampler Sampler
		want    bool
	}{
		{"zero value", Sampler{}, true},
		{"explicit repeat wraps", Sampler{WrapS: WrapRepeat, WrapT: WrapRepeat}, true},
		{"mag filter set", Sampler{MagFilter: FilterNearest}, false},
		{"min filter set", Sampler{MinFilter: FilterLinearMipmapLinear}, false},
		{"wrap s set", Sampler{WrapS: WrapClampToEdge}, false},
		{"wrap t set", Sampler{WrapT: WrapMirroredRepeat}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sampler.IsDefault(); got != tt.want {
				t.Errorf("IsDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"triangles", Triangles, false},
		{"points", Points, false},
		{"line_strip", LineStrip, false},
		{"triangle_fan", TriangleFan, false},
		{"quads", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"auto", FilterAuto, false},
		{"nearest", FilterNearest, false},
		{"linear", FilterLinear, false},
		{"nearest_mipmap_linear", FilterNearestMipmapLinear, false},
		{"bicubic", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWrap(t *testing.T) {
	tests := []struct {
		in      string
		want    Wrap
		wantErr bool
	}{
		{"repeat", WrapRepeat, false},
		{"clamp_to_edge", WrapClampToEdge, false},
		{"mirrored_repeat", WrapMirroredRepeat, false},
		{"tile", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWrap(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWrap(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseWrap(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAlphaMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AlphaMode
		wantErr bool
	}{
		{"opaque", Opaque, false},
		{"mask", Mask, false},
		{"blend", Blend, false},
		{"additive", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAlphaMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlphaMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAlphaMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeString_RoundTrip(t *testing.T) {
	for m := Triangles; m <= TriangleFan; m++ {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", m.String(), err)
			continue
		}
		if got != m {
			t.Errorf("round trip of %v gave %v", m, got)
		}
	}
}
