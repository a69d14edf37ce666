package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
	"github.com/Faultbox/glbforge/internal/logger"
	"github.com/Faultbox/glbforge/pkg/scene"
)

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	out := fs.String("o", "", "Output path (defaults to the sample name)")
	config.RegisterFlags(fs)
	fs.Parse(args)

	name := "cube"
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}

	cfg := setup()
	defer logger.Sync()

	sc, err := sampleScene(name)
	if err != nil {
		logger.Error("failed to build sample", zap.Error(err))
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = name + "." + cfg.Export.Format
	}
	writeScene(sc, cfg, outPath)
}

func sampleScene(name string) (*scene.Scene, error) {
	switch name {
	case "triangle":
		return triangleScene()
	case "quad":
		return quadScene()
	case "cube":
		return cubeScene()
	}
	return nil, fmt.Errorf("unknown sample %q (want triangle, quad or cube)", name)
}

func triangleScene() (*scene.Scene, error) {
	mat := &scene.Material{
		Name:      "flat red",
		BaseColor: &[4]float32{0.9, 0.1, 0.1, 1},
		Metallic:  floatPtr(0),
		Roughness: floatPtr(0.8),
	}
	mesh := &scene.Mesh{Name: "triangle", Primitives: []*scene.Primitive{{
		Material:  mat,
		Positions: [][3]float32{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}}}
	return &scene.Scene{
		Name:  "triangle",
		Nodes: []*scene.Node{{Name: "triangle", Mesh: mesh}},
	}, nil
}

func quadScene() (*scene.Scene, error) {
	mat, err := checkerMaterial()
	if err != nil {
		return nil, err
	}
	mesh := &scene.Mesh{Name: "quad", Primitives: []*scene.Primitive{{
		Material: mat,
		Positions: [][3]float32{
			{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0},
		},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TexCoords: [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}}}
	return &scene.Scene{
		Name:  "quad",
		Nodes: []*scene.Node{{Name: "quad", Mesh: mesh}},
	}, nil
}

func cubeScene() (*scene.Scene, error) {
	mat, err := checkerMaterial()
	if err != nil {
		return nil, err
	}

	prim := &scene.Primitive{Material: mat}
	// One face per axis direction: normal n, tangent axes u and v.
	addFace := func(n, u, v [3]float32) {
		base := uint32(len(prim.Positions))
		corners := [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			var pos [3]float32
			for a := 0; a < 3; a++ {
				pos[a] = (n[a] + c[0]*u[a] + c[1]*v[a]) * 0.5
			}
			prim.Positions = append(prim.Positions, pos)
			prim.Normals = append(prim.Normals, normalize(n))
		}
		prim.TexCoords = append(prim.TexCoords,
			[2]float32{0, 1}, [2]float32{1, 1}, [2]float32{1, 0}, [2]float32{0, 0})
		prim.Indices = append(prim.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	addFace([3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	addFace([3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0})
	addFace([3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1})
	addFace([3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1})
	addFace([3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	addFace([3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0})

	mesh := &scene.Mesh{Name: "cube", Primitives: []*scene.Primitive{prim}}
	return &scene.Scene{
		Name:  "cube",
		Nodes: []*scene.Node{{Name: "cube", Mesh: mesh}},
	}, nil
}

func checkerMaterial() (*scene.Material, error) {
	data, err := checkerboardPNG(128, 8)
	if err != nil {
		return nil, fmt.Errorf("generating checkerboard: %w", err)
	}
	return &scene.Material{
		Name:      "checker",
		Roughness: floatPtr(0.9),
		BaseColorTexture: &scene.Texture{
			Name:  "checker",
			Image: &scene.Image{Name: "checker", MIME: "image/png", Data: data},
			Sampler: scene.Sampler{
				MinFilter: scene.FilterLinearMipmapLinear,
				MagFilter: scene.FilterNearest,
			},
		},
	}, nil
}

func checkerboardPNG(size, cells int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 50, G: 50, B: 55, A: 255}
			if ((x/cell)+(y/cell))%2 == 0 {
				c = color.RGBA{R: 225, G: 225, B: 220, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func floatPtr(f float32) *float32 { return &f }
