// glbforge is a CLI for exporting YAML scene descriptions to glTF
// assets, either as a single .glb container or as .gltf plus external
// resource files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
	"github.com/Faultbox/glbforge/internal/logger"
	"github.com/Faultbox/glbforge/internal/manifest"
	"github.com/Faultbox/glbforge/pkg/export"
	"github.com/Faultbox/glbforge/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		cmdExport(args)
	case "sample":
		cmdSample(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glbforge - glTF 2.0 exporter

Usage:
  glbforge <command> [options]

Commands:
  export [options] <scene.yaml>   Export a scene manifest
  sample [options] [name]         Export a built-in sample scene
                                  (triangle, quad, cube)
  init-config [-o path]           Write a default config file

Common options (export, sample):
  -o path          Output file (defaults next to the input)
  -format f        Output container: glb or gltf
  -embed           Embed images into the binary buffer
  -external        Keep images as external files
  -config path     Config file to load
  -debug           Enable debug logging

Examples:
  glbforge export scene.yaml
  glbforge export -format gltf -external -o out/scene.gltf scene.yaml
  glbforge sample cube
  glbforge sample -format gltf quad`)
}

// setup loads configuration and brings up logging. Called by every
// subcommand after flag parsing.
func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Export.Format != "glb" && cfg.Export.Format != "gltf" {
		logger.Error("unknown output format", zap.String("format", cfg.Export.Format))
		os.Exit(1)
	}
	return cfg
}

// sessionOptions maps the export and naming config sections onto
// session options.
func sessionOptions(cfg *config.Config) export.Options {
	return export.Options{
		Generator:   cfg.Export.Generator,
		Copyright:   cfg.Export.Copyright,
		Binary:      cfg.Export.Format == "glb",
		EmbedImages: cfg.Export.EmbedImages,
		ImageBase:   cfg.Naming.ImageBase,
		SingleImage: cfg.Naming.SingleImage,
		BufferBase:  cfg.Naming.BufferBase,
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "Output path (defaults to the manifest name)")
	config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbforge export [options] <scene.yaml>")
		os.Exit(1)
	}

	cfg := setup()
	defer logger.Sync()

	manifestPath := fs.Arg(0)
	logger.Info("loading manifest", zap.String("path", manifestPath))

	m, err := manifest.Load(manifestPath)
	if err != nil {
		logger.Error("failed to load manifest", zap.Error(err))
		os.Exit(1)
	}
	sc, err := m.Build(filepath.Dir(manifestPath))
	if err != nil {
		logger.Error("failed to build scene", zap.Error(err))
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
		outPath = base + "." + cfg.Export.Format
	}
	writeScene(sc, cfg, outPath)
}

// writeScene runs the export session and writes the result in the
// configured container format.
func writeScene(sc *scene.Scene, cfg *config.Config, outPath string) {
	res, err := export.Export(sc, sessionOptions(cfg))
	if err != nil {
		logger.Error("export failed", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Export.Format == "glb" {
		err = export.WriteGLBFile(outPath, res)
	} else {
		dir := filepath.Dir(outPath)
		name := strings.TrimSuffix(filepath.Base(outPath), ".gltf")
		err = export.WriteGLTF(dir, name, res)
	}
	if err != nil {
		logger.Error("failed to write output", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("export complete",
		zap.String("output", outPath),
		zap.Int("nodes", len(res.Doc.Nodes)),
		zap.Int("meshes", len(res.Doc.Meshes)),
		zap.Int("resources", len(res.Resources)),
		zap.Int("bufferBytes", len(res.Blob)))
}

func cmdInitConfig(args []string) {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	out := fs.String("o", "glbforge.yaml", "Where to write the config")
	fs.Parse(args)

	cfg := config.Default()
	if err := cfg.SaveTo(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *out)
}
