package config

import "flag"

var (
	flagConfig      *string
	flagDebug       *bool
	flagFormat      *string
	flagEmbed       *bool
	flagExternal    *bool
	flagGenerator   *string
	flagImageBase   *string
	flagBufferBase  *string
	flagSingleImage *bool
)

// RegisterFlags installs the configuration override flags on fs.
// Subcommands that honor the config file call this before parsing.
func RegisterFlags(fs *flag.FlagSet) {
	flagConfig = fs.String("config", "", "Path to config file")
	flagDebug = fs.Bool("debug", false, "Enable debug logging")
	flagFormat = fs.String("format", "", "Output container: glb or gltf")
	flagEmbed = fs.Bool("embed", false, "Embed images into the binary buffer")
	flagExternal = fs.Bool("external", false, "Keep images as external files")
	flagGenerator = fs.String("generator", "", "Generator string written to the asset header")
	flagImageBase = fs.String("image-base", "", "Base name for generated image files")
	flagBufferBase = fs.String("buffer-base", "", "Base name for the external buffer file")
	flagSingleImage = fs.Bool("single-image", false, "Name a lone generated image without a number")
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	if flagConfig == nil {
		return ""
	}
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagConfig == nil {
		return
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagEmbed {
		cfg.Export.EmbedImages = true
	}
	if *flagExternal {
		cfg.Export.EmbedImages = false
	}
	if *flagGenerator != "" {
		cfg.Export.Generator = *flagGenerator
	}
	if *flagImageBase != "" {
		cfg.Naming.ImageBase = *flagImageBase
	}
	if *flagBufferBase != "" {
		cfg.Naming.BufferBase = *flagBufferBase
	}
	if *flagSingleImage {
		cfg.Naming.SingleImage = true
	}
}
