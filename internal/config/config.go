// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Naming  NamingConfig  `yaml:"naming"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds container and document settings.
type ExportConfig struct {
	Format      string `yaml:"format"` // glb or gltf
	EmbedImages bool   `yaml:"embed_images"`
	Generator   string `yaml:"generator"`
	Copyright   string `yaml:"copyright"`
}

// NamingConfig holds the naming scheme for generated resource files.
type NamingConfig struct {
	ImageBase   string `yaml:"image_base"`
	BufferBase  string `yaml:"buffer_base"`
	SingleImage bool   `yaml:"single_image"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Format:      "glb",
			EmbedImages: true,
			Generator:   "glbforge",
		},
		Naming: NamingConfig{
			ImageBase:  "image",
			BufferBase: "buffer",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
