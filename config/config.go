// Package config holds the flat configuration records that drive
// profile assembly and the front ends, plus YAML and environment
// loading. The policy layer consumes the structs directly and never
// touches files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Processing is the standard-profile configuration.
type Processing struct {
	BorderThreshold     int    `yaml:"border_threshold"`
	DeskewEnabled       bool   `yaml:"deskew_enabled"`
	NoiseReduction      bool   `yaml:"noise_reduction"`
	SpeckSize           int    `yaml:"speck_size"`
	ContrastEnhancement bool   `yaml:"contrast_enhancement"`
	AllowBinarization   bool   `yaml:"allow_binarization"`
	OutputDPI           int    `yaml:"output_dpi"`
	OutputFormat        string `yaml:"output_format"`
	MaskingEnabled      bool   `yaml:"masking_enabled"`
}

// DefaultProcessing returns the standard-profile defaults.
func DefaultProcessing() Processing {
	return Processing{
		BorderThreshold:     50,
		DeskewEnabled:       true,
		NoiseReduction:      true,
		SpeckSize:           10,
		ContrastEnhancement: true,
		AllowBinarization:   true,
		OutputDPI:           300,
		OutputFormat:        "png",
		MaskingEnabled:      true,
	}
}

// Security configures the feature-preserving profile. It embeds the
// standard knobs and adds the preservation limits.
type Security struct {
	Processing `yaml:",inline"`

	DocumentType       string  `yaml:"document_type"`
	PreserveBackground bool    `yaml:"preserve_background"`
	PreserveColor      bool    `yaml:"preserve_color"`
	MaxDenoising       int     `yaml:"max_denoising"`
	AllowContrastBoost bool    `yaml:"allow_contrast_boost"`
	WatermarkThreshold float64 `yaml:"watermark_threshold"`
}

// DefaultSecurity returns the conservative defaults: binarization and
// contrast boosting off, minimal denoising.
func DefaultSecurity() Security {
	p := DefaultProcessing()
	p.AllowBinarization = false
	p.ContrastEnhancement = false
	return Security{
		Processing:         p,
		DocumentType:       "auto",
		PreserveBackground: true,
		PreserveColor:      true,
		MaxDenoising:       3,
		AllowContrastBoost: false,
		WatermarkThreshold: 0.95,
	}
}

// OCR configures the OCR-optimized profile: security-feature removal
// ahead of the standard chain.
type OCR struct {
	Processing `yaml:",inline"`

	RemoveWatermarks     bool   `yaml:"remove_watermarks"`
	RemoveGuilloche      bool   `yaml:"remove_guilloche"`
	FlattenHolograms     bool   `yaml:"flatten_holograms"`
	MRZPriority          bool   `yaml:"mrz_priority"`
	TextEnhancement      string `yaml:"text_enhancement"`
	PreserveMRZ          bool   `yaml:"preserve_mrz"`
	LegalComplianceCheck bool   `yaml:"legal_compliance_check"`
}

// DefaultOCR returns the aggressive defaults with every removal stage
// enabled.
func DefaultOCR() OCR {
	return OCR{
		Processing:           DefaultProcessing(),
		RemoveWatermarks:     true,
		RemoveGuilloche:      true,
		FlattenHolograms:     true,
		MRZPriority:          true,
		TextEnhancement:      "aggressive",
		PreserveMRZ:          true,
		LegalComplianceCheck: true,
	}
}

// Server configures the HTTP front end.
type Server struct {
	Addr            string `yaml:"addr"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	Workers         int    `yaml:"workers"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// DefaultServer returns the listen defaults.
func DefaultServer() Server {
	return Server{
		Addr:            ":8080",
		MaxUploadBytes:  64 << 20,
		Workers:         0, // 0 = GOMAXPROCS
		ShutdownTimeout: 15,
	}
}

// File is the on-disk YAML layout: one section per profile plus the
// server block. Missing sections keep their defaults.
type File struct {
	Pipeline Processing `yaml:"pipeline"`
	Security Security   `yaml:"security"`
	OCR      OCR        `yaml:"ocr"`
	Server   Server     `yaml:"server"`
}

// Defaults returns a File with every section at its defaults.
func Defaults() File {
	return File{
		Pipeline: DefaultProcessing(),
		Security: DefaultSecurity(),
		OCR:      DefaultOCR(),
		Server:   DefaultServer(),
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (File, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies SCANKIT_* environment overrides to the server block.
// Pipeline knobs stay file- and flag-driven.
func (f *File) FromEnv() {
	if v := os.Getenv("SCANKIT_ADDR"); v != "" {
		f.Server.Addr = v
	}
	if v := os.Getenv("SCANKIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Server.Workers = n
		}
	}
	if v := os.Getenv("SCANKIT_MAX_UPLOAD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			f.Server.MaxUploadBytes = n
		}
	}
}
