package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style is the terminal styling for one markup tag.
type Style struct {
	Bold          bool   `yaml:"bold,omitempty"`
	Italic        bool   `yaml:"italic,omitempty"`
	Underline     bool   `yaml:"underline,omitempty"`
	Strikethrough bool   `yaml:"strikethrough,omitempty"`
	Foreground    string `yaml:"foreground,omitempty"`
}

type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

type Config struct {
	BlankSectionTag string           `yaml:"blank_section_tag,omitempty"`
	Log             Log              `yaml:"log,omitempty"`
	Plain           bool             `yaml:"plain,omitempty"`
	Styles          map[string]Style `yaml:"styles,omitempty"`
}

// EnvVar names the config file when no explicit path is given.
const EnvVar = "POSTEDIT_CONF"

func Default() Config {
	return Config{
		BlankSectionTag: "p",
		Log:             Log{Level: "info", Format: "text"},
		Styles: map[string]Style{
			"b":      {Bold: true},
			"strong": {Bold: true},
			"em":     {Italic: true},
			"i":      {Italic: true},
			"u":      {Underline: true},
			"s":      {Strikethrough: true},
			"a":      {Underline: true, Foreground: "39"},
			"code":   {Foreground: "214"},
		},
	}
}

// Load reads path, or $POSTEDIT_CONF when path is empty, and overrides the
// defaults with whatever the file sets. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		env, ok := os.LookupEnv(EnvVar)
		if !ok {
			return cfg, nil
		}
		path = env
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML data onto the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.BlankSectionTag != "" {
		cfg.BlankSectionTag = file.BlankSectionTag
	}
	if file.Log.Level != "" {
		cfg.Log.Level = file.Log.Level
	}
	if file.Log.Format != "" {
		cfg.Log.Format = file.Log.Format
	}
	cfg.Plain = file.Plain
	for tag, st := range file.Styles {
		cfg.Styles[tag] = st
	}
	return cfg, nil
}
