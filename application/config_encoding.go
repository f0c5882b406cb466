package application

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/coniks-sys/akd-go/utils"
)

// ConfigLoader provides an interface for implementing
// different application configuration encodings.
type ConfigLoader interface {
	Encode(conf AppConfig) error
	Decode(conf AppConfig) error
}

// newConfigLoader constructs a new ConfigLoader for the given encoding.
// If the encoding is unsupported, newConfigLoader() returns a loader
// for the default encoding (TOML).
func newConfigLoader(encoding string) ConfigLoader {
	loader := configEncodings[encoding]
	if loader == nil {
		loader = new(TomlLoader)
	}
	return loader
}

// TomlLoader implements a ConfigLoader for toml-encoded
// configurations.
type TomlLoader struct{}

var _ ConfigLoader = (*TomlLoader)(nil)

// Encode saves the given configuration conf in toml encoding.
// It refuses to overwrite an existing file.
// If there is any encoding or IO error, Encode() returns an error.
func (ld *TomlLoader) Encode(conf AppConfig) error {
	var confBuf bytes.Buffer

	e := toml.NewEncoder(&confBuf)
	if err := e.Encode(conf); err != nil {
		return err
	}
	if err := utils.WriteFile(conf.GetPath(), confBuf.Bytes(), 0644); err != nil {
		return err
	}
	return nil
}

// Decode reads an application configuration from the given toml-encoded
// file. Keys the configuration does not know are an error.
func (ld *TomlLoader) Decode(conf AppConfig) error {
	md, err := toml.DecodeFile(conf.GetPath(), conf)
	if err != nil {
		return fmt.Errorf("Failed to load config: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("Failed to load config: unknown keys %v", undecoded)
	}
	return nil
}

var configEncodings = map[string]ConfigLoader{
	"toml": new(TomlLoader),
}
