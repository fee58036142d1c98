package main

import (
	"os"

	"github.com/eak1mov/go-libtmx/codec"
	"gopkg.in/yaml.v3"
)

// Config holds defaults for flags left empty on the command line.
type Config struct {
	Encoding    string `yaml:"encoding"`
	Compression string `yaml:"compression"`
	IndexOrder  string `yaml:"index_order"`
}

func defaultConfig() Config {
	return Config{IndexOrder: "row"}
}

func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// format resolves the data format from flag values, falling back to the
// config. It returns nil when neither sets an encoding.
func (c Config) format(encoding, compression string) (*codec.Format, error) {
	if encoding == "" {
		encoding, compression = c.Encoding, c.Compression
		if encoding == "" {
			return nil, nil
		}
	}
	f, err := codec.ParseFormat(encoding, compression)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
