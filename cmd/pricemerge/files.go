package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/liznear/price-merge/config"
	"github.com/liznear/price-merge/model"
	"github.com/liznear/price-merge/store"
	"gopkg.in/yaml.v3"
)

// priceDocument is the layout of a YAML price file.
type priceDocument struct {
	Prices []model.Price `yaml:"prices"`
}

// formatOf returns the format of the file at path. The extension wins over the configured format.
func formatOf(path, configured string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	case store.Extension:
		return config.FormatBinary
	}
	return configured
}

func readPrices(path, format string) ([]model.Price, error) {
	if formatOf(path, format) == config.FormatBinary {
		ps, err := store.Load(path)
		if err != nil {
			return nil, fmt.Errorf("fail to load %s: %w", path, err)
		}
		return ps, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fail to read %s: %w", path, err)
	}
	var doc priceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fail to parse %s: %w", path, err)
	}
	return doc.Prices, nil
}

// recoverPrices is like readPrices, but drops an incomplete trailing record of a binary file.
func recoverPrices(path, format string) ([]model.Price, error) {
	if formatOf(path, format) != config.FormatBinary {
		return readPrices(path, format)
	}
	ps, err := store.Recover(path)
	if err != nil {
		return nil, fmt.Errorf("fail to recover %s: %w", path, err)
	}
	return ps, nil
}

func writePrices(path, format string, ps []model.Price) error {
	if formatOf(path, format) == config.FormatBinary {
		if err := store.Save(path, ps); err != nil {
			return fmt.Errorf("fail to save %s: %w", path, err)
		}
		return nil
	}

	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(priceDocument{Prices: ps}); err != nil {
		return fmt.Errorf("fail to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("fail to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("fail to write %s: %w", path, err)
	}
	return nil
}
