package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kintree/internal/importer"
)

// ErrPresetNotFound is returned for unknown preset keys
var ErrPresetNotFound = errors.New("preset not found")

// presetFiles maps public preset keys to their data files. Only keys listed
// here can be imported; the key never reaches the filesystem directly.
var presetFiles = map[string]string{
	"han_dynasty":    "han_data.json",
	"tang_dynasty":   "tang_data.json",
	"three_kingdoms": "three_kingdoms_data.json",
	"demo":           "demo_data.json",
}

// PresetService loads bundled import documents from disk
type PresetService struct {
	path string
}

// NewPresetService creates a preset service reading from the given directory
func NewPresetService(path string) *PresetService {
	return &PresetService{path: path}
}

// Keys lists the available preset keys
func (s *PresetService) Keys() []string {
	keys := make([]string, 0, len(presetFiles))
	for key := range presetFiles {
		if _, err := os.Stat(filepath.Join(s.path, presetFiles[key])); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// Load reads and parses the preset document for a key
func (s *PresetService) Load(key string) (*importer.Document, error) {
	filename, ok := presetFiles[key]
	if !ok {
		return nil, ErrPresetNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.path, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset %s: %w", key, err)
	}

	doc := &importer.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", key, err)
	}

	return doc, nil
}
