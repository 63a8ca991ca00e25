package service

import (
	"errors"

	"kintree/internal/importer"
	"kintree/internal/models"
)

// ImportService accepts import documents on behalf of an authenticated user
type ImportService struct {
	engine  *importer.Engine
	presets *PresetService
}

// NewImportService creates a new import service
func NewImportService(engine *importer.Engine, presets *PresetService) *ImportService {
	return &ImportService{engine: engine, presets: presets}
}

// Import runs an import document as the given user. Any owner carried by
// the document is discarded; the authenticated caller always owns the
// resulting family.
func (s *ImportService) Import(userID string, doc *importer.Document) (*models.Family, error) {
	if doc.FamilyName == "" {
		return nil, errors.New("family name is required")
	}
	doc.OwnerUserID = userID
	return s.engine.Run(doc)
}

// ImportPreset loads a named preset document and imports it as the given user
func (s *ImportService) ImportPreset(userID, key string) (*models.Family, error) {
	doc, err := s.presets.Load(key)
	if err != nil {
		return nil, err
	}
	return s.Import(userID, doc)
}
