package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowgraph-backend/domain/core/aggregates"
)

// PropertyFileName is the per-graph property document written under the
// store's base directory.
const PropertyFileName = "property.json"

// PropertyStore persists each graph's property document to
// <base>/<graph-id>/property.json. Writes go through a temp file and an
// atomic rename so readers never observe a half-written document.
type PropertyStore struct {
	baseDir string
	logger  *zap.Logger
}

// propertyDocument is the on-disk shape of a graph entry.
type propertyDocument struct {
	Name      string            `json:"name"`
	AutoStart bool              `json:"auto_start"`
	Graph     *aggregates.Graph `json:"graph"`
}

// NewPropertyStore creates a property store rooted at baseDir.
func NewPropertyStore(baseDir string, logger *zap.Logger) *PropertyStore {
	return &PropertyStore{baseDir: baseDir, logger: logger}
}

// SyncGraph writes the graph's property document to disk.
func (s *PropertyStore) SyncGraph(ctx context.Context, info *aggregates.GraphInfo) error {
	dir := filepath.Join(s.baseDir, info.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}

	doc := propertyDocument{
		Name:      info.Name,
		AutoStart: info.AutoStart,
		Graph:     info.Graph,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode property document: %w", err)
	}

	target := filepath.Join(dir, PropertyFileName)
	tmp, err := os.CreateTemp(dir, PropertyFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write property document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace property document: %w", err)
	}

	s.logger.Debug("Synced graph property file",
		zap.String("graphID", info.ID.String()),
		zap.String("path", target),
	)
	return nil
}

// Load reads one graph's property document back into a GraphInfo.
func (s *PropertyStore) Load(ctx context.Context, id uuid.UUID) (*aggregates.GraphInfo, error) {
	path := filepath.Join(s.baseDir, id.String(), PropertyFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property document: %w", err)
	}
	var doc propertyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse property document: %w", err)
	}
	if doc.Graph == nil {
		doc.Graph = &aggregates.Graph{}
	}
	return &aggregates.GraphInfo{
		ID:        id,
		Name:      doc.Name,
		AutoStart: doc.AutoStart,
		BaseDir:   filepath.Join(s.baseDir, id.String()),
		Graph:     doc.Graph,
	}, nil
}

// LoadAll reads every graph property document under the base directory.
// Entries that fail to parse are skipped with a warning so one corrupt
// document does not block startup.
func (s *PropertyStore) LoadAll(ctx context.Context) ([]*aggregates.GraphInfo, error) {
	dirEntries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read property base directory: %w", err)
	}

	var infos []*aggregates.GraphInfo
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		info, err := s.Load(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping unreadable graph property document",
				zap.String("graphID", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}
