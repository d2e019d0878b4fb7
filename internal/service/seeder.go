package service

import (
	"Sidekick/internal/fixtures"
	"Sidekick/internal/model"
	"Sidekick/internal/stats"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// SeedEntry — пара (тип, имя) стартового документа.
type SeedEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type seedDocument struct {
	Tags       []string        `json:"tags"`
	Properties json.RawMessage `json:"properties"`
	Content    json.RawMessage `json:"content"`
}

type seedItem struct {
	SeedEntry
	input DocumentInput
}

// Seeder создаёт стартовые документы нового пользователя из фикстур.
type Seeder struct {
	fsys   fs.FS
	docs   *DocumentService
	logger *zap.SugaredLogger
}

func NewSeeder(fsys fs.FS, docs *DocumentService, logger *zap.SugaredLogger) *Seeder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Seeder{fsys: fsys, docs: docs, logger: logger}
}

// Seed создаёт недостающие стартовые документы. Уже существующие (по user, type, name)
// пропускаются, поэтому повторный запуск безопасен.
func (s *Seeder) Seed(ctx context.Context, userID string) error {
	items, err := s.load()
	if err != nil {
		return err
	}
	created := 0
	for _, it := range items {
		_, err := s.docs.GetByName(ctx, userID, it.Name, it.Type)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := s.docs.Create(ctx, userID, it.Type, it.input); err != nil {
			return fmt.Errorf("seed %s/%s: %w", it.Type, it.Name, err)
		}
		created++
	}
	if created > 0 {
		s.docs.stats.Add(stats.DocumentsSeeded, float64(created))
		s.logger.Infow("seeded default documents", "user_id", userID, "count", created)
	}
	return nil
}

// Manifest возвращает отсортированный список документов, которые создаёт Seed.
func (s *Seeder) Manifest() ([]SeedEntry, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]SeedEntry, 0, len(items))
	for _, it := range items {
		out = append(out, it.SeedEntry)
	}
	return out, nil
}

func (s *Seeder) load() ([]seedItem, error) {
	var items []seedItem

	settings, err := readJSONDir(s.fsys, fixtures.DefaultSettingsDir)
	if err != nil {
		return nil, err
	}
	for _, f := range settings {
		items = append(items, seedItem{
			SeedEntry: SeedEntry{Type: model.TypeSettings, Name: f.name},
			input:     DocumentInput{Name: f.name, Content: f.data},
		})
	}

	docs, err := readJSONDir(s.fsys, fixtures.DefaultDocumentsDir)
	if err != nil {
		return nil, err
	}
	for _, f := range docs {
		var byType map[string]map[string]seedDocument
		if err := json.Unmarshal(f.data, &byType); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
		for docType, byName := range byType {
			for name, d := range byName {
				items = append(items, seedItem{
					SeedEntry: SeedEntry{Type: docType, Name: name},
					input: DocumentInput{
						Name:       name,
						Tags:       d.Tags,
						Properties: d.Properties,
						Content:    d.Content,
					},
				})
			}
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

type jsonFile struct {
	path string
	name string
	data []byte
}

// readJSONDir читает *.json из dir в лексикографическом порядке. Отсутствующий каталог — пустой список.
func readJSONDir(fsys fs.FS, dir string) ([]jsonFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []jsonFile
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: fixture %s is not valid JSON", ErrInvalidInput, p)
		}
		out = append(out, jsonFile{path: p, name: strings.TrimSuffix(e.Name(), ".json"), data: data})
	}
	return out, nil
}
