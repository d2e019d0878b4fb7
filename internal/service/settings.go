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

	"go.uber.org/zap"
)

// SettingsService сверяет документы настроек с фикстурами и обслуживает
// чтение/запись настроек по имени.
type SettingsService struct {
	fsys   fs.FS
	docs   *DocumentService
	logger *zap.SugaredLogger
}

func NewSettingsService(fsys fs.FS, docs *DocumentService, logger *zap.SugaredLogger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SettingsService{fsys: fsys, docs: docs, logger: logger}
}

// UpdateSystemSettings сверяет системные настройки пользователя sidekick. Вызывается при старте.
func (s *SettingsService) UpdateSystemSettings(ctx context.Context) error {
	return s.reconcile(ctx, SystemUserID, model.TypeSystemSettings, fixtures.SystemSettingsDir)
}

// UpdateDefaultSettings сверяет настройки пользователя. Вызывается при каждом входе.
func (s *SettingsService) UpdateDefaultSettings(ctx context.Context, userID string) error {
	return s.reconcile(ctx, userID, model.TypeSettings, fixtures.DefaultSettingsDir)
}

func (s *SettingsService) reconcile(ctx context.Context, userID, docType, dir string) error {
	files, err := readJSONDir(s.fsys, dir)
	if err != nil {
		return err
	}
	return s.docs.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, f := range files {
			incoming := decodeObject(f.data)
			existing, err := s.docs.GetByName(ctx, userID, f.name, docType)
			if errors.Is(err, ErrNotFound) {
				if _, err := s.docs.Create(ctx, userID, docType, DocumentInput{Name: f.name, Content: f.data}); err != nil {
					return fmt.Errorf("create %s %s: %w", docType, f.name, err)
				}
				continue
			}
			if err != nil {
				return err
			}

			merged, changed := MergeSettings(decodeObject(existing.Content), incoming)
			if !changed {
				continue
			}
			if err := s.replaceContent(ctx, existing, merged); err != nil {
				return fmt.Errorf("update %s %s: %w", docType, f.name, err)
			}
			s.docs.stats.Inc(stats.SettingsMerged)
			s.logger.Infow("settings merged", "user_id", userID, "type", docType, "name", f.name)
		}
		return nil
	})
}

func (s *SettingsService) replaceContent(ctx context.Context, existing *model.DocumentView, content any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	_, err = s.docs.Update(ctx, existing.Metadata.ID, DocumentInput{
		Name:       existing.Metadata.Name,
		Tags:       existing.Metadata.Tags,
		Properties: existing.Metadata.Properties,
		Content:    raw,
	})
	return err
}

// GetSettings возвращает содержимое настроек пользователя. Если документа нет,
// он создаётся из фикстуры с тем же именем.
func (s *SettingsService) GetSettings(ctx context.Context, userID, name string) (json.RawMessage, error) {
	if err := validSettingsName(name); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByName(ctx, userID, name, model.TypeSettings)
	if err == nil {
		return doc.Content, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, path.Join(fixtures.DefaultSettingsDir, name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc, err = s.docs.Create(ctx, userID, model.TypeSettings, DocumentInput{Name: name, Content: data})
	if err != nil {
		return nil, err
	}
	return doc.Content, nil
}

// SaveSettings заменяет содержимое настроек пользователя (создаёт документ при отсутствии).
func (s *SettingsService) SaveSettings(ctx context.Context, userID, name string, content json.RawMessage) error {
	return s.save(ctx, userID, name, model.TypeSettings, content)
}

// GetSystemSettings возвращает системные настройки по имени.
func (s *SettingsService) GetSystemSettings(ctx context.Context, name string) (json.RawMessage, error) {
	if err := validSettingsName(name); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByName(ctx, SystemUserID, name, model.TypeSystemSettings)
	if err != nil {
		return nil, err
	}
	return doc.Content, nil
}

// SaveSystemSettings заменяет системные настройки. Проверка прав — на вызывающей стороне.
func (s *SettingsService) SaveSystemSettings(ctx context.Context, name string, content json.RawMessage) error {
	return s.save(ctx, SystemUserID, name, model.TypeSystemSettings, content)
}

func (s *SettingsService) save(ctx context.Context, userID, name, docType string, content json.RawMessage) error {
	if err := validSettingsName(name); err != nil {
		return err
	}
	if _, err := normalizeObject(content); err != nil {
		return err
	}
	return s.docs.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.docs.GetByName(ctx, userID, name, docType)
		if errors.Is(err, ErrNotFound) {
			_, err = s.docs.Create(ctx, userID, docType, DocumentInput{Name: name, Content: content})
			return err
		}
		if err != nil {
			return err
		}
		_, err = s.docs.Update(ctx, doc.Metadata.ID, DocumentInput{
			Name:       doc.Metadata.Name,
			Tags:       doc.Metadata.Tags,
			Properties: doc.Metadata.Properties,
			Content:    content,
		})
		return err
	})
}

func validSettingsName(name string) error {
	if name == "" || path.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%w: bad settings name %q", ErrInvalidInput, name)
	}
	return nil
}
