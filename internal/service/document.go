package service

import (
	"Sidekick/internal/model"
	"Sidekick/internal/repo"
	"Sidekick/internal/stats"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentInput — изменяемые поля документа.
type DocumentInput struct {
	Name       string          `json:"name"`
	Tags       []string        `json:"tags"`
	Properties json.RawMessage `json:"properties"`
	Content    json.RawMessage `json:"content"`
}

// DocumentService — хранилище документов. Владельца не проверяет: это делает
// вызывающий слой через Authorize.
type DocumentService struct {
	users  repo.UserRepository
	docs   repo.DocumentRepository
	tags   repo.TagRepository
	tx     repo.Transactor
	logger *zap.SugaredLogger
	stats  stats.Collector
	now    func() time.Time
}

func NewDocumentService(
	users repo.UserRepository,
	docs repo.DocumentRepository,
	tags repo.TagRepository,
	tx repo.Transactor,
	logger *zap.SugaredLogger,
	collector stats.Collector,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if collector == nil {
		collector = stats.Nop{}
	}
	return &DocumentService{
		users:  users,
		docs:   docs,
		tags:   tags,
		tx:     tx,
		logger: logger,
		stats:  collector,
		now:    time.Now,
	}
}

// DefaultName — имя документа по умолчанию для типа.
func DefaultName(docType string) string {
	switch docType {
	case model.TypeChats:
		return "New Chat"
	case model.TypeNotes:
		return "New Note"
	default:
		return "New Document"
	}
}

// Create создаёт документ пользователя userID. Пользователь должен существовать.
func (s *DocumentService) Create(ctx context.Context, userID, docType string, in DocumentInput) (*model.DocumentView, error) {
	if docType == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrInvalidInput)
	}
	props, err := normalizeObject(in.Properties)
	if err != nil {
		return nil, err
	}
	content, err := normalizeValue(in.Content)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = DefaultName(docType)
	}

	now := model.FormatDate(s.now())
	doc := &model.Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        docType,
		Name:        name,
		Visibility:  model.VisibilityPrivate,
		CreatedDate: now,
		UpdatedDate: now,
		Properties:  props,
		Content:     content,
	}

	var view *model.DocumentView
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownUser
			}
			return err
		}
		if err := s.docs.Create(ctx, doc); err != nil {
			return err
		}
		if err := s.tags.AddTags(ctx, in.Tags, doc.ID, userID); err != nil {
			return err
		}
		tags, err := s.tags.DocumentTags(ctx, doc.ID)
		if err != nil {
			return err
		}
		view = doc.View(tags[doc.ID])
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			s.logger.Errorw("create document for unknown user", "user_id", userID, "type", docType)
		}
		return nil, err
	}
	s.stats.Inc(stats.DocumentsCreated)
	return view, nil
}

// Get возвращает документ по id.
func (s *DocumentService) Get(ctx context.Context, id string) (*model.DocumentView, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.view(ctx, doc)
}

// GetByName возвращает первый по дате создания документ с именем name и типом docType.
func (s *DocumentService) GetByName(ctx context.Context, userID, name, docType string) (*model.DocumentView, error) {
	doc, err := s.docs.GetByName(ctx, userID, name, docType)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.view(ctx, doc)
}

// Update полностью заменяет имя, теги, свойства и содержимое документа.
func (s *DocumentService) Update(ctx context.Context, id string, in DocumentInput) (*model.DocumentView, error) {
	props, err := normalizeObject(in.Properties)
	if err != nil {
		return nil, err
	}
	content, err := normalizeValue(in.Content)
	if err != nil {
		return nil, err
	}

	var view *model.DocumentView
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.docs.GetByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		name := in.Name
		if name == "" {
			name = DefaultName(doc.Type)
		}
		updates := map[string]any{
			"name":         name,
			"properties":   props,
			"content":      content,
			"updated_date": model.FormatDate(s.now()),
		}
		if err := s.docs.Update(ctx, id, updates); err != nil {
			return mapNotFound(err)
		}
		// теги заменяются целиком
		if err := s.tags.ClearDocumentTags(ctx, id); err != nil {
			return err
		}
		if err := s.tags.AddTags(ctx, in.Tags, id, doc.UserID); err != nil {
			return err
		}
		view, err = s.reload(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.stats.Inc(stats.DocumentsUpdated)
	return view, nil
}

// UpdateName меняет только имя документа.
func (s *DocumentService) UpdateName(ctx context.Context, id, name string) (*model.DocumentView, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.patch(ctx, id, map[string]any{"name": name})
}

// UpdateType переносит документ в другой тип (папку).
func (s *DocumentService) UpdateType(ctx context.Context, id, docType string) (*model.DocumentView, error) {
	if docType == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrInvalidInput)
	}
	return s.patch(ctx, id, map[string]any{"type": docType})
}

// UpdateVisibility меняет видимость документа: private или shared.
func (s *DocumentService) UpdateVisibility(ctx context.Context, id, visibility string) (*model.DocumentView, error) {
	if visibility != model.VisibilityPrivate && visibility != model.VisibilityShared {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, visibility)
	}
	return s.patch(ctx, id, map[string]any{"visibility": visibility})
}

func (s *DocumentService) patch(ctx context.Context, id string, updates map[string]any) (*model.DocumentView, error) {
	updates["updated_date"] = model.FormatDate(s.now())
	var view *model.DocumentView
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.docs.Update(ctx, id, updates); err != nil {
			return mapNotFound(err)
		}
		var err error
		view, err = s.reload(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.stats.Inc(stats.DocumentsUpdated)
	return view, nil
}

// Delete удаляет документ вместе со связями тегов и возвращает его последнее состояние.
// Отсутствующий документ не считается ошибкой: возвращается nil, nil.
func (s *DocumentService) Delete(ctx context.Context, id string) (*model.DocumentView, error) {
	var view *model.DocumentView
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if view, err = s.view(ctx, doc); err != nil {
			return err
		}
		if err := s.tags.ClearDocumentTags(ctx, id); err != nil {
			return err
		}
		return s.docs.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("delete of missing document", "document_id", id)
			return nil, nil
		}
		return nil, err
	}
	s.stats.Inc(stats.DocumentsDeleted)
	return view, nil
}

// DeleteByUser удаляет все документы пользователя и их связи тегов.
func (s *DocumentService) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := s.docs.ListIDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.tags.ClearDocumentTags(ctx, ids...); err != nil {
			return err
		}
		n, err = s.docs.DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.stats.Add(stats.DocumentsDeleted, float64(n))
	return n, nil
}

// List возвращает метаданные документов типа docType. Пустой userID — по всем пользователям.
func (s *DocumentService) List(ctx context.Context, docType, userID string) (*model.ListResult, error) {
	docs, err := s.docs.List(ctx, docType, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID)
	}
	tags, err := s.tags.DocumentTags(ctx, ids...)
	if err != nil {
		return nil, err
	}
	result := &model.ListResult{
		FileCount: len(docs),
		Status:    "OK",
		Message:   "All files read successfully",
		Documents: make([]model.Metadata, 0, len(docs)),
	}
	for i := range docs {
		result.Documents = append(result.Documents, docs[i].Meta(tags[docs[i].ID]))
	}
	return result, nil
}

func (s *DocumentService) reload(ctx context.Context, id string) (*model.DocumentView, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.view(ctx, doc)
}

func (s *DocumentService) view(ctx context.Context, doc *model.Document) (*model.DocumentView, error) {
	tags, err := s.tags.DocumentTags(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return doc.View(tags[doc.ID]), nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// UserTags возвращает словарь тегов пользователя.
func (s *DocumentService) UserTags(ctx context.Context, userID string) ([]string, error) {
	return s.tags.UserTags(ctx, userID)
}
