package repo

import (
	"Sidekick/internal/model"
	"context"

	"gorm.io/gorm"
)

// metadataColumns — столбцы документа без содержимого (для листинга).
var metadataColumns = []string{
	"id", "user_id", "type", "name", "visibility", "created_date", "updated_date", "properties",
}

// DocumentRepository определяет контракт доступа к Document для слоя сервиса.
// Проверка владельца здесь не выполняется.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error

	// GetByID возвращает gorm.ErrRecordNotFound, если документа нет.
	GetByID(ctx context.Context, id string) (*model.Document, error)

	// GetByName ищет документ по (user_id, name, type). Уникальность не гарантируется:
	// возвращается самый ранний по created_date.
	GetByName(ctx context.Context, userID, name, docType string) (*model.Document, error)

	// Update обновляет указанные столбцы документа.
	Update(ctx context.Context, id string, updates map[string]any) error

	// Delete удаляет строку документа; gorm.ErrRecordNotFound, если её не было.
	Delete(ctx context.Context, id string) error

	// List возвращает документы типа docType без содержимого. Пустой userID — по всем пользователям.
	List(ctx context.Context, docType, userID string) ([]model.Document, error)

	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// RepointOwner переносит все документы oldUserID на newUserID.
	RepointOwner(ctx context.Context, oldUserID, newUserID string) error
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepository создаёт реализацию репозитория для Document.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return conn(ctx, r.db).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := conn(ctx, r.db).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) GetByName(ctx context.Context, userID, name, docType string) (*model.Document, error) {
	var doc model.Document
	err := conn(ctx, r.db).
		Where("user_id = ? AND name = ? AND type = ?", userID, name, docType).
		Order("created_date ASC").Order("id ASC").
		Take(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := conn(ctx, r.db).Model(&model.Document{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return exists(ctx, r.db, &model.Document{}, id)
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Document{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) List(ctx context.Context, docType, userID string) ([]model.Document, error) {
	q := conn(ctx, r.db).Select(metadataColumns).Where("type = ?", docType)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var docs []model.Document
	if err := q.Order("updated_date DESC").Order("id ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).Model(&model.Document{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *documentRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tx := conn(ctx, r.db).Where("user_id = ?", userID).Delete(&model.Document{})
	return tx.RowsAffected, tx.Error
}

func (r *documentRepo) RepointOwner(ctx context.Context, oldUserID, newUserID string) error {
	return conn(ctx, r.db).Model(&model.Document{}).
		Where("user_id = ?", oldUserID).
		Update("user_id", newUserID).Error
}
