package repo

import (
	"Sidekick/internal/model"
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository — доступ к глобальным тегам и их связям с документами и пользователями.
type TagRepository interface {
	// AddTags добавляет теги документу и словарю пользователя. Пустые имена
	// пропускаются, повторное добавление не создаёт дублей.
	AddTags(ctx context.Context, tags []string, documentID, userID string) error
	// ClearDocumentTags удаляет связи тегов с документами. Сами теги остаются.
	ClearDocumentTags(ctx context.Context, documentIDs ...string) error
	ClearUserTags(ctx context.Context, userID string) error
	// DocumentTags возвращает отсортированные теги по каждому документу.
	DocumentTags(ctx context.Context, documentIDs ...string) (map[string][]string, error)
	UserTags(ctx context.Context, userID string) ([]string, error)
	RepointUserTags(ctx context.Context, oldUserID, newUserID string) error
}

type tagRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTagRepository создаёт реализацию TagRepository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db, now: time.Now}
}

// normalizeTags убирает пустые и повторяющиеся имена, сортирует результат.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *tagRepo) AddTags(ctx context.Context, tags []string, documentID, userID string) error {
	names := normalizeTags(tags)
	if len(names) == 0 {
		return nil
	}
	now := model.FormatDate(r.now())
	db := conn(ctx, r.db)

	rows := make([]model.Tag, 0, len(names))
	for _, n := range names {
		rows = append(rows, model.Tag{Name: n, CreatedDate: now, UpdatedDate: now})
	}
	// Повторная вставка существующего тега — no-op.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return err
	}

	if documentID != "" {
		links := make([]model.DocumentTag, 0, len(names))
		for _, n := range names {
			links = append(links, model.DocumentTag{DocumentID: documentID, TagName: n, CreatedDate: now, UpdatedDate: now})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return err
		}
	}

	if userID != "" {
		links := make([]model.UserTag, 0, len(names))
		for _, n := range names {
			links = append(links, model.UserTag{UserID: userID, TagName: n, CreatedDate: now, UpdatedDate: now})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *tagRepo) ClearDocumentTags(ctx context.Context, documentIDs ...string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("document_id IN ?", documentIDs).Delete(&model.DocumentTag{}).Error
}

func (r *tagRepo) ClearUserTags(ctx context.Context, userID string) error {
	return conn(ctx, r.db).Where("user_id = ?", userID).Delete(&model.UserTag{}).Error
}

func (r *tagRepo) DocumentTags(ctx context.Context, documentIDs ...string) (map[string][]string, error) {
	out := make(map[string][]string, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}
	var links []model.DocumentTag
	err := conn(ctx, r.db).
		Where("document_id IN ?", documentIDs).
		Order("document_id ASC").Order("tag_name ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.DocumentID] = append(out[l.DocumentID], l.TagName)
	}
	return out, nil
}

func (r *tagRepo) UserTags(ctx context.Context, userID string) ([]string, error) {
	names := []string{}
	err := conn(ctx, r.db).Model(&model.UserTag{}).
		Where("user_id = ?", userID).
		Order("tag_name ASC").
		Pluck("tag_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *tagRepo) RepointUserTags(ctx context.Context, oldUserID, newUserID string) error {
	return conn(ctx, r.db).Model(&model.UserTag{}).
		Where("user_id = ?", oldUserID).
		Update("user_id", newUserID).Error
}
