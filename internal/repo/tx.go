package repo

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor выполняет fn в одной транзакции. Репозитории, вызванные с
// контекстом из fn, работают внутри этой транзакции.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor создаёт Transactor поверх gorm.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTx открывает транзакцию; вложенный вызов переиспользует уже открытую.
func (t *gormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn возвращает транзакцию из контекста либо обычное соединение.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// exists возвращает gorm.ErrRecordNotFound, если строки с таким id нет.
// Нужна после UPDATE с нулём затронутых строк: mysql не считает строку
// затронутой, если значения не изменились.
func exists(ctx context.Context, db *gorm.DB, m any, id string) error {
	var count int64
	if err := conn(ctx, db).Model(m).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
