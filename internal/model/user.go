package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// User — серверная модель пользователя.
type User struct {
	ID           string `gorm:"primaryKey;size:255"`
	Name         string `gorm:"not null;default:''"`
	PasswordHash string `gorm:"not null"`
	// IsOIDC — личность подтверждается внешним провайдером, вход по паролю запрещён.
	IsOIDC     bool           `gorm:"column:is_oidc;not null;default:false"`
	Properties datatypes.JSON `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// UserView — внешнее представление пользователя (без хеша пароля).
type UserView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	IsOIDC     bool            `json:"is_oidc"`
	Properties json.RawMessage `json:"properties"`
}

// View строит внешнее представление пользователя.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		IsOIDC:     u.IsOIDC,
		Properties: RawOrEmptyObject(u.Properties),
	}
}
