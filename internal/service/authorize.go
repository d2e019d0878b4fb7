package service

import "Sidekick/internal/model"

// Access — вид доступа к документу.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
)

// Authorize проверяет, может ли actingUserID получить доступ к документу.
// Владелец может всё; shared-документы доступны остальным только на чтение.
// Аноним получает ErrUnauthorized, чужой пользователь — ErrForbidden.
func Authorize(actingUserID string, meta model.Metadata, access Access) error {
	if actingUserID == "" {
		return ErrUnauthorized
	}
	if meta.UserID == actingUserID {
		return nil
	}
	if access == AccessRead && meta.Visibility == model.VisibilityShared {
		return nil
	}
	return ErrForbidden
}
