package service

import "errors"

// Ошибки сервисного слоя. Хендлеры сопоставляют их с HTTP-статусами.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrOIDCUser           = errors.New("user is linked to an external identity provider")
	ErrInvalidInput       = errors.New("invalid input")
	ErrReservedUserID     = errors.New("user id is reserved")
)

// InvalidLoginMessage — единое сообщение при неудачном входе. Не раскрывает,
// существует ли пользователь.
const InvalidLoginMessage = "Invalid login"

// Зарезервированные учётные записи.
const (
	SystemUserID = "sidekick"
	AdminUserID  = "admin"
)
