package repo

// UserContextStore абстракция для хранения контекста пользователя (id последнего входа).
type UserContextStore interface {
	SaveLogin(login string) error
	LoadLogin() (string, error)
}

// AuthStore — токен вместе с контекстом пользователя.
type AuthStore interface {
	TokenStore
	UserContextStore
}
