package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// AuthFSStore — файловое хранилище токена и контекста пользователя для CLI.
// TokenFile переопределяет путь к файлу токена; пусто — каталог конфигурации пользователя.
type AuthFSStore struct {
	TokenFile string
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "Sidekick")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func (s AuthFSStore) tokenPath() (string, error) {
	if s.TokenFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.TokenFile), 0o700); err != nil {
			return "", err
		}
		return s.TokenFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth_token"), nil
}

func lastLoginPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_login"), nil
}

// readTrimmed читает файл и обрезает завершающие пробелы и переводы строк.
func readTrimmed(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), " \t\r\n"), nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	tok, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", errors.New("empty token file")
	}
	return tok, nil
}

// Clear удаляет файл токена; отсутствие файла ошибкой не считается.
func (s AuthFSStore) Clear() error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveLogin сохраняет id пользователя, под которым выполнен вход.
func (AuthFSStore) SaveLogin(login string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return errors.New("empty login")
	}
	p, err := lastLoginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(login), 0o600)
}

// LoadLogin читает id пользователя из файла.
func (AuthFSStore) LoadLogin() (string, error) {
	p, err := lastLoginPath()
	if err != nil {
		return "", err
	}
	login, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("no stored login")
	}
	return login, nil
}
