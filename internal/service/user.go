package service

import (
	"Sidekick/internal/model"
	"Sidekick/internal/repo"
	"Sidekick/internal/stats"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserSeeder заполняет стартовые документы нового пользователя.
type UserSeeder interface {
	Seed(ctx context.Context, userID string) error
}

// CreateUserInput — параметры создания пользователя.
type CreateUserInput struct {
	ID         string
	Password   string
	Name       string
	IsOIDC     bool
	Properties json.RawMessage
}

// UserService — хранилище учётных записей и проверка паролей.
type UserService struct {
	users  repo.UserRepository
	docs   *DocumentService
	tags   repo.TagRepository
	tx     repo.Transactor
	seeder UserSeeder
	logger *zap.SugaredLogger
	stats  stats.Collector

	cost      int
	dummyHash []byte
}

// UserOption настраивает UserService.
type UserOption func(*UserService)

// WithBcryptCost задаёт стоимость bcrypt (в тестах — bcrypt.MinCost).
func WithBcryptCost(cost int) UserOption {
	return func(s *UserService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithStats подключает счётчики событий.
func WithStats(c stats.Collector) UserOption {
	return func(s *UserService) {
		if c != nil {
			s.stats = c
		}
	}
}

func NewUserService(
	users repo.UserRepository,
	docs *DocumentService,
	tags repo.TagRepository,
	tx repo.Transactor,
	seeder UserSeeder,
	logger *zap.SugaredLogger,
	opts ...UserOption,
) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &UserService{
		users:  users,
		docs:   docs,
		tags:   tags,
		tx:     tx,
		seeder: seeder,
		logger: logger,
		stats:  stats.Nop{},
		cost:   bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	// хеш-заглушка выравнивает время ответа для несуществующих пользователей
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	return s
}

// Register — публичное создание аккаунта. Идентификаторы, похожие на системный, запрещены.
func (s *UserService) Register(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if reservedUserID(in.ID) {
		return nil, ErrReservedUserID
	}
	return s.CreateUser(ctx, in)
}

func reservedUserID(id string) bool {
	return strings.Contains(strings.ToLower(id), SystemUserID)
}

// CreateUser создаёт пользователя и его стартовые документы в одной транзакции.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	password := in.Password
	if in.IsOIDC {
		password = randomSecret()
	} else if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	props, err := normalizeObject(in.Properties)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           in.ID,
		Name:         in.Name,
		PasswordHash: hash,
		IsOIDC:       in.IsOIDC,
		Properties:   props,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.users.GetUserByID(ctx, in.ID)
		if err == nil {
			return ErrDuplicateUser
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := s.users.CreateUser(ctx, user); err != nil {
			// гонка двух регистраций с одним id
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return err
		}
		if tags := propertyTags(props); len(tags) > 0 {
			if err := s.tags.AddTags(ctx, tags, "", user.ID); err != nil {
				return err
			}
		}
		if s.seeder != nil {
			return s.seeder.Seed(ctx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stats.Inc(stats.UsersCreated)
	s.logger.Infow("user created", "user_id", user.ID, "is_oidc", user.IsOIDC)
	return user, nil
}

// EnsureUser создаёт пользователя, если его ещё нет. created — был ли он создан.
func (s *UserService) EnsureUser(ctx context.Context, in CreateUserInput) (*model.User, bool, error) {
	u, err := s.users.GetUserByID(ctx, in.ID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	u, err = s.CreateUser(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// EnsureOIDCUser — вход через внешнего провайдера: создаёт пользователя при первом
// входе, позже обновляет отображаемое имя.
func (s *UserService) EnsureOIDCUser(ctx context.Context, id, name string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CreateUser(ctx, CreateUserInput{ID: id, Name: name, IsOIDC: true})
	}
	if err != nil {
		return nil, err
	}
	if !u.IsOIDC {
		// id уже занят парольной учётной записью
		return nil, ErrDuplicateUser
	}
	if name != "" && name != u.Name {
		if err := s.users.UpdateUser(ctx, id, map[string]any{"name": name}); err != nil {
			return nil, err
		}
		u.Name = name
	}
	return u, nil
}

// Login проверяет пароль. Для несуществующего пользователя, неверного пароля
// и OIDC-пользователя возвращается одна и та же ошибка ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, id, password string) (*model.User, error) {
	u, err := s.verify(ctx, id, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.stats.Inc(stats.LoginFailures)
		}
		return nil, err
	}
	s.stats.Inc(stats.Logins)
	return u, nil
}

func (s *UserService) verify(ctx context.Context, id, password string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.IsOIDC {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *UserService) ChangePassword(ctx context.Context, id, current, newPassword string) error {
	if _, err := s.verify(ctx, id, current); err != nil {
		return err
	}
	return s.setPassword(ctx, id, newPassword)
}

// ResetPassword задаёт новый пароль без проверки текущего. Права actingID
// проверяет вызывающий слой (IsAdmin).
func (s *UserService) ResetPassword(ctx context.Context, actingID, id, newPassword string) error {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if u.IsOIDC {
		return ErrOIDCUser
	}
	if err := s.setPassword(ctx, id, newPassword); err != nil {
		return err
	}
	s.logger.Infow("password reset", "user_id", id, "acting_user_id", actingID)
	return nil
}

func (s *UserService) setPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return mapNotFound(s.users.UpdateUser(ctx, id, map[string]any{"password_hash": hash}))
}

// IsAdmin читает properties.roles.admin. Любое значение кроме true, как и ошибка, — false.
func (s *UserService) IsAdmin(ctx context.Context, id string) bool {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return false
	}
	roles, ok := decodeObject(u.Properties)["roles"].(map[string]any)
	if !ok {
		return false
	}
	admin, ok := roles["admin"].(bool)
	return ok && admin
}

// GetUser возвращает пользователя по id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.UserView, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserView, 0, len(users))
	for i := range users {
		out = append(out, users[i].View())
	}
	return out, nil
}

func (s *UserService) UpdateUserName(ctx context.Context, id, name string) error {
	return mapNotFound(s.users.UpdateUser(ctx, id, map[string]any{"name": name}))
}

// DeleteUser удаляет пользователя со всеми документами и связями тегов.
// Отсутствующий пользователь — false без ошибки.
func (s *UserService) DeleteUser(ctx context.Context, id string) (bool, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.docs.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := s.tags.ClearUserTags(ctx, id); err != nil {
			return err
		}
		return s.users.DeleteUser(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("delete of missing user", "user_id", id)
			return false, nil
		}
		return false, err
	}
	s.stats.Inc(stats.UsersDeleted)
	s.logger.Infow("user deleted", "user_id", id)
	return true, nil
}

// RenameUser переносит учётную запись oldID на newID вместе с документами и тегами.
func (s *UserService) RenameUser(ctx context.Context, oldID, newID, displayName string) error {
	if strings.TrimSpace(newID) == "" {
		return fmt.Errorf("%w: new user id is required", ErrInvalidInput)
	}
	if newID != oldID && reservedUserID(newID) {
		return ErrReservedUserID
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		old, err := s.users.GetUserByID(ctx, oldID)
		if err != nil {
			return mapNotFound(err)
		}
		if old.IsOIDC {
			return ErrOIDCUser
		}
		if newID == oldID {
			if displayName == "" {
				return nil
			}
			return s.users.UpdateUser(ctx, oldID, map[string]any{"name": displayName})
		}
		if _, err := s.users.GetUserByID(ctx, newID); err == nil {
			return ErrDuplicateUser
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		name := displayName
		if name == "" {
			name = old.Name
		}
		renamed := &model.User{
			ID:           newID,
			Name:         name,
			PasswordHash: old.PasswordHash,
			Properties:   old.Properties,
		}
		if _, err := s.users.CreateUser(ctx, renamed); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return err
		}
		if err := s.docs.docs.RepointOwner(ctx, oldID, newID); err != nil {
			return err
		}
		if err := s.tags.RepointUserTags(ctx, oldID, newID); err != nil {
			return err
		}
		return s.users.DeleteUser(ctx, oldID)
	})
	if err != nil {
		return err
	}
	s.stats.Inc(stats.UsersRenamed)
	s.logger.Infow("user renamed", "old_user_id", oldID, "user_id", newID)
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return "", err
	}
	return string(h), nil
}

// propertyTags извлекает properties.tags (список строк), если он есть.
func propertyTags(props []byte) []string {
	list, ok := decodeObject(props)["tags"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func randomSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
