package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	res, err := service.Register(ctx, RegisterInput{
		Email:        "owner@example.com",
		Password:     "password123",
		Name:         "Jess Carter",
		BusinessName: "CleanCo",
	}, map[string]string{"ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if res.User.ID == uuid.Nil {
		t.Fatalf("user ID должен быть установлен")
	}
	if res.User.BusinessName == nil || *res.User.BusinessName != "CleanCo" {
		t.Fatalf("название бизнеса должно сохраниться")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	loginRes, err := service.Login(ctx, LoginInput{
		Email:    "owner@example.com",
		Password: "password123",
	}, nil)
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if loginRes.TokenPair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	in := RegisterInput{Email: "owner@example.com", Password: "password123", Name: "Jess Carter"}
	if _, err := service.Register(ctx, in, nil); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if _, err := service.Register(ctx, in, nil); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("ожидалась ErrEmailTaken, получили %v", err)
	}
}

func TestAuthService_ValidationErrors(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"невалидный email", RegisterInput{Email: "not-an-email", Password: "password123", Name: "Jess"}},
		{"короткий пароль", RegisterInput{Email: "owner@example.com", Password: "short", Name: "Jess"}},
		{"пустое имя", RegisterInput{Email: "owner@example.com", Password: "password123", Name: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Register(ctx, tc.in, nil); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ожидалась ErrInvalidInput, получили %v", err)
			}
		})
	}

	if _, err := service.Login(ctx, LoginInput{Email: "not-an-email", Password: "whatever"}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("login с невалидным email должен давать ErrInvalidInput, получили %v", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: uuid.New(), Email: "owner@example.com", Name: "Jess", PasswordHash: string(hash)}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	if _, err := service.Login(ctx, LoginInput{Email: "owner@example.com", Password: "wrong"}, nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ожидалась ErrInvalidCredentials, получили %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		Name:         "Jess",
		PasswordHash: string(hash),
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	tokenPair, accessExp, refreshExp, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}
	if accessExp.After(refreshExp) {
		t.Fatalf("access должен истекать раньше refresh")
	}

	repo.sessions[tokenPair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	newPair, err := service.Refresh(ctx, tokenPair.RefreshToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}

	if newPair.RefreshToken == tokenPair.RefreshToken {
		t.Fatalf("ожидался новый refresh токен")
	}
	if _, ok := repo.sessions[tokenPair.RefreshToken]; ok {
		t.Fatalf("старая сессия должна быть удалена")
	}
}

func TestAuthService_RefreshUnknownSession(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	user := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	tokenPair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	// Токен валиден, но сессии в базе нет (например, после logout).
	if _, err := service.Refresh(context.Background(), tokenPair.RefreshToken, nil); err == nil {
		t.Fatalf("refresh без сессии должен отклоняться")
	}
}
