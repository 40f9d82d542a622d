package auth

import (
	"context"
	"testing"
	"time"

	"tourly/internal/profiles"
	"tourly/internal/shared/config"
	"tourly/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProfiles struct {
	profiles.Repository
	byID map[string]*profiles.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{byID: map[string]*profiles.Profile{}}
}

func (m *memoryProfiles) Create(_ context.Context, p *profiles.Profile) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return nil
}

func (m *memoryProfiles) GetByID(_ context.Context, id string) (*profiles.Profile, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, profiles.ErrProfileNotFound
}

func (m *memoryProfiles) GetRegisteredByEmail(_ context.Context, email string) (*profiles.Profile, error) {
	for _, p := range m.byID {
		if p.Email == email && p.IsRegistered() {
			return p, nil
		}
	}
	return nil, profiles.ErrProfileNotFound
}

func (m *memoryProfiles) RegisteredEmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetRegisteredByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryProfiles) UpdatePassword(_ context.Context, id, hash string) error {
	p, ok := m.byID[id]
	if !ok {
		return profiles.ErrProfileNotFound
	}
	p.PasswordHash = hash
	return nil
}

func newTestService(repo profiles.Repository) Service {
	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:           "auth-test-secret",
		JWTExpiresIn:     time.Minute,
		RefreshExpiresIn: time.Hour,
	}}
	return NewService(repo, cfg, logger.Discard())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryProfiles()
	svc := newTestService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "Ana@Example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "USER", resp.User.Role)
	assert.Equal(t, "registered", resp.User.ProfileType)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Register(ctx, &RegisterRequest{FirstName: "A", LastName: "B", Email: "ana@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	login, err := svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRequiresRefreshToken(t *testing.T) {
	repo := newMemoryProfiles()
	svc := newTestService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	pair, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryProfiles()
	svc := newTestService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "battery-staple"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{CurrentPassword: "correct-horse", NewPassword: "battery-staple"}))

	_, err = svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "battery-staple"})
	assert.NoError(t, err)
}
