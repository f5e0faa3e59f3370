package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
)

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByVerificationToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.VerificationToken == token && u.VerificationExp != nil && u.VerificationExp.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	if u, ok := m.users[id]; ok {
		u.EmailVerified = true
		u.VerificationToken = ""
		u.VerificationExp = nil
	}
	return nil
}

func (m *mockUserRepo) SetVerificationToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	if u, ok := m.users[id]; ok {
		u.VerificationToken = token
		u.VerificationExp = &expires
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func newAuthService(repo *mockUserRepo, pub *mockPublisher) *AuthService {
	return NewAuthService(repo, pub, "test-secret", time.Hour, testLogger())
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     "amine@example.com",
		Password:  "correct-horse",
		FirstName: "Amine",
		LastName:  "Ben Salah",
		Phone:     "21612345",
	}
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	pub := &mockPublisher{}
	svc := newAuthService(repo, pub)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	assert.False(t, resp.User.EmailVerified)

	stored := repo.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct-horse")))
	assert.NotEmpty(t, stored.VerificationToken)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, model.MailEmailVerification, pub.msgs[0].Kind)
	assert.Equal(t, stored.VerificationToken, pub.msgs[0].Token)
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})

	req := registerReq()
	req.Email = "not an email"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "amine@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "amine@example.com", resp.User.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "amine@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	repo := newMockUserRepo()
	pub := &mockPublisher{}
	svc := newAuthService(repo, pub)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	token := repo.users[resp.User.ID].VerificationToken

	user, err := svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.True(t, repo.users[resp.User.ID].EmailVerified)

	// Registration mail plus welcome mail.
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, model.MailWelcome, pub.msgs[1].Kind)

	// Tokens are single-use.
	_, err = svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_VerifyEmail_Expired(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo, &mockPublisher{})

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	stored := repo.users[resp.User.ID]
	expired := time.Now().Add(-time.Minute)
	stored.VerificationExp = &expired

	_, err = svc.VerifyEmail(context.Background(), stored.VerificationToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ResendVerification(t *testing.T) {
	repo := newMockUserRepo()
	pub := &mockPublisher{}
	svc := newAuthService(repo, pub)

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	oldToken := repo.users[resp.User.ID].VerificationToken

	require.NoError(t, svc.ResendVerification(context.Background(), resp.User.ID))
	assert.NotEqual(t, oldToken, repo.users[resp.User.ID].VerificationToken)
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, model.MailEmailVerification, pub.msgs[1].Kind)
}

func TestAuthService_ResendVerification_AlreadyVerified(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo, &mockPublisher{})

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	require.NoError(t, repo.MarkVerified(context.Background(), resp.User.ID))

	err = svc.ResendVerification(context.Background(), resp.User.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestAuthService_ResendVerification_NotFound(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), &mockPublisher{})
	err := svc.ResendVerification(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo, &mockPublisher{})

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	phone := "21698765"
	addr := &model.Address{Street: "5 Av Habib Bourguiba", City: "Sousse", PostalCode: "4000", Country: "Tunisie"}
	updated, err := svc.UpdateProfile(context.Background(), resp.User.ID, dto.UpdateProfileRequest{
		Phone:   &phone,
		Address: addr,
	})
	require.NoError(t, err)
	assert.Equal(t, "21698765", updated.Phone)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Sousse", updated.Address.City)
	assert.Equal(t, "Amine", updated.FirstName)
}
