package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/repository"
)

const verificationTokenTTL = 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthService struct {
	userRepo  repository.UserRepository
	notifier  NotificationPublisher
	jwtSecret []byte
	jwtExpiry time.Duration
	log       *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	notifier NotificationPublisher,
	jwtSecret string,
	jwtExpiry time.Duration,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !emailPattern.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	expires := time.Now().Add(verificationTokenTTL)

	user := &model.User{
		Email:             req.Email,
		Password:          string(hashed),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		Role:              model.RoleCustomer,
		VerificationToken: token,
		VerificationExp:   &expires,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendMail(model.MailMessage{
		Kind:      model.MailEmailVerification,
		Email:     user.Email,
		FirstName: user.FirstName,
		Token:     token,
	})

	jwtToken, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: jwtToken, User: toUserResponse(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

// VerifyEmail consumes a verification token. Tokens are single-use and
// time-boxed; an unknown or expired token fails with ErrInvalidToken.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.EmailVerified = true

	s.sendMail(model.MailMessage{
		Kind:      model.MailWelcome,
		Email:     user.Email,
		FirstName: user.FirstName,
	})

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	token, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}

	s.sendMail(model.MailMessage{
		Kind:      model.MailEmailVerification,
		Email:     user.Email,
		FirstName: user.FirstName,
		Token:     token,
	})
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// sendMail publishes a mail event best-effort; registration and verification
// never fail because the mail pipeline is down.
func (s *AuthService) sendMail(msg model.MailMessage) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.log.Error("publish mail event", "kind", msg.Kind, "error", err)
	}
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Phone:         user.Phone,
		Address:       user.Address,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}
