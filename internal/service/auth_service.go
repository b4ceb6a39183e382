package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
)

// AuthService отвечает за вход администраторов.
type AuthService struct {
	repo         repository.AdminRepository
	tokenManager *TokenManager
}

// CreateAdminInput: данные нового администратора.
type CreateAdminInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginResult возвращает администратора и его токен.
type LoginResult struct {
	Admin *entity.AdminUser
	Token *AccessToken
}

func NewAuthService(repo repository.AdminRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{repo: repo, tokenManager: tokenManager}
}

// CreateAdmin заводит администратора (используется из reportctl).
func (s *AuthService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*entity.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation("некорректный email", map[string]string{"email": err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation("пароль не подходит", map[string]string{"password": err.Error()})
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "администратор с таким email уже существует")
	} else if !apperror.IsNotFound(err) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = email
	}

	admin := &entity.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать администратора")
	}
	return admin, nil
}

// Login проверяет пароль и выдаёт access токен.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить администратора")
	}
	if !admin.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(admin)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось выпустить токен: %w", err)
	}

	if err := s.repo.TouchLastLogin(ctx, admin.ID); err != nil {
		logger.Component("auth").WithError(err).WithField("admin_id", admin.ID).Warn("не удалось обновить время входа")
	}
	return &LoginResult{Admin: admin, Token: token}, nil
}

// Authenticate проверяет токен и что администратор всё ещё активен.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.AdminUser, error) {
	adminID, role, err := s.tokenManager.ParseAccess(token)
	if err != nil || role != RoleAdmin {
		return nil, apperror.ErrUnauthorized
	}
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить администратора")
	}
	if !admin.IsActive {
		return nil, apperror.ErrForbidden
	}
	return admin, nil
}
