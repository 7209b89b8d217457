package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name          string   `json:"name" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Phone         string   `json:"phone"`
	Password      string   `json:"password" binding:"required,min=6"`
	Role          string   `json:"role" binding:"required,oneof=SYSTEM_ADMIN FINANCE_ADMIN LEADER USER"`
	CompanyIDs    []string `json:"company_ids"`
	DepartmentIDs []string `json:"department_ids"`
}

type UpdateUserRequest struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Phone         *string  `json:"phone"`
	Password      *string  `json:"password" binding:"omitempty,min=6"`
	Role          *string  `json:"role" binding:"omitempty,oneof=SYSTEM_ADMIN FINANCE_ADMIN LEADER USER"`
	IsActive      *bool    `json:"is_active"`
	CompanyIDs    []string `json:"company_ids"`
	DepartmentIDs []string `json:"department_ids"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService interface {
	CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error)
	UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*model.User, error)
	DeactivateUser(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type userService struct {
	userRepo       repository.UserRepository
	companyRepo    repository.CompanyRepository
	departmentRepo repository.DepartmentRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewUserService(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	departmentRepo repository.DepartmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{
		userRepo:       userRepo,
		companyRepo:    companyRepo,
		departmentRepo: departmentRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

const refreshTokenTTL = 7 * 24 * time.Hour

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// companyRolesOnly: only LEADER and FINANCE_ADMIN carry company memberships;
// for everyone else the assignment list is ignored and cleared.
func companyScopedRole(role string) bool {
	return role == model.RoleLeader || role == model.RoleFinanceAdmin
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *userService) CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*model.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hashed),
		Role:         req.Role,
		IsActive:     true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.userRepo.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		if len(req.CompanyIDs) > 0 && companyScopedRole(req.Role) {
			ids, parseErr := parseUUIDs(req.CompanyIDs)
			if parseErr != nil {
				return parseErr
			}
			companies, findErr := s.companyRepo.FindByIDs(txCtx, ids)
			if findErr != nil {
				return fmt.Errorf("failed to load companies: %w", findErr)
			}
			if replaceErr := s.userRepo.ReplaceCompanies(txCtx, user, companies); replaceErr != nil {
				return fmt.Errorf("failed to assign companies: %w", replaceErr)
			}
		}

		if len(req.DepartmentIDs) > 0 {
			ids, parseErr := parseUUIDs(req.DepartmentIDs)
			if parseErr != nil {
				return parseErr
			}
			departments, findErr := s.departmentRepo.FindByIDs(txCtx, ids)
			if findErr != nil {
				return fmt.Errorf("failed to load departments: %w", findErr)
			}
			if replaceErr := s.userRepo.ReplaceDepartments(txCtx, user, departments); replaceErr != nil {
				return fmt.Errorf("failed to assign departments: %w", replaceErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"email": req.Email, "role": req.Role})
		audit := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionCreateUser,
			EntityID:   user.ID.String(),
			EntityName: req.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return s.userRepo.FindByIDWithMemberships(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("user is inactive: %w", apperr.ErrForbidden)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	loaded, err := s.userRepo.FindByIDWithMemberships(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	return loaded, pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrForbidden)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired: %w", apperr.ErrForbidden)
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil || !user.IsActive {
		return nil, fmt.Errorf("user unavailable: %w", apperr.ErrForbidden)
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.DeleteRefreshTokensForUser(ctx, userID)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refresh := hex.EncodeToString(buf)

	if err := s.userRepo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithMemberships(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.List(ctx, page, limit)
}

func (s *userService) UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Password != nil {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				return fmt.Errorf("failed to hash password: %w", hashErr)
			}
			user.PasswordHash = string(hashed)
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}

		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if req.CompanyIDs != nil {
			var companies []model.Company
			if companyScopedRole(user.Role) {
				ids, parseErr := parseUUIDs(req.CompanyIDs)
				if parseErr != nil {
					return parseErr
				}
				companies, err = s.companyRepo.FindByIDs(txCtx, ids)
				if err != nil {
					return fmt.Errorf("failed to load companies: %w", err)
				}
			}
			if err := s.userRepo.ReplaceCompanies(txCtx, user, companies); err != nil {
				return fmt.Errorf("failed to assign companies: %w", err)
			}
		} else if req.Role != nil && !companyScopedRole(user.Role) {
			// Role changed away from a company-scoped one: drop memberships so
			// stale rows can never widen a future leader scope.
			if err := s.userRepo.ReplaceCompanies(txCtx, user, nil); err != nil {
				return fmt.Errorf("failed to clear companies: %w", err)
			}
		}

		if req.DepartmentIDs != nil {
			ids, parseErr := parseUUIDs(req.DepartmentIDs)
			if parseErr != nil {
				return parseErr
			}
			departments, findErr := s.departmentRepo.FindByIDs(txCtx, ids)
			if findErr != nil {
				return fmt.Errorf("failed to load departments: %w", findErr)
			}
			if err := s.userRepo.ReplaceDepartments(txCtx, user, departments); err != nil {
				return fmt.Errorf("failed to assign departments: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"user_id": id.String()})
		audit := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionUpdateUser,
			EntityID:   id.String(),
			EntityName: user.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return s.userRepo.FindByIDWithMemberships(ctx, id)
}

// DeactivateUser soft-deletes: the account stays for audit history but can no
// longer authenticate.
func (s *userService) DeactivateUser(ctx context.Context, actor *model.User, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		user.IsActive = false
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
		if err := s.userRepo.DeleteRefreshTokensForUser(txCtx, id); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionDeactivateUser,
			EntityID:   id.String(),
			EntityName: user.Name,
		}
		return s.auditRepo.Log(txCtx, audit)
	})
}
