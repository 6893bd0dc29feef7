package service

import (
	"context"
	"os"
	"time"

	"fieldops/internal/apperr"
	"fieldops/internal/model"
	"fieldops/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin office tech"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
	Role  string `json:"role" binding:"omitempty,oneof=admin office tech"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Create(ctx context.Context, accountID uuid.UUID, req CreateUserRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (TokenResponse, error)
	Get(ctx context.Context, accountID uuid.UUID, id string) (UserResponse, error)
	List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, accountID uuid.UUID, id string) error
}

type userService struct {
	repo      repository.UserRepository
	jwtSecret []byte
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, jwtSecret []byte) UserService {
	return &userService{repo: repo, jwtSecret: jwtSecret}
}

func (s *userService) Create(ctx context.Context, accountID uuid.UUID, req CreateUserRequest) (UserResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, apperr.Validationf("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, apperr.Validationf("failed to hash password")
	}

	user := model.User{
		AccountID: accountID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashedPassword),
		Role:      req.Role,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// Login verifies credentials and issues a signed token carrying the user's
// account for tenant scoping of every subsequent request.
func (s *userService) Login(ctx context.Context, req LoginUserRequest) (TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return TokenResponse{}, apperr.Validationf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenResponse{}, apperr.Validationf("invalid email or password")
	}

	expiry := time.Hour * 24
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		if d, parseErr := time.ParseDuration(raw + "h"); parseErr == nil {
			expiry = d
		}
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"acct": user.AccountID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(expiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{Token: signed}, nil
}

func (s *userService) Get(ctx context.Context, accountID uuid.UUID, id string) (UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, apperr.Validationf("invalid user id")
	}
	user, err := s.repo.GetByID(ctx, accountID, userID)
	if err != nil {
		return UserResponse{}, asNotFound(err, "user")
	}
	return toUserResponse(*user), nil
}

func (s *userService) List(ctx context.Context, accountID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, accountID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result, total, nil
}

func (s *userService) Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateUserRequest) (UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, apperr.Validationf("invalid user id")
	}
	user, err := s.repo.GetByID(ctx, accountID, userID)
	if err != nil {
		return UserResponse{}, asNotFound(err, "user")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(*user), nil
}

func (s *userService) Delete(ctx context.Context, accountID uuid.UUID, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid user id")
	}
	if _, err := s.repo.GetByID(ctx, accountID, userID); err != nil {
		return asNotFound(err, "user")
	}
	return s.repo.Delete(ctx, accountID, userID)
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		AccountID: u.AccountID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
