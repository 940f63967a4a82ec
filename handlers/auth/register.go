package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
	authutil "github.com/internship-hub/placement-api/utils/auth"
	"github.com/internship-hub/placement-api/utils/response"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,min=2"`
	Role       string `json:"role,omitempty"` // Optional, defaults to "student"
	Department string `json:"department,omitempty"`
	StudentID  string `json:"student_id,omitempty"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "Email, password, and name are required")
	}

	if len(req.Password) < authutil.MinPasswordLength {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	// Set default role if not provided
	if req.Role == "" {
		req.Role = string(lifecycle.RoleStudent)
	}

	role := lifecycle.Role(req.Role)
	switch role {
	case lifecycle.RoleStudent:
		if req.StudentID == "" {
			return response.BadRequest(c, "Student accounts require a student_id")
		}
		if req.Department == "" {
			return response.BadRequest(c, "Student accounts require a department")
		}
	case lifecycle.RoleAdvisor:
		if req.Department == "" {
			return response.BadRequest(c, "Advisor accounts require a department")
		}
	case lifecycle.RoleAdmin:
		// no scope fields
	default:
		return response.BadRequest(c, "Invalid role. Must be 'student', 'advisor', or 'admin'")
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         req.Role,
		Department:   req.Department,
		StudentID:    req.StudentID,
		TokenVersion: 0,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	res, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, res)
}

// issueTokens builds the access/refresh pair for a user
func (h *AuthHandler) issueTokens(user *model.User) (TokenResponse, error) {
	identity := authutil.TokenIdentity{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Department:   user.Department,
		StudentID:    user.StudentID,
		TokenVersion: user.TokenVersion,
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(identity)
	if err != nil {
		return TokenResponse{}, err
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(identity)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       user.Role,
			Department: user.Department,
			StudentID:  user.StudentID,
			CreatedAt:  user.CreatedAt,
			UpdatedAt:  user.UpdatedAt,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    accessTokenLifetime,
	}, nil
}
