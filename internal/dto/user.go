package dto

import (
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

// MessageResponse is the body of responses that carry only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserIDRequest is the body of endpoints that name their subject user.
type UserIDRequest struct {
	UserID utils.FlexibleID `json:"user_id" binding:"required"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	AccountStatus  string          `json:"account_status"`
	OrganizationID *uint64         `json:"organization_id"`
	ProfilePicture *string         `json:"profile_picture"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LoginUserDTO adds the caller's organization context to the login response.
type LoginUserDTO struct {
	UserDTO
	OrganizationName *string `json:"organization_name"`
	AdminEmail       *string `json:"admin_email"`
}

type SignupResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
	Token   string  `json:"token"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  LoginUserDTO `json:"user"`
}

type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type ProfilePictureResponse struct {
	ProfilePicture string `json:"profilePicture"`
}

// UserOrganizationResponse describes the organization a user belongs to.
type UserOrganizationResponse struct {
	Organization OrganizationDTO `json:"organization"`
	Admin        *UserDTO        `json:"admin,omitempty"`
	Members      []UserDTO       `json:"members"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		AccountStatus:  user.AccountStatus,
		OrganizationID: user.OrganizationID,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, u := range users {
		result[i] = ToUserDTO(u)
	}
	return result
}

// ToLoginUserDTO converts a user and its optional organization.
func ToLoginUserDTO(user models.User, org *models.Organization) LoginUserDTO {
	dto := LoginUserDTO{UserDTO: ToUserDTO(user)}
	if org != nil {
		dto.OrganizationName = &org.Name
		dto.AdminEmail = &org.AdminEmail
	}
	return dto
}
