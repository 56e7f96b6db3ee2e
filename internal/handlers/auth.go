package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/dto"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/sirupsen/logrus"
)

var allowedPictureExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// AuthHandler coordinates account and user-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	orgService  *services.OrganizationService
	uploadDir   string
}

// NewAuthHandler creates a new AuthHandler. Profile pictures are written
// below uploadDir.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, orgService *services.OrganizationService, uploadDir string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		orgService:  orgService,
		uploadDir:   uploadDir,
	}
}

// Signup registers a new client account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		Message: "User created successfully",
		User:    dto.ToUserDTO(*user),
		Token:   token,
	})
}

// Login authenticates a user and issues a credential.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	user, org, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.ToLoginUserDTO(*user, org),
	})
}

// Logout closes the caller's push connection.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.UserIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	if !requireSelf(c, req.UserID.Uint64()) {
		return
	}

	h.authService.Logout(req.UserID.Uint64())
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// SearchUsers lists users ordered by relevance to the query parameter.
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.Search(c.Request.Context(), strings.TrimSpace(c.Query("query")), params)
	if err != nil {
		respondServiceError(c, "search_users", err)
		return
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users: dto.ToUserDTOs(users),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "get_user", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UploadProfilePicture stores the multipart profilePicture file for the
// caller and records its public path.
func (h *AuthHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok || !requireSelf(c, userID) {
		return
	}

	file, err := c.FormFile("profilePicture")
	if err != nil {
		apierrors.BadRequest(c, "profilePicture file is required")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPictureExts[ext] {
		apierrors.BadRequest(c, "Unsupported image type")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		logging.LogError("profile_picture_dir", err, logrus.Fields{"dir": h.uploadDir})
		apierrors.InternalError(c, "")
		return
	}
	name := fmt.Sprintf("%d-%s%s", userID, utils.GenerateInviteKey(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		logging.LogError("profile_picture_save", err, logrus.Fields{"user_id": userID})
		apierrors.InternalError(c, "")
		return
	}

	path := "/uploads/" + name
	if err := h.userService.SetProfilePicture(c.Request.Context(), userID, path); err != nil {
		respondServiceError(c, "profile_picture", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfilePictureResponse{ProfilePicture: path})
}

// GetUserOrganization returns the organization of the named user with its
// admin and members.
func (h *AuthHandler) GetUserOrganization(c *gin.Context) {
	var req dto.UserIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	if !requireSelf(c, req.UserID.Uint64()) {
		return
	}

	result, err := h.orgService.ForUser(c.Request.Context(), req.UserID.Uint64())
	if err != nil {
		respondServiceError(c, "get_user_organization", err)
		return
	}

	resp := dto.UserOrganizationResponse{
		Organization: dto.ToOrganizationDTO(*result.Organization, true),
		Members:      dto.ToUserDTOs(result.Members),
	}
	if result.Admin != nil {
		admin := dto.ToUserDTO(*result.Admin)
		resp.Admin = &admin
	}
	c.JSON(http.StatusOK, resp)
}

func parseUserIDParam(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

// currentOrganizationID is only called on routes behind RequireOrganization.
func currentOrganizationID(c *gin.Context) uint64 {
	orgID, _ := middleware.GetOrganizationID(c)
	return orgID
}
