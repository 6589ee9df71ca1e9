package handler

import (
	"net/http"
	"strconv"

	"umeals/backend/internal/database"
	"umeals/backend/internal/models"
	"umeals/backend/internal/social"
	"umeals/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username   string `json:"username" binding:"required" example:"testuser"`
	FirstName  string `json:"first_name" example:"Test"`
	Email      string `json:"email" binding:"required,email" example:"test@example.com"`
	Password   string `json:"password" binding:"required,min=8" example:"password123"`
	RePassword string `json:"re_password" binding:"required" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateProfileInput defines the editable fields of a profile.
type UpdateProfileInput struct {
	FirstName string `json:"first_name" example:"Test"`
	Email     string `json:"email" binding:"omitempty,email" example:"test@example.com"`
	Photo     string `json:"photo" example:"https://cdn.example.com/users/42.jpg"`
}

// PublicProfileResponse defines the structure for a user's public profile.
type PublicProfileResponse struct {
	ID           uint   `json:"id" example:"1"`
	Username     string `json:"username" example:"testuser"`
	FirstName    string `json:"first_name" example:"Test"`
	Photo        string `json:"photo,omitempty"`
	FriendsCount int64  `json:"friends_count"`
}

// PrivateProfileResponse defines the structure for the authenticated user's own profile.
type PrivateProfileResponse struct {
	ID              uint   `json:"id" example:"1"`
	Username        string `json:"username" example:"testuser"`
	FirstName       string `json:"first_name" example:"Test"`
	Email           string `json:"email" example:"test@example.com"`
	Photo           string `json:"photo,omitempty"`
	FriendsCount    int64  `json:"friends_count"`
	PendingRequests int64  `json:"pending_requests"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse represents a generic outcome message.
type MessageResponse struct {
	Message string `json:"message" example:"Friend request sent."`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user with its profile and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.RePassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords don't match."})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	// The account and its profile are created together or not at all.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: user.ID}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- Profile Handlers ---

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	manager := social.NewManager(database.DB)
	var pending int64
	database.DB.Model(&models.FriendRequest{}).Where("to_profile_id = ?", profile.ID).Count(&pending)

	c.JSON(http.StatusOK, PrivateProfileResponse{
		ID:              profile.User.ID,
		Username:        profile.User.Username,
		FirstName:       profile.User.FirstName,
		Email:           profile.User.Email,
		Photo:           profile.Photo,
		FriendsCount:    manager.FriendCount(profile),
		PendingRequests: pending,
	})
}

// GetUserByUsername godoc
// @Summary      Get user by username
// @Description  Retrieves the public profile for a specific user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200  {object}  PublicProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username} [get]
func GetUserByUsername(c *gin.Context) {
	profile, ok := profileByUsername(c, c.Param("username"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, buildPublicProfileResponse(profile))
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by username with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for username"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicProfileResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset := (page - 1) * limit

	var profiles []models.Profile
	var totalItems int64

	query := database.DB.Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.id <> ?", viewerID.(uint))
	if searchQuery != "" {
		query = query.Where("users.username ILIKE ?", "%"+searchQuery+"%")
	}

	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	if err := query.Order("users.username").Limit(limit).Offset(offset).
		Preload("User").Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	responses := make([]PublicProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, buildPublicProfileResponse(&profiles[i]))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}

// UpdateMe godoc
// @Summary      Edit current user's profile
// @Description  Updates the first name, email and photo of the authenticated user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if input.FirstName != "" {
			if err := tx.Model(&profile.User).Update("first_name", input.FirstName).Error; err != nil {
				return err
			}
		}
		if input.Email != "" {
			if err := tx.Model(&profile.User).Update("email", input.Email).Error; err != nil {
				return err
			}
		}
		if input.Photo != "" {
			if err := tx.Model(profile).Update("photo", input.Photo).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating your profile."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
}

// endregion

// region --- Helpers ---

// currentProfile resolves the authenticated caller's profile. On failure it
// writes the error response and returns ok=false.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	var profile models.Profile
	if err := database.DB.Preload("User").Where("user_id = ?", userID.(uint)).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, false
	}
	return &profile, true
}

func profileByUsername(c *gin.Context, username string) (*models.Profile, bool) {
	var user models.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	var profile models.Profile
	if err := database.DB.Preload("User").Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, false
	}
	return &profile, true
}

func buildPublicProfileResponse(profile *models.Profile) PublicProfileResponse {
	manager := social.NewManager(database.DB)
	return PublicProfileResponse{
		ID:           profile.User.ID,
		Username:     profile.User.Username,
		FirstName:    profile.User.FirstName,
		Photo:        profile.Photo,
		FriendsCount: manager.FriendCount(profile),
	}
}

// endregion
