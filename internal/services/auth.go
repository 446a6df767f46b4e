package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	configSvc *SystemConfigService
}

func NewAuthService(db *gorm.DB, jwtConfig *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtConfig,
		configSvc: NewSystemConfigService(db),
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string       `json:"access_token"`
	AccessExpireAt  time.Time    `json:"access_expire_at"`
	RefreshToken    string       `json:"refresh_token"`
	RefreshExpireAt time.Time    `json:"refresh_expire_at"`
	User            *models.User `json:"user"`
}

type RefreshResult struct {
	AccessToken     string    `json:"access_token"`
	AccessExpireAt  time.Time `json:"access_expire_at"`
	RefreshToken    string    `json:"refresh_token"`
	RefreshExpireAt time.Time `json:"refresh_expire_at"`
}

// Register creates a new local account. Usernames and emails are unique;
// the email is what invitations are addressed to.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, storageError(err)
	}
	if count > 0 {
		return nil, Consistency("username or email is already taken")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, storageError(err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Nickname: req.Nickname,
		IsActive: true,
	}
	if user.Nickname == "" {
		user.Nickname = username
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, storageError(err)
	}
	return &user, nil
}

func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	user, err := s.authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Model(user).Update("last_login", now)

	accessHours := s.getAccessTokenExpireHours()
	refreshHours := s.getRefreshTokenExpireHours()

	accessToken, err := utils.GenerateToken(user.ID, user.Username, user.Email, accessHours)
	if err != nil {
		return nil, storageError(err)
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, storageError(err)
	}

	refreshExpireAt := now.Add(time.Duration(refreshHours) * time.Hour)
	stored := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&stored).Error; err != nil {
		return nil, storageError(err)
	}

	return &LoginResult{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

// Refresh rotates a refresh token: the old token is revoked and linked to
// its replacement so reuse of a rotated token is detectable.
func (s *AuthService) Refresh(refreshToken string, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, ValidationError("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, PermissionDenied("invalid refresh token")
		}
		return nil, storageError(err)
	}

	if stored.RevokedAt != nil {
		return nil, PermissionDenied("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, Expired("refresh token expired")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, storageError(err)
	}
	if !user.IsActive {
		return nil, PermissionDenied("user is disabled")
	}

	accessHours := s.getAccessTokenExpireHours()
	refreshHours := s.getRefreshTokenExpireHours()

	newAccessToken, err := utils.GenerateToken(user.ID, user.Username, user.Email, accessHours)
	if err != nil {
		return nil, storageError(err)
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, storageError(err)
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(time.Duration(refreshHours) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error
	}); err != nil {
		return nil, storageError(err)
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now()).Error
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFound("user not found")
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return PermissionDenied("incorrect old password")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return storageError(err)
	}

	user.Password = hashed
	if err := s.db.Save(&user).Error; err != nil {
		return storageError(err)
	}
	return nil
}

// CreateAdminIfNotExists seeds the default administrator account. Admins are
// the only users allowed to touch system-wide settings; the default password
// is expected to be changed on first login.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("admin")
	if err != nil {
		return err
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@taskhive.local",
		Password: hashed,
		Nickname: "Administrator",
		IsActive: true,
		IsAdmin:  true,
	}
	return s.db.Create(&admin).Error
}

// GetUserByID retrieves a user by ID.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, storageError(err)
	}
	return &user, nil
}

func (s *AuthService) authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, PermissionDenied("invalid username or password")
		}
		return nil, storageError(err)
	}

	if !user.IsActive {
		return nil, PermissionDenied("user is disabled")
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, PermissionDenied("invalid username or password")
	}

	return &user, nil
}

func (s *AuthService) getAccessTokenExpireHours() int {
	defaultHours := s.jwtConfig.ExpireHour
	value := s.configSvc.GetWithDefault("auth_access_token_expire_hours", strconv.Itoa(defaultHours))
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return defaultHours
	}
	return hours
}

func (s *AuthService) getRefreshTokenExpireHours() int {
	value := s.configSvc.GetWithDefault("auth_refresh_token_expire_hours", "720")
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return 720
	}
	return hours
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
