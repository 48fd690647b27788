package main

import (
	"errors"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,10}$`)

// isStrongPassword requires at least 8 characters with an upper case
// letter, a lower case letter, a digit and a special character.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("#?!@$%^&*-", r):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func GenerateToken(userID uint) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "defaultsecret"
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ========================
// SIGNUP HANDLER
// ========================

type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	DateOfBirth     int64  `json:"dateOfBirth"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func Signup(c *gin.Context) {
	var body SignupRequest

	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusUnprocessableEntity, "Invalid inputs! Check the fields requirements!")
		return
	}

	if strings.TrimSpace(body.FirstName) == "" ||
		strings.TrimSpace(body.LastName) == "" ||
		body.DateOfBirth == 0 ||
		!emailRegex.MatchString(body.Email) ||
		!isStrongPassword(body.Password) ||
		body.Password != body.ConfirmPassword {
		jsonError(c, http.StatusUnprocessableEntity, "Invalid inputs! Check the fields requirements!")
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var existing User
	err := DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		jsonError(c, http.StatusUnprocessableEntity, "User with this e-mail is already exists!")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, err)
		return
	}

	hashed, err := hashPassword(body.Password)
	if err != nil {
		dbError(c, err)
		return
	}

	user := User{
		FirstName:   strings.TrimSpace(body.FirstName),
		LastName:    strings.TrimSpace(body.LastName),
		Email:       email,
		DateOfBirth: body.DateOfBirth,
		Password:    hashed,
	}

	if err := DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(c, http.StatusUnprocessableEntity, "User with this e-mail is already exists!")
			return
		}
		dbError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created!"})
}

// ========================
// SIGNIN HANDLER
// ========================

type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Signin(c *gin.Context) {
	var body SigninRequest

	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusUnprocessableEntity, "Invalid inputs!")
		return
	}

	var user User
	if err := DB.Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).First(&user).Error; err != nil {
		jsonError(c, http.StatusUnauthorized, "Wrong credentials!")
		return
	}

	if !verifyPassword(body.Password, user.Password) {
		jsonError(c, http.StatusUnauthorized, "Wrong credentials!")
		return
	}

	token, err := GenerateToken(user.ID)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully!",
		"token":   token,
		"user":    user,
	})
}

// ========================
// USER HANDLERS
// ========================

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func ChangePassword(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Not authenticated!")
		return
	}

	var body ChangePasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusUnprocessableEntity, "Invalid inputs!")
		return
	}

	var user User
	if err := DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "User not found!")
			return
		}
		dbError(c, err)
		return
	}

	if !verifyPassword(body.OldPassword, user.Password) {
		jsonError(c, http.StatusUnprocessableEntity, "Old password is incorrect!")
		return
	}

	if !isStrongPassword(body.NewPassword) {
		jsonError(c, http.StatusUnprocessableEntity, "Invalid inputs! Check the fields requirements!")
		return
	}

	hashed, err := hashPassword(body.NewPassword)
	if err != nil {
		dbError(c, err)
		return
	}

	if err := DB.Model(&user).Update("password", hashed).Error; err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated!"})
}

func Me(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Not authenticated!")
		return
	}

	var user User
	if err := DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "User not found!")
			return
		}
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User fetched successfully!", "user": user})
}
