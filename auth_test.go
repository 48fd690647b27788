package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func signupBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":       "Anna",
		"lastName":        "Nowak",
		"email":           email,
		"dateOfBirth":     631152000,
		"password":        testPassword,
		"confirmPassword": testPassword,
	}
}

func TestSignupCreatesUser(t *testing.T) {
	r := setupTestApp(t)

	w := performRequest(r, http.MethodPost, "/api/auth/signup", signupBody("Anna@Example.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "User created!", decodeMessage(t, w))

	var user User
	require.NoError(t, DB.Where("email = ?", "anna@example.com").First(&user).Error)
	require.Equal(t, "Anna", user.FirstName)
	require.NotEqual(t, testPassword, user.Password)
	require.True(t, verifyPassword(testPassword, user.Password))
}

func TestSignupRejectsDuplicateEmailCaseInsensitively(t *testing.T) {
	r := setupTestApp(t)
	createTestUser(t, "anna@example.com")

	w := performRequest(r, http.MethodPost, "/api/auth/signup", signupBody("ANNA@Example.COM"), "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "User with this e-mail is already exists!", decodeMessage(t, w))

	var count int64
	require.NoError(t, DB.Model(&User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSignupValidation(t *testing.T) {
	r := setupTestApp(t)

	cases := map[string]map[string]interface{}{
		"missing first name": {
			"firstName": "", "lastName": "Nowak", "email": "a@example.com",
			"dateOfBirth": 631152000, "password": testPassword, "confirmPassword": testPassword,
		},
		"malformed email": {
			"firstName": "Anna", "lastName": "Nowak", "email": "not-an-email",
			"dateOfBirth": 631152000, "password": testPassword, "confirmPassword": testPassword,
		},
		"weak password": {
			"firstName": "Anna", "lastName": "Nowak", "email": "a@example.com",
			"dateOfBirth": 631152000, "password": "password", "confirmPassword": "password",
		},
		"confirmation mismatch": {
			"firstName": "Anna", "lastName": "Nowak", "email": "a@example.com",
			"dateOfBirth": 631152000, "password": testPassword, "confirmPassword": "Other0ne!",
		},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := performRequest(r, http.MethodPost, "/api/auth/signup", body, "")
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestSigninReturnsUsableToken(t *testing.T) {
	r := setupTestApp(t)
	user := createTestUser(t, "jan@example.com")

	w := performRequest(r, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "Jan@Example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.Equal(t, user.ID, body.User.ID)
	require.NotContains(t, w.Body.String(), user.Password)

	// the token must authenticate follow-up requests
	me := performRequest(r, http.MethodGet, "/api/user/me", nil, "Bearer "+body.Token)
	require.Equal(t, http.StatusOK, me.Code)
}

func TestSigninRejectsWrongCredentials(t *testing.T) {
	r := setupTestApp(t)
	createTestUser(t, "jan@example.com")

	w := performRequest(r, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "jan@example.com",
		"password": "WrongPass1!",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	r := setupTestApp(t)
	user := createTestUser(t, "jan@example.com")
	auth := authHeader(t, user.ID)

	w := performRequest(r, http.MethodPatch, "/api/user/change-password", map[string]string{
		"oldPassword": "WrongPass1!",
		"newPassword": "NewPassw0rd!",
	}, auth)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performRequest(r, http.MethodPatch, "/api/user/change-password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "weak",
	}, auth)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performRequest(r, http.MethodPatch, "/api/user/change-password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "NewPassw0rd!",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var updated User
	require.NoError(t, DB.First(&updated, user.ID).Error)
	require.True(t, verifyPassword("NewPassw0rd!", updated.Password))
	require.False(t, verifyPassword(testPassword, updated.Password))
}
