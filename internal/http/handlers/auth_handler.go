package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
)

// AuthHandler serves registration, login, profile and password reset.
type AuthHandler struct {
	Auth  *services.AuthService
	Reset *services.PasswordResetService
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !BindJSONOrError(c, &in) {
		return
	}
	result, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.Auth.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), in.Name, in.Phone, in.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}
	maskedPhone, err := h.Reset.RequestReset(c.Request.Context(), in.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "verification code sent",
		"phone":   maskedPhone,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := h.Reset.ConfirmReset(c.Request.Context(), in.Email, in.OTP, in.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
