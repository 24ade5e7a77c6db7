package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/models"
	"skillshare/services"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type OTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose"`
}

type OTPVerifyRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose"`
	Code    string `json:"code" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Signup(ctx, services.SignupInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		respondError(c, "Signup", err)
		return
	}
	h.sessionResponse(c, http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	h.sessionResponse(c, http.StatusOK, u)
}

func (h *Handler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Purpose == "" {
		req.Purpose = models.OTPPurposeVerifyEmail
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.OTP.Request(ctx, req.Email, req.Purpose); err != nil {
		respondError(c, "OTP", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Purpose == "" {
		req.Purpose = models.OTPPurposeVerifyEmail
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.OTP.Verify(ctx, req.Email, req.Purpose, req.Code); err != nil {
		respondError(c, "OTP", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified"})
}
