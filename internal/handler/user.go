package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/middleware"
	"github.com/greenleaf/plant-store-api/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, resp)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	user, err := h.authService.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

func (h *UserHandler) ResendVerification(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.authService.ResendVerification(c.Request.Context(), actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "verification email sent")
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor := middleware.GetActor(c)
	user, err := h.authService.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.GetActor(c)
	user, err := h.authService.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}
