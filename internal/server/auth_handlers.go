package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propertydesk/property-broker/internal/auth"
)

func (s *Server) handleRegister(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	u, pair, err := s.authSvc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	// best effort refresh of the users workbook
	if _, err := s.exportSvc.SaveUsersSnapshot(c.Request.Context(), s.cfg.Ingest.ExcelDir); err != nil {
		s.logger.Warn("users workbook refresh failed", "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "user registered successfully",
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
		"user":         u,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	u, pair, err := s.authSvc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "login successful",
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
		"user":         u,
	})
}

func (s *Server) handleRefreshToken(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "refresh token required")
		return
	}

	token, err := s.authSvc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) handleProfile(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": u})
}
