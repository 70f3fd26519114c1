package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"course-api/dto"
	"course-api/middleware"
)

// Login signs an admin in. A request that already carries a live session is
// answered with that session and pointed at the admin area, the same way
// the login view redirects an authenticated visitor.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := middleware.BearerToken(c); raw != "" {
		if claims, err := h.Auth.Parse(ctx, raw); err == nil {
			c.JSON(http.StatusOK, dto.LoginResponse{
				Token:    raw,
				Session:  h.Auth.Session(claims),
				Redirect: "/admin",
			})
			return
		}
	}

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, session, err := h.Auth.Login(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    token,
		Session:  *session,
		Redirect: "/admin",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}

	if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// SessionInfo resolves the caller's session once, null when none; clients
// use it to leave their initial unknown state.
func (h *Handler) SessionInfo(c *gin.Context) {
	raw := middleware.BearerToken(c)
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}

	claims, err := h.Auth.Parse(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": h.Auth.Session(claims)})
}
