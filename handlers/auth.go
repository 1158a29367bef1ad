package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/internal/admins"
	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
	"github.com/Manushivuz/IISPPR-MainSite/internal/sessions"
	"github.com/Manushivuz/IISPPR-MainSite/internal/tokens"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/middleware"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	adminsSvc   *admins.Service
	sessionsSvc *sessions.Service
	blacklist   *sessions.Blacklist
	verifier    *tokens.Verifier
}

func NewAuthHandler(cfg *config.Config, a *admins.Service, s *sessions.Service, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, adminsSvc: a, sessionsSvc: s, blacklist: bl, verifier: tokens.NewVerifier(cfg.JWT.Secret)}
}

// Register routes under /auth. guard protects /auth/me.
func (h *AuthHandler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/me", protect(guard, h.Me)...)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	if !h.cfg.Auth.AllowRegistration {
		apperr.Respond(c, apperr.Forbidden("Registration is disabled"))
		return
	}
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("All fields are required"))
		return
	}
	a, err := h.adminsSvc.Register(c.Request.Context(), admins.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	logger.Infof("admin registered: %s", a.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully", "admin": a})
}

// Login checks credentials and issues an access token plus a refresh session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Email and password are required"))
		return
	}
	a, err := h.adminsSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), a.ID.Hex(), h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		apperr.Respond(c, err)
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        access,
		"refreshToken": rft,
		"admin":        a,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("refresh_token is required"))
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if sess == nil {
		apperr.Respond(c, apperr.Unauthorized("invalid refresh token"))
		return
	}
	a, err := h.adminsSvc.Get(c.Request.Context(), sess.AdminID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "expiresIn": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

// Logout removes the refresh session and blacklists the presented access
// token for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("refresh_token is required"))
		return
	}
	if at, ok := middleware.BearerToken(c); ok {
		if tok, err := h.verifier.Verify(c.Request.Context(), at); err == nil {
			var claims map[string]interface{}
			if err := tok.Claims(&claims); err == nil {
				if err := h.blacklist.Add(c.Request.Context(), at, tokens.Remaining(claims, time.Now())); err != nil {
					logger.Errorf("blacklist access token: %v", err)
					apperr.Respond(c, err)
					return
				}
			}
		}
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the admin behind the bearer token, or the raw claims for
// tokens issued by the external identity provider.
func (h *AuthHandler) Me(c *gin.Context) {
	v, _ := c.Get(middleware.ClaimsKey)
	claims, _ := v.(map[string]interface{})
	if sub, ok := claims["sub"].(string); ok {
		if a, err := h.adminsSvc.Get(c.Request.Context(), sub); err == nil {
			c.JSON(http.StatusOK, gin.H{"admin": a})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}
