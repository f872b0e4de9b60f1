package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	appctx "comercio/internal/core/context"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/profile"
	"comercio/internal/infrastructure/http/v1/dto"
)

// TokenIssuer signs access tokens for authenticated profiles.
// Implemented by security.JWTManager.
type TokenIssuer interface {
	GenerateToken(employeeID, email string, roles []string) (string, error)
}

// AuthHandler handles authentication endpoints. Sign-in is backed by
// the profile catalog: any active profile with a password can log in.
type AuthHandler struct {
	*BaseHandler
	profiles *profile.Service
	tokens   TokenIssuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, profiles *profile.Service, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		profiles:    profiles,
		tokens:      tokens,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.profiles.FindByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		h.Error(c, apperror.NewUnauthorized("invalid credentials"))
		return
	}

	if !p.IsActive() || !h.profiles.CheckPassword(p, req.Password) {
		h.Error(c, apperror.NewUnauthorized("invalid credentials"))
		return
	}

	email := ""
	if p.Email != nil {
		email = *p.Email
	}

	token, err := h.tokens.GenerateToken(p.ID.String(), email, p.BusinessRoles)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Profile:     dto.FromProfile(p),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user := appctx.GetUser(ctx)
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	employeeID, err := id.Parse(user.EmployeeID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid employee id"))
		return
	}

	p, err := h.profiles.GetByID(ctx, employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProfile(p))
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)
	protected.GET("/me", h.Me)
}
