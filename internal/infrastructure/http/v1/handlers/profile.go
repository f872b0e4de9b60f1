package handlers

import (
	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/profile"
	"comercio/internal/infrastructure/http/v1/dto"
)

// ProfileHandler extends the generic catalog handler with password
// management and role-based listing.
type ProfileHandler struct {
	*CatalogHandler[*profile.Profile, dto.CreateProfileRequest, dto.UpdateProfileRequest]
	service *profile.Service
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(base *BaseHandler, service *profile.Service) *ProfileHandler {
	config := CatalogHandlerConfig[*profile.Profile, dto.CreateProfileRequest, dto.UpdateProfileRequest]{
		Service:    service.CatalogService,
		EntityName: "profile",
		MapCreateDTO: func(req dto.CreateProfileRequest) *profile.Profile {
			p := req.ToEntity()
			if req.Password != "" {
				// Length is enforced by request binding (min=8).
				_ = service.SetPassword(p, req.Password)
			}
			return p
		},
		MapUpdateDTO: func(req dto.UpdateProfileRequest, existing *profile.Profile) *profile.Profile {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *profile.Profile) any {
			return dto.FromProfile(p)
		},
	}

	return &ProfileHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// SetPassword handles POST /profiles/:id/password
func (h *ProfileHandler) SetPassword(c *gin.Context) {
	ctx := c.Request.Context()

	profileID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, profileID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.SetPassword(p, req.Password); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "password updated")
}

// ListByRole handles GET /profiles/by-role/:role
func (h *ProfileHandler) ListByRole(c *gin.Context) {
	role := profile.BusinessRole(c.Param("role"))

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByRole(c.Request.Context(), role, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListResult(c, result)
}
