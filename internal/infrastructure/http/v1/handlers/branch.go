package handlers

import (
	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/branch"
	"comercio/internal/infrastructure/http/v1/dto"
)

// BranchHandler extends the generic catalog handler with per-company
// listing.
type BranchHandler struct {
	*CatalogHandler[*branch.Branch, dto.CreateBranchRequest, dto.UpdateBranchRequest]
	service *branch.Service
}

// NewBranchHandler creates a new branch handler.
func NewBranchHandler(base *BaseHandler, service *branch.Service) *BranchHandler {
	config := CatalogHandlerConfig[*branch.Branch, dto.CreateBranchRequest, dto.UpdateBranchRequest]{
		Service:    service.CatalogService,
		EntityName: "branch",
		MapCreateDTO: func(req dto.CreateBranchRequest) *branch.Branch {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateBranchRequest, existing *branch.Branch) *branch.Branch {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(b *branch.Branch) any {
			return dto.FromBranch(b)
		},
	}

	return &BranchHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// ListByCompany handles GET /branches/by-company/:companyId
func (h *BranchHandler) ListByCompany(c *gin.Context) {
	companyID, err := id.Parse(c.Param("companyId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid company id format"))
		return
	}

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByCompany(c.Request.Context(), companyID.String(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListResult(c, result)
}
