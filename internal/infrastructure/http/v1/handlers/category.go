package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/category"
	"comercio/internal/infrastructure/http/v1/dto"
)

// CategoryHandler extends the generic catalog handler with child listing.
type CategoryHandler struct {
	*CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]
	service *category.Service
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	config := CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service:    service.CatalogService,
		EntityName: "category",
		MapCreateDTO: func(req dto.CreateCategoryRequest) *category.Category {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) *category.Category {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(cat *category.Category) any {
			return dto.FromCategory(cat)
		},
	}

	return &CategoryHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// ListChildren handles GET /categories/:id/children
func (h *CategoryHandler) ListChildren(c *gin.Context) {
	categoryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	children, err := h.service.ListChildren(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CategoryResponse, len(children))
	for i, child := range children {
		items[i] = dto.FromCategory(child)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
