package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/domain/catalogs/company"
	"comercio/internal/infrastructure/http/v1/dto"
)

// CompanyHandler extends the generic catalog handler with tax id lookup.
type CompanyHandler struct {
	*CatalogHandler[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]
	service *company.Service
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHandler {
	config := CatalogHandlerConfig[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]{
		Service:    service.CatalogService,
		EntityName: "company",
		MapCreateDTO: func(req dto.CreateCompanyRequest) *company.Company {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) *company.Company {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *company.Company) any {
			return dto.FromCompany(c)
		},
	}

	return &CompanyHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// GetByTaxID handles GET /companies/tax-id/:taxId
func (h *CompanyHandler) GetByTaxID(c *gin.Context) {
	found, err := h.service.FindByTaxID(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCompany(found))
}
