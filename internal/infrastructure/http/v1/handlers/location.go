package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/location"
	"comercio/internal/infrastructure/http/v1/dto"
)

// DepartmentHandler extends the generic catalog handler with
// department-specific lookups.
type DepartmentHandler struct {
	*CatalogHandler[*location.Department, dto.CreateDepartmentRequest, dto.UpdateDepartmentRequest]
	service *location.DepartmentService
}

// NewDepartmentHandler creates a new department handler.
func NewDepartmentHandler(base *BaseHandler, service *location.DepartmentService) *DepartmentHandler {
	config := CatalogHandlerConfig[*location.Department, dto.CreateDepartmentRequest, dto.UpdateDepartmentRequest]{
		Service:    service.CatalogService,
		EntityName: "department",
		MapCreateDTO: func(req dto.CreateDepartmentRequest) *location.Department {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateDepartmentRequest, existing *location.Department) *location.Department {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(dep *location.Department) any {
			return dto.FromDepartment(dep)
		},
	}

	return &DepartmentHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// GetByDANECode handles GET /departments/dane/:code
func (h *DepartmentHandler) GetByDANECode(c *gin.Context) {
	dep, err := h.service.FindByDANECode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDepartment(dep))
}

// MunicipalityHandler extends the generic catalog handler with
// per-department listing.
type MunicipalityHandler struct {
	*CatalogHandler[*location.Municipality, dto.CreateMunicipalityRequest, dto.UpdateMunicipalityRequest]
	service *location.MunicipalityService
}

// NewMunicipalityHandler creates a new municipality handler.
func NewMunicipalityHandler(base *BaseHandler, service *location.MunicipalityService) *MunicipalityHandler {
	config := CatalogHandlerConfig[*location.Municipality, dto.CreateMunicipalityRequest, dto.UpdateMunicipalityRequest]{
		Service:    service.CatalogService,
		EntityName: "municipality",
		MapCreateDTO: func(req dto.CreateMunicipalityRequest) *location.Municipality {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMunicipalityRequest, existing *location.Municipality) *location.Municipality {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(mun *location.Municipality) any {
			return dto.FromMunicipality(mun)
		},
	}

	return &MunicipalityHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// ListByDepartment handles GET /municipalities/by-department/:departmentId
func (h *MunicipalityHandler) ListByDepartment(c *gin.Context) {
	departmentID, err := id.Parse(c.Param("departmentId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid department id format"))
		return
	}

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByDepartment(c.Request.Context(), departmentID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListResult(c, result)
}
