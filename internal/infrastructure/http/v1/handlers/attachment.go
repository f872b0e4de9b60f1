package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/attachments"
	"comercio/internal/infrastructure/http/v1/dto"
)

// AttachmentHandler provides attachment endpoints.
type AttachmentHandler struct {
	*BaseHandler
	service *attachments.Service
}

// NewAttachmentHandler creates a new attachment handler.
func NewAttachmentHandler(base *BaseHandler, service *attachments.Service) *AttachmentHandler {
	return &AttachmentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Attach handles POST /attachments
func (h *AttachmentHandler) Attach(c *gin.Context) {
	var req dto.AttachRequest
	if !h.BindJSON(c, &req) {
		return
	}

	owner, ok := h.parseOwner(c, req.OwnerType, req.OwnerID)
	if !ok {
		return
	}

	a, err := h.service.Attach(c.Request.Context(), owner, req.OriginalName, req.StoragePath)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAttachment(a))
}

// GetByToken handles GET /attachments/token/:token
func (h *AttachmentHandler) GetByToken(c *gin.Context) {
	a, err := h.service.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAttachment(a))
}

// ListByOwner handles GET /attachments/by-owner/:ownerType/:ownerId
func (h *AttachmentHandler) ListByOwner(c *gin.Context) {
	owner, ok := h.parseOwner(c, c.Param("ownerType"), c.Param("ownerId"))
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "created_at")

	result, err := h.service.ListByOwner(c.Request.Context(), owner, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.AttachmentResponse, len(result.Items))
	for i, a := range result.Items {
		items[i] = dto.FromAttachment(a)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Detach handles DELETE /attachments/:id
func (h *AttachmentHandler) Detach(c *gin.Context) {
	attachmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Detach(c.Request.Context(), attachmentID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AttachmentHandler) parseOwner(c *gin.Context, ownerType, ownerID string) (entity.OwnerRef, bool) {
	parsed, err := id.Parse(ownerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid owner id format"))
		return entity.OwnerRef{}, false
	}
	return entity.NewOwnerRef(entity.OwnerType(ownerType), parsed), true
}
