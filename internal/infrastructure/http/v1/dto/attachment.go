package dto

import (
	"comercio/internal/domain/attachments"
)

// AttachRequest is the request body for attaching file metadata to an
// owner entity. The bytes themselves are stored out of band.
type AttachRequest struct {
	OwnerType    string `json:"ownerType" binding:"required"`
	OwnerID      string `json:"ownerId" binding:"required"`
	OriginalName string `json:"originalName" binding:"required"`
	StoragePath  string `json:"storagePath" binding:"required"`
}

// AttachmentResponse is the response body for an attachment.
type AttachmentResponse struct {
	BaseResponse
	Token        string           `json:"token"`
	OriginalName string           `json:"originalName"`
	StoragePath  string           `json:"storagePath"`
	Extension    string           `json:"extension"`
	Kind         attachments.Kind `json:"kind"`
	OwnerType    string           `json:"ownerType"`
	OwnerID      string           `json:"ownerId"`
}

// FromAttachment creates response DTO from domain entity.
func FromAttachment(a *attachments.Attachment) *AttachmentResponse {
	return &AttachmentResponse{
		BaseResponse: FromBaseCatalog(a.BaseCatalog),
		Token:        a.Token,
		OriginalName: a.OriginalName,
		StoragePath:  a.StoragePath,
		Extension:    a.Extension,
		Kind:         a.Kind,
		OwnerType:    string(a.Owner.OwnerType),
		OwnerID:      a.Owner.OwnerID.String(),
	}
}
