// Package attachments provides polymorphic file metadata: any
// registered entity can own attachments through an (owner type, owner
// id) reference with no storage-level foreign key. File bytes live
// elsewhere; this catalog tracks names, paths, and ownership.
package attachments

import (
	"context"
	"path/filepath"
	"strings"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
)

// Kind classifies the attached file.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindOther    Kind = "other"
)

// Attachment is file metadata owned by another entity.
type Attachment struct {
	entity.BaseCatalog

	// Token is an opaque public handle (unique), safe to expose in URLs
	// instead of the row id.
	Token string `db:"token" json:"token"`

	// OriginalName is the file name as uploaded
	OriginalName string `db:"original_name" json:"originalName"`

	// StoragePath locates the bytes in the file store
	StoragePath string `db:"storage_path" json:"storagePath"`

	// Extension is the lowercase file extension without the dot
	Extension string `db:"extension" json:"extension"`

	// Kind classifies the file
	Kind Kind `db:"kind" json:"kind"`

	// Owner is the polymorphic owner reference
	Owner entity.OwnerRef `db:"-" json:"owner"`
}

// New creates an attachment for the given owner. The token is a fresh
// UUID; the extension and kind are derived from the file name.
func New(owner entity.OwnerRef, originalName, storagePath string) *Attachment {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), ".")
	return &Attachment{
		BaseCatalog:  entity.NewBaseCatalog(),
		Token:        id.New().String(),
		OriginalName: originalName,
		StoragePath:  storagePath,
		Extension:    ext,
		Kind:         KindForExtension(ext),
		Owner:        owner,
	}
}

// Validate implements entity.Validatable.
func (a *Attachment) Validate(ctx context.Context) error {
	if a.Token == "" {
		return apperror.NewValidation("token is required").
			WithDetail("field", "token")
	}

	if a.OriginalName == "" {
		return apperror.NewValidation("original name is required").
			WithDetail("field", "originalName")
	}

	if a.StoragePath == "" {
		return apperror.NewValidation("storage path is required").
			WithDetail("field", "storagePath")
	}

	if !isValidKind(a.Kind) {
		return apperror.NewValidation("invalid attachment kind").
			WithDetail("field", "kind").
			WithDetail("value", string(a.Kind))
	}

	return a.Owner.Validate(ctx)
}

// KindForExtension maps a file extension to an attachment kind.
func KindForExtension(ext string) Kind {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp", "bmp", "svg":
		return KindImage
	case "pdf", "doc", "docx", "xls", "xlsx", "csv", "txt":
		return KindDocument
	case "mp4", "avi", "mov", "mkv", "webm":
		return KindVideo
	case "mp3", "wav", "ogg", "flac":
		return KindAudio
	default:
		return KindOther
	}
}

func isValidKind(k Kind) bool {
	switch k {
	case KindImage, KindDocument, KindVideo, KindAudio, KindOther:
		return true
	}
	return false
}
