package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/attachments"
	"comercio/internal/infrastructure/storage/postgres"
)

const attachmentTable = "cat_attachments"

// attachmentRow joins the entity with the owner reference columns. The
// owner is a polymorphic pair, not a struct field with a db tag, so the
// row type carries it explicitly.
type attachmentRow struct {
	attachments.Attachment

	OwnerType entity.OwnerType `db:"owner_type"`
	OwnerID   id.ID            `db:"owner_id"`
}

func (r *attachmentRow) toEntity() *attachments.Attachment {
	a := r.Attachment
	a.Owner = entity.OwnerRef{OwnerType: r.OwnerType, OwnerID: r.OwnerID}
	return &a
}

// AttachmentRepo implements attachments.Repository.
type AttachmentRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewAttachmentRepo creates a new attachment repository.
func NewAttachmentRepo(txManager *postgres.TxManager) *AttachmentRepo {
	return &AttachmentRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[attachmentRow](),
	}
}

func (r *AttachmentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *AttachmentRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(attachmentTable)
}

// Create inserts a new attachment with its owner reference.
func (r *AttachmentRepo) Create(ctx context.Context, a *attachments.Attachment) error {
	row := &attachmentRow{
		Attachment: *a,
		OwnerType:  a.Owner.OwnerType,
		OwnerID:    a.Owner.OwnerID,
	}

	data := postgres.StructToMap(row)
	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Insert(attachmentTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", attachmentTable, err)
	}

	return nil
}

// GetByID retrieves an attachment by row id.
func (r *AttachmentRepo) GetByID(ctx context.Context, attachmentID id.ID) (*attachments.Attachment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": attachmentID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.getOne(ctx, q, attachmentID.String())
}

// GetByToken retrieves an attachment by its public token.
func (r *AttachmentRepo) GetByToken(ctx context.Context, token string) (*attachments.Attachment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"token": token}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.getOne(ctx, q, token)
}

func (r *AttachmentRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*attachments.Attachment, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := &attachmentRow{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("attachment", key)
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}

	return row.toEntity(), nil
}

// Update modifies an existing attachment with optimistic locking.
// The owner reference is immutable after creation.
func (r *AttachmentRepo) Update(ctx context.Context, a *attachments.Attachment) error {
	data := postgres.StructToMap(a)

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filteredData := make(map[string]any, len(data))
	for col, val := range data {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		filteredData[col] = val
	}

	q := r.builder().
		Update(attachmentTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": a.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", attachmentTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(attachmentTable, a.ID)
	}

	return nil
}

// SetDeletionMark sets or clears the deletion mark.
func (r *AttachmentRepo) SetDeletionMark(ctx context.Context, attachmentID id.ID, marked bool) error {
	q := r.builder().
		Update(attachmentTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": attachmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("attachment", attachmentID.String())
	}

	return nil
}

// ListByOwner retrieves live attachments of an owner.
func (r *AttachmentRepo) ListByOwner(ctx context.Context, owner entity.OwnerRef, filter domain.ListFilter) (domain.ListResult[*attachments.Attachment], error) {
	result := domain.ListResult[*attachments.Attachment]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"owner_type": owner.OwnerType}).
		Where(squirrel.Eq{"owner_id": owner.OwnerID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []*attachmentRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list by owner: %w", err)
	}

	items := make([]*attachments.Attachment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}

// MarkDeletedByOwner soft-deletes all attachments of an owner.
func (r *AttachmentRepo) MarkDeletedByOwner(ctx context.Context, owner entity.OwnerRef) error {
	q := r.builder().
		Update(attachmentTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"owner_type": owner.OwnerType}).
		Where(squirrel.Eq{"owner_id": owner.OwnerID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark deleted by owner: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark deleted by owner: %w", err)
	}

	return nil
}
