package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

const changeRequestColumns = `id, type, status, requester_id, target_id, target_name, payload,
		admin_response, created_at, processed_at, processed_by`

type ChangeRequestRepositoryAdapter struct {
	db *sql.DB
}

func NewChangeRequestRepositoryAdapter(db *sql.DB) outbound.ChangeRequestRepository {
	return &ChangeRequestRepositoryAdapter{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChangeRequest(row rowScanner) (*entity.ChangeRequest, error) {
	var (
		req           entity.ChangeRequest
		targetID      sql.NullInt64
		payload       []byte
		adminResponse sql.NullString
		processedAt   sql.NullTime
		processedBy   sql.NullInt64
	)

	err := row.Scan(
		&req.ID,
		&req.Type,
		&req.Status,
		&req.RequesterID,
		&targetID,
		&req.TargetName,
		&payload,
		&adminResponse,
		&req.CreatedAt,
		&processedAt,
		&processedBy,
	)
	if err != nil {
		return nil, err
	}

	if targetID.Valid {
		req.TargetID = &targetID.Int64
	}
	req.Payload = payload
	if adminResponse.Valid {
		req.AdminResponse = &adminResponse.String
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	if processedBy.Valid {
		req.ProcessedBy = &processedBy.Int64
	}
	return &req, nil
}

func (r *ChangeRequestRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.ChangeRequest, error) {
	query := `SELECT ` + changeRequestColumns + ` FROM change_requests WHERE id = $1`

	req, err := scanChangeRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find change request: %w", err)
	}
	return req, nil
}

func (r *ChangeRequestRepositoryAdapter) FindAll(ctx context.Context) ([]*entity.ChangeRequest, error) {
	return r.list(ctx, `SELECT `+changeRequestColumns+` FROM change_requests ORDER BY created_at DESC, id DESC`)
}

func (r *ChangeRequestRepositoryAdapter) FindPending(ctx context.Context) ([]*entity.ChangeRequest, error) {
	return r.list(ctx, `SELECT `+changeRequestColumns+` FROM change_requests WHERE status = $1 ORDER BY created_at, id`,
		entity.RequestStatusPending)
}

func (r *ChangeRequestRepositoryAdapter) FindByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error) {
	return r.list(ctx, `SELECT `+changeRequestColumns+` FROM change_requests WHERE requester_id = $1 ORDER BY created_at, id`,
		requesterID)
}

func (r *ChangeRequestRepositoryAdapter) list(ctx context.Context, query string, args ...any) ([]*entity.ChangeRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query change requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]*entity.ChangeRequest, 0)
	for rows.Next() {
		req, err := scanChangeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate change requests: %w", err)
	}
	return reqs, nil
}

func (r *ChangeRequestRepositoryAdapter) Insert(ctx context.Context, req *entity.ChangeRequest) error {
	if req == nil {
		return fmt.Errorf("change request cannot be nil")
	}

	query := `
		INSERT INTO change_requests (type, status, requester_id, target_id, target_name, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		req.Type,
		req.Status,
		req.RequesterID,
		nullInt64(req.TargetID),
		req.TargetName,
		[]byte(req.Payload),
		req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		if isForeignKeyViolationOn(err, requesterForeignKey) {
			return fmt.Errorf("%w: %v", entity.ErrActorNotFound, err)
		}
		return fmt.Errorf("failed to insert change request: %w", err)
	}
	return nil
}

// UpdateIfPending writes the resolution in a single conditional UPDATE. When no
// row matches, a follow-up lookup tells a missing request from a processed one.
func (r *ChangeRequestRepositoryAdapter) UpdateIfPending(ctx context.Context, req *entity.ChangeRequest) error {
	query := `
		UPDATE change_requests
		SET status = $2, admin_response = $3, processed_at = $4, processed_by = $5
		WHERE id = $1 AND status = 'PENDING'
	`

	var adminResponse sql.NullString
	if req.AdminResponse != nil {
		adminResponse = sql.NullString{String: *req.AdminResponse, Valid: true}
	}
	var processedAt sql.NullTime
	if req.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *req.ProcessedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.Status,
		adminResponse,
		processedAt,
		nullInt64(req.ProcessedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to update change request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM change_requests WHERE id = $1)`, req.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check change request: %w", err)
	}
	if !exists {
		return entity.ErrRequestNotFound
	}
	return entity.ErrRequestAlreadyProcessed
}

func (r *ChangeRequestRepositoryAdapter) DeleteProcessed(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM change_requests WHERE status <> $1`, entity.RequestStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed change requests: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return deleted, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
