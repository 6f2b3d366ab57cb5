package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetlog/fleetlog/domain/entity"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var changeRequestRow = []string{
	"id", "type", "status", "requester_id", "target_id", "target_name", "payload",
	"admin_response", "created_at", "processed_at", "processed_by",
}

func TestChangeRequestRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)
	created := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM change_requests WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(changeRequestRow).AddRow(
			int64(5), "DRIVER_UPDATE", "PENDING", int64(3), int64(7), "Ivan Petrenko",
			[]byte(`{"phone":"+380"}`), nil, created, nil, nil,
		))

	req, err := repo.FindByID(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, entity.RequestTypeDriverUpdate, req.Type)
	assert.Equal(t, entity.RequestStatusPending, req.Status)
	require.NotNil(t, req.TargetID)
	assert.Equal(t, int64(7), *req.TargetID)
	assert.JSONEq(t, `{"phone":"+380"}`, string(req.Payload))
	assert.Nil(t, req.AdminResponse)
	assert.Nil(t, req.ProcessedAt)
	assert.Nil(t, req.ProcessedBy)
}

func TestChangeRequestRepository_FindByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM change_requests WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 404)

	assert.ErrorIs(t, err, entity.ErrRequestNotFound)
}

func TestChangeRequestRepository_Insert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)
	now := time.Now().UTC()
	req := entity.NewChangeRequest(entity.RequestTypeOther, nil, "New vehicle", []byte(`{"entity":"vehicle"}`), 3, now)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO change_requests")).
		WithArgs(entity.RequestTypeOther, entity.RequestStatusPending, int64(3), nil, "New vehicle", []byte(`{"entity":"vehicle"}`), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	require.NoError(t, repo.Insert(context.Background(), req))
	assert.Equal(t, int64(11), req.ID)
}

func TestChangeRequestRepository_InsertUnknownRequester(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)
	req := entity.NewChangeRequest(entity.RequestTypeOther, nil, "x", []byte(`{}`), 99, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO change_requests")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: requesterForeignKey})

	err := repo.Insert(context.Background(), req)

	assert.ErrorIs(t, err, entity.ErrActorNotFound)
}

func TestChangeRequestRepository_InsertOtherViolations(t *testing.T) {
	tests := []struct {
		name string
		err  *pq.Error
	}{
		{name: "check", err: &pq.Error{Code: pqCheckViolation, Constraint: "change_requests_type_check"}},
		{name: "unique", err: &pq.Error{Code: pqUniqueViolation, Constraint: "change_requests_pkey"}},
		{name: "other foreign key", err: &pq.Error{Code: pqForeignKeyViolation, Constraint: "change_requests_processed_by_fkey"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewChangeRequestRepositoryAdapter(db)
			req := entity.NewChangeRequest(entity.RequestTypeOther, nil, "x", []byte(`{}`), 3, time.Now())

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO change_requests")).WillReturnError(tt.err)

			err := repo.Insert(context.Background(), req)

			require.Error(t, err)
			assert.NotErrorIs(t, err, entity.ErrActorNotFound)
			var pqErr *pq.Error
			assert.ErrorAs(t, err, &pqErr)
		})
	}
}

func TestChangeRequestRepository_UpdateIfPending(t *testing.T) {
	resolved := func(t *testing.T) *entity.ChangeRequest {
		req := entity.NewChangeRequest(entity.RequestTypeDriverDeletion, nil, "d", []byte(`{}`), 3, time.Now())
		req.ID = 8
		require.NoError(t, req.Resolve(true, "ok", 1, time.Now()))
		return req
	}

	t.Run("pending row updated", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewChangeRequestRepositoryAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateIfPending(context.Background(), resolved(t)))
	})

	t.Run("already processed", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewChangeRequestRepositoryAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.UpdateIfPending(context.Background(), resolved(t))

		assert.ErrorIs(t, err, entity.ErrRequestAlreadyProcessed)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewChangeRequestRepositoryAdapter(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.UpdateIfPending(context.Background(), resolved(t))

		assert.ErrorIs(t, err, entity.ErrRequestNotFound)
	})
}

func TestChangeRequestRepository_DeleteProcessed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM change_requests WHERE status <> $1")).
		WithArgs(entity.RequestStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteProcessed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestChangeRequestRepository_FindPendingOrdering(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChangeRequestRepositoryAdapter(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 ORDER BY created_at, id")).
		WithArgs(entity.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows(changeRequestRow).
			AddRow(int64(1), "OTHER", "PENDING", int64(3), nil, "a", []byte(`{}`), nil, now, nil, nil).
			AddRow(int64(2), "OTHER", "PENDING", int64(3), nil, "b", []byte(`{}`), nil, now, nil, nil))

	reqs, err := repo.FindPending(context.Background())

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, int64(1), reqs[0].ID)
	assert.Nil(t, reqs[0].TargetID)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepositoryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), entity.NewUser("admin@fleetlog.io", "Admin", "hash", entity.RoleAdmin))

	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

func TestUserRepository_ActorExists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepositoryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ActorExists(context.Background(), 3)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepository_FindByEmailMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepositoryAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost@fleetlog.io").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@fleetlog.io")

	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestDriverRepository_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDriverRepositoryAdapter(db)
	d := entity.NewDriver("Ivan", "+380", "LIC-1")
	d.ID = 42

	mock.ExpectExec(regexp.QuoteMeta("UPDATE drivers")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), d), entity.ErrTargetNotFound)
}

func TestDriverRepository_UpdateDuplicateLicense(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDriverRepositoryAdapter(db)
	d := entity.NewDriver("Ivan", "+380", "LIC-1")
	d.ID = 1

	mock.ExpectExec(regexp.QuoteMeta("UPDATE drivers")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	assert.ErrorIs(t, repo.Update(context.Background(), d), entity.ErrConstraintViolated)
}

func TestVehicleRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVehicleRepositoryAdapter(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM vehicles WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "plate_number", "make", "model", "year", "fuel_consumption", "status", "created_at", "updated_at",
		}).AddRow(int64(2), "AA1234BB", "Renault", "Master", 2021, "9.80", "available", now, now))

	v, err := repo.FindByID(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "AA1234BB", v.PlateNumber)
	assert.True(t, decimal.RequireFromString("9.8").Equal(v.FuelConsumption))
	assert.Equal(t, entity.VehicleStatusAvailable, v.Status)
}

func TestVehicleRepository_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVehicleRepositoryAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vehicles WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 9), entity.ErrTargetNotFound)
}
