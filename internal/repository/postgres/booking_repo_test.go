package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/domain"
)

func TestBookingRepository_Book(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)

	booking := func() *domain.Booking {
		return &domain.Booking{ID: "bk-1", SlotID: "slot-1", Subject: "Sync", CreatedAt: now}
	}
	guest := func() *domain.Guest {
		return &domain.Guest{ID: "g-new", Name: "Alice", Email: "alice@x.com", CreatedAt: now, UpdatedAt: now}
	}

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantErr     error
		wantGuestID string
	}{
		{
			name: "success with new guest",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO guests`).
					WithArgs("g-new", "Alice", "alice@x.com", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g-new", now))
				mock.ExpectExec(`UPDATE slots SET status`).
					WithArgs(string(domain.SlotStatusBooked), now, "slot-1", string(domain.SlotStatusAvailable)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO bookings`).
					WithArgs("bk-1", "slot-1", "g-new", "Sync", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantGuestID: "g-new",
		},
		{
			name: "success reuses existing guest",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO guests`).
					WithArgs("g-new", "Alice", "alice@x.com", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g-old", now.Add(-time.Hour)))
				mock.ExpectExec(`UPDATE slots SET status`).
					WithArgs(string(domain.SlotStatusBooked), now, "slot-1", string(domain.SlotStatusAvailable)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO bookings`).
					WithArgs("bk-1", "slot-1", "g-old", "Sync", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantGuestID: "g-old",
		},
		{
			name: "losing racer gets ErrSlotAlreadyBooked",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO guests`).
					WithArgs("g-new", "Alice", "alice@x.com", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g-new", now))
				mock.ExpectExec(`UPDATE slots SET status`).
					WithArgs(string(domain.SlotStatusBooked), now, "slot-1", string(domain.SlotStatusAvailable)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("slot-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrSlotAlreadyBooked,
		},
		{
			name: "missing slot gets ErrSlotNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO guests`).
					WithArgs("g-new", "Alice", "alice@x.com", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g-new", now))
				mock.ExpectExec(`UPDATE slots SET status`).
					WithArgs(string(domain.SlotStatusBooked), now, "slot-1", string(domain.SlotStatusAvailable)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("slot-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrSlotNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBookingRepository(db)
			b, g := booking(), guest()
			err = repo.Book(ctx, b, g)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantGuestID, g.ID)
				assert.Equal(t, tt.wantGuestID, b.GuestID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_Cancel(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	cancelled := created.Add(2 * time.Hour)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success frees slot in same tx",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE bookings SET cancelled_at`).
					WithArgs("bk-1").
					WillReturnRows(sqlmock.NewRows([]string{"slot_id", "guest_id", "subject", "created_at", "cancelled_at"}).
						AddRow("slot-1", "g-1", "Sync", created, cancelled))
				mock.ExpectExec(`UPDATE slots SET status`).
					WithArgs(string(domain.SlotStatusAvailable), "slot-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unknown booking returns ErrBookingNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE bookings SET cancelled_at`).
					WithArgs("bk-1").
					WillReturnRows(sqlmock.NewRows([]string{"slot_id", "guest_id", "subject", "created_at", "cancelled_at"}))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBookingRepository(db)
			b, err := repo.Cancel(ctx, "bk-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "slot-1", b.SlotID)
				require.NotNil(t, b.CancelledAt)
				assert.Equal(t, cancelled, *b.CancelledAt)
				assert.False(t, b.Active())
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, slot_id, guest_id, subject, created_at, cancelled_at`).
		WithArgs("bk-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "guest_id", "subject", "created_at", "cancelled_at"}).
			AddRow("bk-1", "slot-1", "g-1", "Sync", created, nil))

	repo := NewBookingRepository(db)
	b, err := repo.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.True(t, b.Active())
	assert.Equal(t, "slot-1", b.SlotID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetDetails(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM bookings b`).
					WithArgs("bk-1").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "slot_id", "guest_id", "subject", "created_at", "cancelled_at",
						"s_id", "host_id", "start_time", "duration_minutes", "status", "s_created_at", "s_updated_at",
						"g_id", "g_name", "g_email", "g_created_at", "g_updated_at",
						"h_id", "h_name", "h_email", "h_created_at", "h_updated_at",
					}).AddRow(
						"bk-1", "slot-1", "g-1", "Sync", now, nil,
						"slot-1", "h-1", start, 30, "booked", now, now,
						"g-1", "Alice", "alice@x.com", now, now,
						"h-1", "Hanna", "hanna@x.com", now, now,
					))
			},
		},
		{
			name: "no row returns ErrBookingNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM bookings b`).
					WithArgs("bk-1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: domain.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBookingRepository(db)
			d, err := repo.GetDetails(ctx, "bk-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bk-1", d.Booking.ID)
			assert.Equal(t, domain.SlotStatusBooked, d.Slot.Status)
			assert.Equal(t, "alice@x.com", d.Guest.Email)
			assert.Equal(t, "hanna@x.com", d.Host.Email)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
