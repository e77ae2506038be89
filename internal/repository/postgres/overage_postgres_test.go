package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"homeaudit/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestOveragePostgres_FindByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOveragePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		notified := time.Now().UTC().Add(-48 * time.Hour)
		rows := sqlmock.NewRows([]string{"user_id", "last_notified_size", "last_notified_at"}).
			AddRow("alice", "0.6 TiB", notified)

		mock.ExpectQuery("SELECT (.+) FROM overages WHERE user_id = ?").
			WithArgs("alice").
			WillReturnRows(rows)

		rec, err := repo.FindByUser(ctx, "alice")

		assert.NoError(t, err)
		assert.NotNil(t, rec)
		assert.Equal(t, "alice", rec.UserID)
		assert.Equal(t, "0.6 TiB", rec.LastNotifiedSize)
		assert.True(t, rec.LastNotifiedAt.Equal(notified))
	})

	t.Run("never notified", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM overages WHERE user_id = ?").
			WithArgs("bob").
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.FindByUser(ctx, "bob")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, rec)
	})

	t.Run("query failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM overages WHERE user_id = ?").
			WithArgs("carol").
			WillReturnError(errors.New("connection reset"))

		rec, err := repo.FindByUser(ctx, "carol")

		assert.Error(t, err)
		assert.Nil(t, rec)
	})
}

func TestOveragePostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOveragePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &model.OverageRecord{
		UserID:           "alice",
		LastNotifiedSize: "0.6 TiB",
		LastNotifiedAt:   now,
	}

	t.Run("insert or update", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO overages").
			WithArgs(rec.UserID, rec.LastNotifiedSize, rec.LastNotifiedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Upsert(ctx, rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write failure", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO overages").
			WithArgs(rec.UserID, rec.LastNotifiedSize, rec.LastNotifiedAt).
			WillReturnError(errors.New("disk full"))

		assert.Error(t, repo.Upsert(ctx, rec))
	})
}
