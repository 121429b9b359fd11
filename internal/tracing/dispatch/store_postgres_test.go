package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/encounter"
	"ember/pkg/platform/sentinel"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresCreate(t *testing.T) {
	n := &ExposureNotification{
		ID:             "n1",
		Recipient:      encounter.PlatformPartner("bob"),
		STITypes:       []string{"chlamydia"},
		SourceReportID: "r1",
		Channel:        ChannelApp,
		Delivered:      true,
		CreatedAt:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("fresh pair inserts", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO exposure_notifications").
			WithArgs("n1", "platform", "bob", sqlmock.AnyArg(), "r1", "app", true, nil, n.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Create(context.Background(), n))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate pair reports conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO exposure_notifications").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Create(context.Background(), n)
		require.ErrorIs(t, err, sentinel.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresListByReport(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "recipient_kind", "recipient_id", "sti_types",
		"source_report_id", "channel", "delivered", "read_at", "created_at",
	}).
		AddRow("n1", "platform", "bob", "{chlamydia}", "r1", "app", true, nil, created).
		AddRow("n2", "manual", "c-carol", "{chlamydia}", "r1", "sms", false, nil, created)
	mock.ExpectQuery("SELECT (.+) FROM exposure_notifications").
		WithArgs("r1").
		WillReturnRows(rows)

	out, err := store.ListByReport(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, encounter.PlatformPartner("bob"), out[0].Recipient)
	assert.Equal(t, ChannelApp, out[0].Channel)
	assert.Equal(t, encounter.ManualPartner("c-carol"), out[1].Recipient)
	assert.False(t, out[1].Delivered)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkDelivered(t *testing.T) {
	t.Run("existing row flips delivered", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("UPDATE exposure_notifications SET delivered").
			WithArgs("n1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.MarkDelivered(context.Background(), "n1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown row reports not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("UPDATE exposure_notifications SET delivered").
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.MarkDelivered(context.Background(), "ghost")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresMarkRead(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE exposure_notifications").
		WithArgs(at, sqlmock.AnyArg(), "platform", "bob", "app").
		WillReturnResult(sqlmock.NewResult(0, 1))

	marked, err := store.MarkRead(context.Background(), encounter.PlatformPartner("bob").Key(), []string{"n1", "n2"}, at)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	require.NoError(t, mock.ExpectationsWereMet())
}
