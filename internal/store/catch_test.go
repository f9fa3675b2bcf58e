package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catchRowColumns = []string{
	"id", "session_id", "species", "weight_kg", "length_cm", "bait_used",
	"released", "photo_url", "photo_key", "photo_content_type",
	"created_at", "updated_at",
}

func newCatchMock(t *testing.T) (*CatchRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCatchRepository(db), mock
}

func TestCatchRepositoryListBuildsFilters(t *testing.T) {
	repo, mock := newCatchMock(t)
	released := true

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM catches c JOIN fishing_sessions s ON s\.id = c\.session_id WHERE s\.user_id = \$1 AND c\.session_id = \$2 AND c\.species ILIKE \$3 AND c\.released = \$4`).
		WithArgs("u1", "s1", "%pike%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`WHERE s\.user_id = \$1 AND c\.session_id = \$2 AND c\.species ILIKE \$3 AND c\.released = \$4\s+ORDER BY c\.created_at DESC\s+OFFSET \$5 LIMIT \$6`).
		WithArgs("u1", "s1", "%pike%", true, 0, 20).
		WillReturnRows(sqlmock.NewRows(catchRowColumns))

	filter := CatchFilter{SessionID: "s1", Species: "pike", Released: &released}
	catches, total, err := repo.List(context.Background(), "u1", filter, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, catches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatchRepositoryGetScansNullableColumns(t *testing.T) {
	repo, mock := newCatchMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM catches c\s+JOIN fishing_sessions s ON s\.id = c\.session_id\s+WHERE c\.id = \$1 AND s\.user_id = \$2`).
		WithArgs("c1", "u1").
		WillReturnRows(sqlmock.NewRows(catchRowColumns).
			AddRow("c1", "s1", "pike", 2.5, nil, nil, false, nil, nil, nil, now, now))

	c, err := repo.Get(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "pike", c.Species)
	require.NotNil(t, c.WeightKg)
	assert.Equal(t, 2.5, *c.WeightKg)
	assert.Nil(t, c.LengthCm)
	assert.Nil(t, c.BaitUsed)
	assert.Nil(t, c.PhotoURL)
	assert.Nil(t, c.PhotoKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Updates and deletes are scoped through the owning session's user so a
// leaked catch id cannot touch another user's rows.
func TestCatchRepositoryDeleteScopedToOwner(t *testing.T) {
	repo, mock := newCatchMock(t)

	mock.ExpectExec(`DELETE FROM catches\s+WHERE id = \$1\s+AND session_id IN \(SELECT id FROM fishing_sessions WHERE user_id = \$2\)`).
		WithArgs("c1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u2", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatchRepositorySetPhoto(t *testing.T) {
	repo, mock := newCatchMock(t)

	mock.ExpectExec(`UPDATE catches\s+SET photo_url = \$1,\s+photo_key = \$2,\s+photo_content_type = \$3,\s+updated_at = \$4\s+WHERE id = \$5\s+AND session_id IN \(SELECT id FROM fishing_sessions WHERE user_id = \$6\)`).
		WithArgs("/api/catches/c1/photo", "catches/c1/obj", "image/jpeg", sqlmock.AnyArg(), "c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPhoto(context.Background(), "u1", "c1", "/api/catches/c1/photo", "catches/c1/obj", "image/jpeg")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
