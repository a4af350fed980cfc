package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "public.universities",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "public.universities",
		ConflictKeys: []string{"id"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:   "public.universities",
		Columns: []string{"id", "name"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.universities", `"public"."universities"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"domain", "name"}
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_public_universities" \(LIKE "public"."universities" INCLUDING DEFAULTS\)`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_public_universities"}, cols).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "public"."universities" \("domain", "name"\) SELECT .* ON CONFLICT \("domain"\) DO UPDATE SET "name" = EXCLUDED."name"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "public.universities",
		Columns:      cols,
		ConflictKeys: []string{"domain"},
	}, [][]any{{"uba.ar", "UBA"}, {"unam.mx", "UNAM"}})

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "universities",
		Columns:      []string{"domain"},
		ConflictKeys: []string{"domain"},
	}, [][]any{{"uba.ar"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestLastByKey(t *testing.T) {
	cfg := UpsertConfig{Columns: []string{"domain", "name"}, ConflictKeys: []string{"domain"}}

	rows, err := lastByKey(cfg, [][]any{
		{"uba.ar", "old"},
		{"unam.mx", "UNAM"},
		{"uba.ar", "new"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"uba.ar", "new"}, {"unam.mx", "UNAM"}}, rows)
}

func TestLastByKey_Errors(t *testing.T) {
	_, err := lastByKey(UpsertConfig{Columns: []string{"name"}, ConflictKeys: []string{"domain"}}, [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a column")

	_, err = lastByKey(UpsertConfig{Columns: []string{"domain", "name"}, ConflictKeys: []string{"domain"}}, [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row has 1 values")
}
