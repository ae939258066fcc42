package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hatbazar/storefront/pkg/errors"
)

func setupStorage(t *testing.T) (*Storage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestStorage_Get_Success(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery("SELECT slot_value FROM storefront_kv").
		WithArgs("hatbazar:cart:sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"slot_value"}).AddRow(`[{"id":"a"}]`))

	got, err := s.Get(context.Background(), "hatbazar:cart:sess-1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_Get_Missing(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery("SELECT slot_value FROM storefront_kv").
		WithArgs("hatbazar:cart:unknown").
		WillReturnRows(pgxmock.NewRows([]string{"slot_value"}))

	_, err := s.Get(context.Background(), "hatbazar:cart:unknown")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_Get_QueryError(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery("SELECT slot_value FROM storefront_kv").
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorage_Set_Upserts(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectExec("INSERT INTO storefront_kv").
		WithArgs("k", "v").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_Delete(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectExec("DELETE FROM storefront_kv").
		WithArgs("k").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, s.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
