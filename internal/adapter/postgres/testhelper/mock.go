// Package testhelper provides a pgxmock-backed Querier for repository tests.
package testhelper

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/ipakeev/words-fan-bot/internal/adapter/postgres"
)

// NewMockQuerier returns a Querier backed by pgxmock and the mock handle
// for setting expectations. Expectations are verified on cleanup.
func NewMockQuerier(t *testing.T) (postgres.Querier, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})

	return mock, mock
}
