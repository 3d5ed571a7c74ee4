package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/lpt-gateway/internal/domain/repository"
	"github.com/lpt-gateway/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewAddressRepositoryForTest creates an address repository over a test connection
func NewAddressRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.AddressRepository {
	return postgres.NewAddressRepository(postgres.NewDBForTest(db, logger))
}
