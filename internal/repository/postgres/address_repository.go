package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	"github.com/lpt-gateway/internal/pkg/errors"
)

type addressRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAddressRepository создает новый экземпляр AddressRepository
func NewAddressRepository(db *DB) repository.AddressRepository {
	return &addressRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// GetByID возвращает адрес по ID
func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	query := `
		SELECT id, street, house_number, zip_code, city, district
		FROM addresses
		WHERE id = $1
	`

	var address domain.Address
	err := r.db.GetContext(ctx, &address, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrAddressNotFound.WithDetail("id", id)
	}
	if err != nil {
		r.logger.Error("Failed to get address", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseError, err)
	}

	return &address, nil
}
