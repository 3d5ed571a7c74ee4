package repository

import (
	"context"

	"github.com/lpt-gateway/internal/domain"
)

// AddressRepository определяет методы для работы с сохранёнными адресами
type AddressRepository interface {
	// GetByID возвращает адрес по ID, errors.ErrAddressNotFound если адреса нет
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
}
