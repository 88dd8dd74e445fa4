package application

import (
	"context"

	"github.com/arozhkov/storefront/internal/store/domain"
)

// ProductClient is the remote storefront API.
type ProductClient interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderResult, error)
}
