package service

import (
	"context"
	"digital-storefront/internal/common"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"fmt"
)

type CatalogService interface {
	List(ctx context.Context, productType string) ([]*model.Product, error)
	Get(ctx context.Context, productID string) (*model.Product, error)
	Seed(ctx context.Context) error
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) List(ctx context.Context, productType string) ([]*model.Product, error) {
	t := model.ProductType(productType)
	switch t {
	case "", model.ProductTypeOneTime, model.ProductTypeSubscription:
	default:
		return nil, common.Validation("unknown product type %q", productType)
	}

	products, err := s.productRepo.ListActive(ctx, t)
	if err != nil {
		return nil, storeErr("list products", err, "")
	}
	return products, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, productID string) (*model.Product, error) {
	if err := required(field{"productId", productID}); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr("find product", err, fmt.Sprintf("product %s not found", productID))
	}
	if !product.Active {
		return nil, common.NotFound("product %s not found", productID)
	}
	return product, nil
}

func (s *catalogServiceImpl) Seed(ctx context.Context) error {
	if err := s.productRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}
