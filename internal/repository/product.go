package repository

import (
	"context"
	"digital-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	ListActive(ctx context.Context, productType model.ProductType) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "ebook_go_patterns", Name: "Go Patterns (eBook)", Description: "PDF and EPUB editions", Price: 1999, Currency: "USD", Type: model.ProductTypeOneTime, AssetKey: "products/ebook_go_patterns.zip", Active: true},
		{ID: "icon_pack_pro", Name: "Icon Pack Pro", Description: "1200 SVG icons", Price: 999, Currency: "USD", Type: model.ProductTypeOneTime, AssetKey: "products/icon_pack_pro.zip", Active: true},
		{ID: "course_monthly", Name: "Course library monthly", Description: "Streaming access to all courses", Price: 2999, Currency: "USD", Type: model.ProductTypeSubscription, Active: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

// ListActive returns active products, optionally filtered by type.
func (r *productRepoImpl) ListActive(ctx context.Context, productType model.ProductType) ([]*model.Product, error) {
	var products []*model.Product
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if productType != "" {
		q = q.Where("type = ?", productType)
	}

	err := q.Order("id asc").Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}
