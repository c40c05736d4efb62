package service

import (
	"context"
	"digital-storefront/internal/client"
	"digital-storefront/internal/common"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"errors"
	"fmt"
	"time"
)

var errStorageDisabled = errors.New("asset storage is not configured")

type Download struct {
	URL       string
	ExpiresAt time.Time
}

// DownloadService hands out presigned links to purchased files. A link
// counts as a download once it has been issued.
type DownloadService interface {
	Issue(ctx context.Context, orderID, productID string) (*Download, error)
}

type downloadServiceImpl struct {
	purchases   PurchaseService
	tracker     AccessTracker
	productRepo repository.ProductRepository
	presigner   client.AssetPresigner
}

// NewDownloadService accepts a nil presigner when storage is not configured;
// Issue then fails with store_unavailable.
func NewDownloadService(
	purchases PurchaseService,
	tracker AccessTracker,
	productRepo repository.ProductRepository,
	presigner client.AssetPresigner,
) DownloadService {
	return &downloadServiceImpl{
		purchases:   purchases,
		tracker:     tracker,
		productRepo: productRepo,
		presigner:   presigner,
	}
}

func (s *downloadServiceImpl) Issue(ctx context.Context, orderID, productID string) (*Download, error) {
	if _, err := s.purchases.GetCompletedPurchase(ctx, orderID, productID); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr("find product", err, fmt.Sprintf("product %s not found", productID))
	}
	if product.AssetKey == "" {
		return nil, common.NotFound("product %s has no downloadable file", productID)
	}

	if s.presigner == nil {
		return nil, common.StoreUnavailable("presign download", errStorageDisabled)
	}
	url, expiresAt, err := s.presigner.PresignGet(ctx, product.AssetKey)
	if err != nil {
		return nil, common.StoreUnavailable("presign download", err)
	}

	if _, err := s.tracker.RecordAccess(ctx, orderID, productID, model.AccessTypeDownload); err != nil {
		return nil, err
	}

	return &Download{URL: url, ExpiresAt: expiresAt}, nil
}
