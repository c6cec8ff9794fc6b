package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// ProductCreatedHandler mirrors catalog products into the storefront's
// products table, keyed by sku.
type ProductCreatedHandler struct {
	products domain.ProductRepository
	logger   *zap.Logger
}

func NewProductCreatedHandler(products domain.ProductRepository, logger *zap.Logger) *ProductCreatedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCreatedHandler{products: products, logger: logger.Named("product-created")}
}

func (h *ProductCreatedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	var payload domain.ProductCreatedPayload
	if !decodeEnvelope(h.logger, ev, "ProductCreated", &payload) {
		return nil
	}

	sku := strings.TrimSpace(payload.Sku)
	name := strings.TrimSpace(payload.Name)
	if sku == "" || name == "" {
		h.logger.Warn("product without sku or name", zap.String("product_id", payload.ProductID.String()))
		return nil
	}

	product := domain.NewProduct(sku, name, payload.Price)
	product.Description = payload.Description
	product.ImageURL = payload.MainImageURL
	if product.ImageURL == "" && len(payload.ImageURLs) > 0 {
		product.ImageURL = payload.ImageURLs[0]
	}
	if !payload.CreatedAtUtc.IsZero() {
		product.CreatedAtUtc = payload.CreatedAtUtc.UTC()
	}

	if err := h.products.UpsertBySku(ctx, product); err != nil {
		return fmt.Errorf("upsert product %s: %w", sku, err)
	}
	h.logger.Info("product mirrored", zap.String("sku", sku), zap.Int64("id", product.ID))
	return nil
}
