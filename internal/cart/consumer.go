package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/outbox"
)

// StockChangedData is the payload carried by product.stock_changed events.
type StockChangedData struct {
	ProductID uuid.UUID `json:"productId"`
	InStock   bool      `json:"inStock"`
}

// Consumer pushes catalog stock changes into every open cart holding the
// affected product.
type Consumer struct {
	store *Store
	logg  *logger.Logger
}

// NewConsumer builds a stock event consumer.
func NewConsumer(store *Store, logg *logger.Logger) (*Consumer, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{store: store, logg: logg}, nil
}

// Process applies a stock change to the carts indexed for the product. Carts
// holding a product that went out of stock drop the line and re-save.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != enums.OutboxEventProductStockChanged {
		c.logg.Info(logCtx, "event not handled by cart consumer")
		return nil
	}

	var data StockChangedData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return fmt.Errorf("decode stock payload: %w", err)
	}
	if data.ProductID == uuid.Nil {
		return fmt.Errorf("stock event missing product id")
	}

	tokens, err := c.store.TokensHolding(ctx, data.ProductID)
	if err != nil {
		return fmt.Errorf("listing carts for product: %w", err)
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"product_id": data.ProductID.String(),
		"in_stock":   data.InStock,
		"carts":      len(tokens),
	})

	for _, token := range tokens {
		snapshot, err := c.store.Load(ctx, token)
		if err != nil {
			c.logg.Error(logCtx, "failed to load cart for stock update", err)
			return err
		}
		snapshot.SetStock(data.ProductID, data.InStock)
		if err := c.store.Save(ctx, token, snapshot); err != nil {
			c.logg.Error(logCtx, "failed to save cart after stock update", err)
			return err
		}
	}

	c.logg.Info(logCtx, "stock change applied to open carts")
	return nil
}
