package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

// ProductInfo is the catalog service's product view as seen by the cart.
type ProductInfo struct {
	ID    uint64          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// ProductFetcher looks up current product data in the catalog service.
type ProductFetcher interface {
	GetProduct(ctx context.Context, productID uint64) (*ProductInfo, error)
}

// StockReserver reserves stock for a checkout. Release and confirm are not
// part of this interface: they travel asynchronously as stock events through
// the outbox.
type StockReserver interface {
	Reserve(ctx context.Context, items map[uint64]int) error
}

const (
	maxRetries     = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// CatalogClient calls the catalog service over HTTP with bounded timeouts
// and capped exponential backoff on transport errors. Product reads fall
// back to a Redis snapshot when the catalog is unreachable.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	redis      *redis.Client
	logger     *zap.Logger
}

func NewCatalogClient(baseURL string, tokens TokenProvider, redisClient *redis.Client, logger *zap.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens: tokens,
		redis:  redisClient,
		logger: logger,
	}
}

// GetProduct fetches current product data, retrying transport failures and
// falling back to the cached snapshot when the catalog stays down.
func (c *CatalogClient) GetProduct(ctx context.Context, productID uint64) (*ProductInfo, error) {
	url := fmt.Sprintf("%s/products/%d", c.baseURL, productID)

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var info ProductInfo
			if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
				resp.Body.Close()
				return nil, errors.Serialization("Failed to decode product response", err)
			}
			resp.Body.Close()
			c.cacheProduct(ctx, &info)
			return &info, nil
		case http.StatusNotFound:
			resp.Body.Close()
			return nil, errors.NotFound(fmt.Sprintf("Product %d not found", productID))
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("catalog service returned %d", resp.StatusCode)
		}
	}

	if cached := c.cachedProduct(ctx, productID); cached != nil {
		c.logger.Warn("Catalog unreachable, serving cached product",
			zap.Uint64("product_id", productID),
			zap.Error(lastErr),
		)
		return cached, nil
	}

	return nil, errors.Internal(fmt.Sprintf("Failed to fetch product %d", productID), lastErr)
}

// Reserve issues one reservation call per product, sequentially. The first
// failure stops the loop and reports it; items already reserved by prior
// calls in the same batch are not released here.
func (c *CatalogClient) Reserve(ctx context.Context, items map[uint64]int) error {
	productIDs := make([]uint64, 0, len(items))
	for id := range items {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	for _, productID := range productIDs {
		if err := c.reserveOne(ctx, productID, items[productID]); err != nil {
			return err
		}
	}
	return nil
}

func (c *CatalogClient) reserveOne(ctx context.Context, productID uint64, quantity int) error {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/products/%d/reserve", c.baseURL, productID)

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.tokens != nil {
			req.Header.Set("Authorization", "Bearer "+c.tokens.CurrentToken())
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			return nil
		case http.StatusConflict:
			return errors.Conflict(fmt.Sprintf("Insufficient stock for product %d", productID))
		case http.StatusNotFound:
			return errors.NotFound(fmt.Sprintf("Product %d not found", productID))
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Unauthorized("Not authorized to reserve stock")
		default:
			lastErr = fmt.Errorf("catalog service returned %d", resp.StatusCode)
		}
	}

	return errors.Internal(fmt.Sprintf("Failed to reserve stock for product %d", productID), lastErr)
}

func (c *CatalogClient) cacheKey(productID uint64) string {
	return fmt.Sprintf("product-cache:%d", productID)
}

func (c *CatalogClient) cacheProduct(ctx context.Context, info *ProductInfo) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.cacheKey(info.ID), data, time.Hour).Err(); err != nil {
		c.logger.Debug("Failed to cache product snapshot", zap.Uint64("product_id", info.ID), zap.Error(err))
	}
}

func (c *CatalogClient) cachedProduct(ctx context.Context, productID uint64) *ProductInfo {
	if c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, c.cacheKey(productID)).Result()
	if err != nil {
		return nil
	}
	var info ProductInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil
	}
	return &info
}
