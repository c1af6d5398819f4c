package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/bookfairhq/pos-backend/pkg/cache"
	"github.com/bookfairhq/pos-backend/pkg/config"
	"github.com/bookfairhq/pos-backend/pkg/logger"
	"github.com/bookfairhq/pos-backend/pkg/metrics"
	"github.com/bookfairhq/pos-backend/pkg/retry"
	"github.com/bookfairhq/pos-backend/pkg/sheets"
)

// timestampLayout is the fixed-width ledger timestamp format. Lexicographic
// order on it matches chronological order.
const timestampLayout = "2006-01-02 15:04:05"

const dateLayout = "2006-01-02"

// RowStore is the tabular backend surface the gateway consumes.
type RowStore interface {
	ListRecords(ctx context.Context, worksheet string) ([]sheets.Row, error)
	AppendRow(ctx context.Context, worksheet string, values []any) error
}

// Gateway is the only component talking to the remote spreadsheet. Reads
// degrade to empty results and writes to failure; errors never escape the
// gateway boundary.
//
// Transaction IDs derive from the current ledger length, which is only safe
// with a single effective writer stream. Concurrent writers can double-book
// an ID; this deployment accepts that.
type Gateway struct {
	store   RowStore
	cache   *cache.Store
	retry   retry.Policy
	log     *logger.Logger
	metrics *metrics.GatewayMetrics
	sheets  config.SheetsConfig
	ttl     config.CacheConfig
	now     func() time.Time
}

// GatewayParams collects the gateway's dependency stack.
type GatewayParams struct {
	Store   RowStore
	Cache   *cache.Store
	Retry   retry.Policy
	Logger  *logger.Logger
	Metrics *metrics.GatewayMetrics
	Sheets  config.SheetsConfig
	TTL     config.CacheConfig
	Now     func() time.Time
}

// NewGateway wires a catalog gateway over the provided row store.
func NewGateway(params GatewayParams) (*Gateway, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("row store required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	g := &Gateway{
		store:   params.Store,
		cache:   params.Cache,
		retry:   params.Retry,
		log:     params.Logger,
		metrics: params.Metrics,
		sheets:  params.Sheets,
		ttl:     params.TTL,
		now:     params.Now,
	}
	if g.retry.Retryable == nil {
		g.retry.Retryable = sheets.IsRateLimited
	}
	if g.retry.OnRetry == nil {
		g.retry.OnRetry = func(attempt int, err error) {
			g.metrics.IncRetry("list_records")
			g.warn(context.Background(), "remote call rate limited, retrying", err)
		}
	}
	return g, nil
}

// ListVendors returns every vendor. Cached; an unreachable backend yields an
// empty slice, never an error.
func (g *Gateway) ListVendors(ctx context.Context) []Vendor {
	key := cache.Key("vendors")
	if cached, ok := g.cache.Get(key); ok {
		g.metrics.IncCacheHit("vendors")
		return cached.([]Vendor)
	}
	g.metrics.IncCacheMiss("vendors")

	rows, err := g.fetchRecords(ctx, g.sheets.VendorsSheet)
	if err != nil {
		g.warn(ctx, "fetching vendors failed, serving empty list", err)
		return nil
	}
	vendors := make([]Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, vendorFromRow(row))
	}
	g.cache.Set(key, vendors, g.ttl.VendorsTTL)
	return vendors
}

// VendorByID resolves one vendor from the cached vendor list.
func (g *Gateway) VendorByID(ctx context.Context, vendorID int) (Vendor, bool) {
	for _, vendor := range g.ListVendors(ctx) {
		if vendor.ID == vendorID {
			return vendor, true
		}
	}
	return Vendor{}, false
}

// ListAllProducts returns the whole catalog in one fetch, avoiding N+1 calls
// against the quota-limited backend. Cached.
func (g *Gateway) ListAllProducts(ctx context.Context) []Product {
	key := cache.Key("products")
	if cached, ok := g.cache.Get(key); ok {
		g.metrics.IncCacheHit("products")
		return cached.([]Product)
	}
	g.metrics.IncCacheMiss("products")

	rows, err := g.fetchRecords(ctx, g.sheets.ProductsSheet)
	if err != nil {
		g.warn(ctx, "fetching products failed, serving empty list", err)
		return nil
	}
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, productFromRow(row))
	}
	g.cache.Set(key, products, g.ttl.ProductsTTL)
	return products
}

// ListProductsByVendor filters the cached full catalog; never a separate
// remote fetch.
func (g *Gateway) ListProductsByVendor(ctx context.Context, vendorID int) []Product {
	var filtered []Product
	for _, product := range g.ListAllProducts(ctx) {
		if product.VendorID == vendorID {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// ListProductsByType filters the cached full catalog by category.
func (g *Gateway) ListProductsByType(ctx context.Context, productType string) []Product {
	var filtered []Product
	for _, product := range g.ListAllProducts(ctx) {
		if product.ProductType == productType {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// ListLotteryProducts filters the cached full catalog to lottery-eligible
// items.
func (g *Gateway) ListLotteryProducts(ctx context.Context) []Product {
	var filtered []Product
	for _, product := range g.ListAllProducts(ctx) {
		if product.LotteryEligible {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// ProductByID resolves one product from the cached full catalog.
func (g *Gateway) ProductByID(ctx context.Context, productID int) (Product, bool) {
	for _, product := range g.ListAllProducts(ctx) {
		if product.ID == productID {
			return product, true
		}
	}
	return Product{}, false
}

// AppendTransaction records one sale in the ledger. Returns false instead of
// an error so a multi-item checkout can report partial failure without
// aborting the batch.
func (g *Gateway) AppendTransaction(ctx context.Context, productID, vendorID int, method PaymentMethod, amount int) bool {
	existing, err := g.fetchRecords(ctx, g.sheets.TransactionsSheet)
	if err != nil {
		g.warn(ctx, "reading ledger before append failed", err)
		g.metrics.IncTransaction("failed")
		return false
	}

	transactionID := len(existing) + 1
	timestamp := g.now().Format(timestampLayout)
	row := []any{transactionID, productID, vendorID, string(method), amount, timestamp}

	start := g.now()
	err = g.retry.Do(ctx, func(ctx context.Context) error {
		return g.store.AppendRow(ctx, g.sheets.TransactionsSheet, row)
	})
	g.metrics.ObserveCall("append_row", g.now().Sub(start))
	if err != nil {
		g.metrics.IncCallError("append_row")
		g.metrics.IncTransaction("failed")
		g.warn(ctx, "appending transaction failed", err)
		return false
	}
	g.metrics.IncTransaction("ok")
	return true
}

// ListTransactions scans the full ledger, optionally keeping only records
// whose date portion is on or after since.
func (g *Gateway) ListTransactions(ctx context.Context, since *time.Time) []Transaction {
	rows, err := g.fetchRecords(ctx, g.sheets.TransactionsSheet)
	if err != nil {
		g.warn(ctx, "fetching transactions failed, serving empty list", err)
		return nil
	}

	var sinceDate string
	if since != nil {
		sinceDate = since.Format(dateLayout)
	}

	transactions := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		tx := transactionFromRow(row)
		if sinceDate != "" && tx.Date() < sinceDate {
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions
}

// InvalidateCaches clears every cache unconditionally. Operator-triggered.
func (g *Gateway) InvalidateCaches() {
	g.cache.InvalidateAll()
}

func (g *Gateway) fetchRecords(ctx context.Context, worksheet string) ([]sheets.Row, error) {
	var rows []sheets.Row
	start := g.now()
	err := g.retry.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		rows, fetchErr = g.store.ListRecords(ctx, worksheet)
		return fetchErr
	})
	g.metrics.ObserveCall("list_records", g.now().Sub(start))
	if err != nil {
		g.metrics.IncCallError("list_records")
		return nil, err
	}
	return rows, nil
}

func (g *Gateway) warn(ctx context.Context, msg string, err error) {
	if g.log == nil {
		return
	}
	g.log.Error(ctx, msg, err)
}
