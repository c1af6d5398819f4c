package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bookfairhq/pos-backend/internal/catalog"
)

// Catalog is the gateway surface the aggregator consumes. All reads degrade
// to empty slices on backend failure, so reports render a "no data" state
// instead of erroring.
type Catalog interface {
	ListTransactions(ctx context.Context, since *time.Time) []catalog.Transaction
	ListVendors(ctx context.Context) []catalog.Vendor
	ListAllProducts(ctx context.Context) []catalog.Product
}

// VendorSummary is one vendor's sales over a period.
type VendorSummary struct {
	VendorID   int
	VendorName string
	Cash       int
	Cashless   int
	Total      int
}

// DetailLine is one ledger entry resolved for display.
type DetailLine struct {
	TransactionID int
	Timestamp     string
	ProductTitle  string
	Amount        int
	PaymentMethod catalog.PaymentMethod
}

// Service folds the transaction ledger into per-vendor summaries and
// itemized drill-downs.
type Service interface {
	SalesSummaryByVendor(ctx context.Context, since *time.Time) []VendorSummary
	VendorTransactionDetail(ctx context.Context, vendorID int, since *time.Time) []DetailLine
}

type service struct {
	catalog Catalog
}

// NewService wires the aggregator over the catalog gateway.
func NewService(cat Catalog) (Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	return &service{catalog: cat}, nil
}

// SalesSummaryByVendor groups the (optionally date-filtered) ledger by the
// vendor recorded on each transaction, sorted descending by total.
func (s *service) SalesSummaryByVendor(ctx context.Context, since *time.Time) []VendorSummary {
	transactions := s.catalog.ListTransactions(ctx, since)
	if len(transactions) == 0 {
		return nil
	}

	names := make(map[int]string)
	for _, vendor := range s.catalog.ListVendors(ctx) {
		names[vendor.ID] = vendor.Name
	}

	byVendor := make(map[int]*VendorSummary)
	var order []int
	for _, tx := range transactions {
		summary, ok := byVendor[tx.VendorID]
		if !ok {
			name := names[tx.VendorID]
			if name == "" {
				name = fmt.Sprintf("Автор #%d", tx.VendorID)
			}
			summary = &VendorSummary{VendorID: tx.VendorID, VendorName: name}
			byVendor[tx.VendorID] = summary
			order = append(order, tx.VendorID)
		}
		switch tx.PaymentMethod {
		case catalog.PaymentCash:
			summary.Cash += tx.Amount
		case catalog.PaymentCashless:
			summary.Cashless += tx.Amount
		}
		summary.Total += tx.Amount
	}

	summaries := make([]VendorSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byVendor[id])
	}
	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Total > summaries[b].Total
	})
	return summaries
}

// VendorTransactionDetail lists one vendor's ledger entries newest first.
// The timestamp format is fixed-width, so a lexicographic sort is
// chronological. Product titles resolve from the cached full catalog.
func (s *service) VendorTransactionDetail(ctx context.Context, vendorID int, since *time.Time) []DetailLine {
	transactions := s.catalog.ListTransactions(ctx, since)
	if len(transactions) == 0 {
		return nil
	}

	titles := make(map[int]string)
	for _, product := range s.catalog.ListAllProducts(ctx) {
		titles[product.ID] = product.Title
	}

	var lines []DetailLine
	for _, tx := range transactions {
		if tx.VendorID != vendorID {
			continue
		}
		title := titles[tx.ProductID]
		if title == "" {
			title = fmt.Sprintf("Товар #%d", tx.ProductID)
		}
		lines = append(lines, DetailLine{
			TransactionID: tx.ID,
			Timestamp:     tx.Timestamp,
			ProductTitle:  title,
			Amount:        tx.Amount,
			PaymentMethod: tx.PaymentMethod,
		})
	}

	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].Timestamp > lines[b].Timestamp
	})
	return lines
}
