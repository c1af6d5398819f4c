package checkout

import (
	"context"
	"fmt"

	"github.com/bookfairhq/pos-backend/internal/cart"
	"github.com/bookfairhq/pos-backend/internal/catalog"
	"github.com/bookfairhq/pos-backend/internal/pricing"
	"github.com/bookfairhq/pos-backend/internal/session"
	"github.com/bookfairhq/pos-backend/pkg/config"
	pkgerrors "github.com/bookfairhq/pos-backend/pkg/errors"
	"github.com/bookfairhq/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

// Catalog is the gateway surface the checkout flow consumes.
type Catalog interface {
	ProductByID(ctx context.Context, productID int) (catalog.Product, bool)
	VendorByID(ctx context.Context, vendorID int) (catalog.Vendor, bool)
	AppendTransaction(ctx context.Context, productID, vendorID int, method catalog.PaymentMethod, amount int) bool
}

// InstructionKind is the three-way cashless fallback: QR code, contact
// string, or an explicit no-payment-info state. None of these is an error.
type InstructionKind string

const (
	InstructionQR      InstructionKind = "qr"
	InstructionContact InstructionKind = "contact"
	InstructionNone    InstructionKind = "none"
	InstructionCash    InstructionKind = "cash"
)

// PaymentInstructions is what the operator shows the buyer for one vendor's
// share of the cart.
type PaymentInstructions struct {
	VendorID   int
	VendorName string
	Method     catalog.PaymentMethod
	Kind       InstructionKind
	QRCodeURL  string
	Contact    string
	Subtotal   int
	Items      []cart.Item
	Quote      pricing.Quote
}

// Summary reports the outcome of a confirmation batch. Per-item failures do
// not block the rest of the batch; they are counted and aggregated in Err
// for manual ledger reconciliation.
type Summary struct {
	VendorID     int
	Method       catalog.PaymentMethod
	Total        int
	SuccessCount int
	FailureCount int
	Err          error
	CartCleared  bool
}

// Service is the per-session cart and checkout state machine.
type Service interface {
	AddToCart(ctx context.Context, sessionID string, productID int, withDiscount bool) (cart.Item, error)
	AddLotteryToCart(ctx context.Context, sessionID string, productID int) (cart.Item, error)
	ClearCart(ctx context.Context, sessionID string)
	CartQuote(ctx context.Context, sessionID string) (cart.Cart, pricing.Quote)
	PaymentState(ctx context.Context, sessionID string) cart.PaymentState
	StartVendorCheckout(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) (*PaymentInstructions, error)
	ConfirmVendorPayment(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) (*Summary, error)
	ConfirmWholeCartPayment(ctx context.Context, sessionID string, method catalog.PaymentMethod) (*Summary, error)
}

type service struct {
	catalog  Catalog
	sessions *session.Manager
	log      *logger.Logger
	promo    config.PromoConfig
}

// NewService builds the checkout state machine over the catalog gateway.
func NewService(cat Catalog, sessions *session.Manager, logg *logger.Logger, promo config.PromoConfig) (Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if promo.LotteryFee <= 0 {
		return nil, fmt.Errorf("lottery fee must be positive")
	}
	return &service{
		catalog:  cat,
		sessions: sessions,
		log:      logg,
		promo:    promo,
	}, nil
}

// AddToCart snapshots the product into the session's cart. A manual discount
// is applied once, at add time; later computation derives from the snapshot.
func (s *service) AddToCart(ctx context.Context, sessionID string, productID int, withDiscount bool) (cart.Item, error) {
	product, ok := s.catalog.ProductByID(ctx, productID)
	if !ok {
		return cart.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	item := cart.Item{
		Product:        product,
		EffectivePrice: product.Price,
	}
	if withDiscount && product.Discount > 0 {
		item.EffectivePrice = max(0, product.Price-product.Discount)
		item.DiscountApplied = product.Discount
	}

	state := s.sessions.Get(sessionID)
	state.Cart.Add(item)
	return item, nil
}

// AddLotteryToCart adds the product at the fixed lottery fee, overriding the
// catalog price unconditionally.
func (s *service) AddLotteryToCart(ctx context.Context, sessionID string, productID int) (cart.Item, error) {
	product, ok := s.catalog.ProductByID(ctx, productID)
	if !ok {
		return cart.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	item := cart.Item{
		Product:        product,
		EffectivePrice: s.promo.LotteryFee,
		IsLottery:      true,
	}
	state := s.sessions.Get(sessionID)
	state.Cart.Add(item)
	return item, nil
}

// ClearCart empties cart and payment state together.
func (s *service) ClearCart(ctx context.Context, sessionID string) {
	s.sessions.Get(sessionID).Reset()
}

// CartQuote prices the whole cart for display.
func (s *service) CartQuote(ctx context.Context, sessionID string) (cart.Cart, pricing.Quote) {
	state := s.sessions.Get(sessionID)
	return state.Cart, pricing.PriceCart(state.Cart.Items)
}

// PaymentState exposes the session's per-vendor paid flags.
func (s *service) PaymentState(ctx context.Context, sessionID string) cart.PaymentState {
	return s.sessions.Get(sessionID).Paid
}

// StartVendorCheckout prices one vendor's share of the cart and resolves the
// payment instructions for the chosen method. The subtotal comes from
// pricing only the vendor's subset, which may group bundles differently than
// the whole-cart view.
func (s *service) StartVendorCheckout(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) (*PaymentInstructions, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	state := s.sessions.Get(sessionID)
	items := state.Cart.ItemsForVendor(vendorID)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items for this vendor in the cart")
	}
	if state.Paid[vendorID] {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vendor already paid")
	}

	vendor, ok := s.catalog.VendorByID(ctx, vendorID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	quote := pricing.PriceCart(items)
	instructions := &PaymentInstructions{
		VendorID:   vendorID,
		VendorName: vendor.Name,
		Method:     method,
		Subtotal:   quote.Total,
		Items:      items,
		Quote:      quote,
	}

	if method == catalog.PaymentCash {
		instructions.Kind = InstructionCash
		return instructions, nil
	}

	switch {
	case vendor.QRCodeURL != "":
		instructions.Kind = InstructionQR
		instructions.QRCodeURL = vendor.QRCodeURL
	case vendor.Contact != "":
		instructions.Kind = InstructionContact
		instructions.Contact = vendor.Contact
	default:
		instructions.Kind = InstructionNone
	}
	return instructions, nil
}

// ConfirmVendorPayment records one transaction per cart item of the vendor.
// The vendor is marked paid whenever this is invoked, even with partial
// append failures; failures surface in the summary, not via retries. When
// every vendor in the cart is paid the whole session state resets.
func (s *service) ConfirmVendorPayment(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) (*Summary, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	state := s.sessions.Get(sessionID)
	items := state.Cart.ItemsForVendor(vendorID)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items for this vendor in the cart")
	}
	if state.Paid[vendorID] {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vendor already paid")
	}

	quote := pricing.PriceCart(items)
	summary := &Summary{
		VendorID: vendorID,
		Method:   method,
		Total:    quote.Total,
	}

	for i, item := range items {
		amount := item.EffectivePrice
		if quote.IsFree(i) {
			amount = 0
		}
		if s.catalog.AppendTransaction(ctx, item.Product.ID, vendorID, method, amount) {
			summary.SuccessCount++
			continue
		}
		summary.FailureCount++
		summary.Err = multierr.Append(summary.Err,
			fmt.Errorf("recording %q (product %d) failed", item.Product.Title, item.Product.ID))
	}

	state.Paid[vendorID] = true
	if summary.FailureCount > 0 && s.log != nil {
		s.log.Warn(ctx, fmt.Sprintf("vendor %d marked paid with %d failed appends", vendorID, summary.FailureCount))
	}

	if state.Paid.AllPaid(state.Cart.VendorIDs()) {
		state.Reset()
		summary.CartCleared = true
	}
	return summary, nil
}

// ConfirmWholeCartPayment is the legacy single-pass checkout: one
// transaction per item over the entire cart, then the cart clears regardless
// of per-item failures.
func (s *service) ConfirmWholeCartPayment(ctx context.Context, sessionID string, method catalog.PaymentMethod) (*Summary, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	state := s.sessions.Get(sessionID)
	if state.Cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	quote := pricing.PriceCart(state.Cart.Items)
	summary := &Summary{
		Method: method,
		Total:  quote.Total,
	}

	for i, item := range state.Cart.Items {
		amount := item.EffectivePrice
		if quote.IsFree(i) {
			amount = 0
		}
		if s.catalog.AppendTransaction(ctx, item.Product.ID, item.Product.VendorID, method, amount) {
			summary.SuccessCount++
			continue
		}
		summary.FailureCount++
		summary.Err = multierr.Append(summary.Err,
			fmt.Errorf("recording %q (product %d) failed", item.Product.Title, item.Product.ID))
	}

	state.Reset()
	summary.CartCleared = true
	return summary, nil
}
