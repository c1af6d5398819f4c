package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bookfairhq/pos-backend/internal/catalog"
	"github.com/bookfairhq/pos-backend/internal/checkout"
	"github.com/bookfairhq/pos-backend/internal/reporting"
	"github.com/bookfairhq/pos-backend/internal/session"
	"github.com/bookfairhq/pos-backend/pkg/config"
)

// fakeCatalog backs the router, checkout and reporting services in one piece
// so dispatch tests run the real flows end to end.
type fakeCatalog struct {
	vendors      []catalog.Vendor
	products     []catalog.Product
	transactions []catalog.Transaction

	appends     int
	invalidated bool
}

func (f *fakeCatalog) ListVendors(ctx context.Context) []catalog.Vendor { return f.vendors }

func (f *fakeCatalog) VendorByID(ctx context.Context, vendorID int) (catalog.Vendor, bool) {
	for _, v := range f.vendors {
		if v.ID == vendorID {
			return v, true
		}
	}
	return catalog.Vendor{}, false
}

func (f *fakeCatalog) ListAllProducts(ctx context.Context) []catalog.Product { return f.products }

func (f *fakeCatalog) ListProductsByVendor(ctx context.Context, vendorID int) []catalog.Product {
	var out []catalog.Product
	for _, p := range f.products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) ListProductsByType(ctx context.Context, productType string) []catalog.Product {
	var out []catalog.Product
	for _, p := range f.products {
		if p.ProductType == productType {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) ProductByID(ctx context.Context, productID int) (catalog.Product, bool) {
	for _, p := range f.products {
		if p.ID == productID {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (f *fakeCatalog) AppendTransaction(ctx context.Context, productID, vendorID int, method catalog.PaymentMethod, amount int) bool {
	f.appends++
	f.transactions = append(f.transactions, catalog.Transaction{
		ID:            len(f.transactions) + 1,
		ProductID:     productID,
		VendorID:      vendorID,
		PaymentMethod: method,
		Amount:        amount,
		Timestamp:     "2026-08-23 12:00:00",
	})
	return true
}

func (f *fakeCatalog) ListTransactions(ctx context.Context, since *time.Time) []catalog.Transaction {
	return f.transactions
}

func (f *fakeCatalog) InvalidateCaches() { f.invalidated = true }

func newTestRouter(t *testing.T, cat *fakeCatalog) *Router {
	t.Helper()

	checkoutSvc, err := checkout.NewService(cat, session.NewManager(), nil, config.PromoConfig{LotteryFee: 200})
	if err != nil {
		t.Fatalf("checkout.NewService: %v", err)
	}
	reportingSvc, err := reporting.NewService(cat)
	if err != nil {
		t.Fatalf("reporting.NewService: %v", err)
	}
	r, err := New(Params{
		Catalog:   cat,
		Checkout:  checkoutSvc,
		Reporting: reportingSvc,
		UI:        config.UIConfig{PageSize: 2, DetailLimit: 10},
		Now: func() time.Time {
			return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func fixtureCatalog() *fakeCatalog {
	return &fakeCatalog{
		vendors: []catalog.Vendor{
			{ID: 1, Name: "Иванова", QRCodeURL: "https://qr/1"},
			{ID: 2, Name: "Петров", Contact: "@petrov"},
		},
		products: []catalog.Product{
			{ID: 10, Title: "Роман", Price: 600, VendorID: 1, ProductType: "книги", PromotionTag: "3for2"},
			{ID: 11, Title: "Сборник", Price: 500, VendorID: 1, ProductType: "книги", PromotionTag: "3for2", Discount: 50},
			{ID: 12, Title: "Повесть", Price: 300, VendorID: 1, ProductType: "книги", PromotionTag: "3for2"},
			{ID: 13, Title: "Открытка", Price: 100, VendorID: 2, ProductType: "открытки", LotteryEligible: true, PhotoURL: "https://img/13"},
		},
	}
}

func hasButton(v View, action string) bool {
	for _, buttonRow := range v.Buttons {
		for _, b := range buttonRow {
			if b.Action == action {
				return true
			}
		}
	}
	return false
}

func TestDispatchMainMenu(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	view := r.Dispatch(context.Background(), "op", "main")

	if !strings.Contains(view.Text, "Добро пожаловать") {
		t.Errorf("unexpected text %q", view.Text)
	}
	for _, action := range []string{actionSelectAuthor, actionSelectProduct, actionViewCart, actionViewTotals} {
		if !hasButton(view, action) {
			t.Errorf("expected a %s button", action)
		}
	}
}

func TestDispatchAuthors(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	view := r.Dispatch(context.Background(), "op", "select_author")

	if !hasButton(view, "author_1") || !hasButton(view, "author_2") {
		t.Errorf("expected author buttons, got %+v", view.Buttons)
	}
}

func TestDispatchAuthorProducts(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	view := r.Dispatch(context.Background(), "op", "author_1")

	for _, action := range []string{"product_10", "product_11", "product_12"} {
		if !hasButton(view, action) {
			t.Errorf("expected a %s button", action)
		}
	}
}

func TestDispatchProductTypesAndPagination(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	types := r.Dispatch(context.Background(), "op", "select_product")
	if !hasButton(types, "product_type_книги") || !hasButton(types, "product_type_открытки") {
		t.Fatalf("expected distinct type buttons, got %+v", types.Buttons)
	}

	// Page size 2 splits the three книги over two pages.
	first := r.Dispatch(context.Background(), "op", "product_type_книги")
	if !hasButton(first, "product_10") || !hasButton(first, "product_11") {
		t.Errorf("unexpected first page %+v", first.Buttons)
	}
	if !hasButton(first, "products_page_книги_1") {
		t.Error("expected a next-page button")
	}

	second := r.Dispatch(context.Background(), "op", "products_page_книги_1")
	if !hasButton(second, "product_12") {
		t.Errorf("unexpected second page %+v", second.Buttons)
	}
	if !hasButton(second, "products_page_книги_0") {
		t.Error("expected a previous-page button")
	}
}

func TestDispatchProductDetails(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	view := r.Dispatch(context.Background(), "op", "product_11")
	if !strings.Contains(view.Text, "Сборник") || !strings.Contains(view.Text, "Иванова") {
		t.Errorf("unexpected details %q", view.Text)
	}
	if !strings.Contains(view.Text, "3 за 2") {
		t.Error("expected the promotion badge")
	}
	if !hasButton(view, "add_to_cart_11") || !hasButton(view, "add_to_cart_discount_11") {
		t.Errorf("expected add buttons, got %+v", view.Buttons)
	}

	lottery := r.Dispatch(context.Background(), "op", "product_13")
	if !hasButton(lottery, "add_lottery_13") {
		t.Error("expected a lottery button")
	}
	if lottery.ImageURL != "https://img/13" {
		t.Errorf("expected the product photo, got %q", lottery.ImageURL)
	}
}

func TestDispatchAddToCartPrefixOrder(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	ctx := context.Background()

	// The discount token shares the plain-add prefix; it must apply the
	// discount, not parse as a plain add.
	view := r.Dispatch(ctx, "op", "add_to_cart_discount_11")
	if !strings.Contains(view.Text, "со скидкой 50") {
		t.Errorf("expected a discount confirmation, got %q", view.Text)
	}

	cartView := r.Dispatch(ctx, "op", "view_cart")
	if !strings.Contains(cartView.Text, "450 руб.") {
		t.Errorf("expected the discounted price in the cart, got %q", cartView.Text)
	}
}

func TestDispatchLotteryAdd(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	view := r.Dispatch(context.Background(), "op", "add_lottery_13")
	if !strings.Contains(view.Text, "200 руб.") {
		t.Errorf("expected the lottery fee, got %q", view.Text)
	}
}

func TestDispatchCartShowsBundleSavings(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	ctx := context.Background()

	for _, action := range []string{"add_to_cart_10", "add_to_cart_11", "add_to_cart_12"} {
		r.Dispatch(ctx, "op", action)
	}

	view := r.Dispatch(ctx, "op", "view_cart")
	if !strings.Contains(view.Text, "БЕСПЛАТНО") {
		t.Errorf("expected a free line, got %q", view.Text)
	}
	if !strings.Contains(view.Text, "Итого к оплате: 1100 руб.") {
		t.Errorf("expected total 1100, got %q", view.Text)
	}
	if !hasButton(view, "vendor_pay_1_cashless") || !hasButton(view, "vendor_pay_1_cash") {
		t.Errorf("expected per-vendor pay buttons, got %+v", view.Buttons)
	}
}

func TestDispatchVendorCheckoutFlow(t *testing.T) {
	cat := fixtureCatalog()
	r := newTestRouter(t, cat)
	ctx := context.Background()

	r.Dispatch(ctx, "op", "add_to_cart_10")
	r.Dispatch(ctx, "op", "add_lottery_13")

	pay := r.Dispatch(ctx, "op", "vendor_pay_1_cashless")
	if pay.ImageURL != "https://qr/1" {
		t.Errorf("expected the vendor QR code, got %q", pay.ImageURL)
	}
	if !hasButton(pay, "vendor_confirm_1_cashless") {
		t.Errorf("expected a confirm button, got %+v", pay.Buttons)
	}

	confirm := r.Dispatch(ctx, "op", "vendor_confirm_1_cashless")
	if !strings.Contains(confirm.Text, "успешно") {
		t.Errorf("unexpected confirmation %q", confirm.Text)
	}
	if !strings.Contains(confirm.Text, "неоплаченные авторы") {
		t.Error("expected a reminder about vendor 2")
	}
	if cat.appends != 1 {
		t.Errorf("expected 1 ledger append, got %d", cat.appends)
	}

	// Second vendor settles in cash and the cart clears.
	cash := r.Dispatch(ctx, "op", "vendor_pay_2_cash")
	if !strings.Contains(cash.Text, "наличными") {
		t.Errorf("unexpected cash instructions %q", cash.Text)
	}
	done := r.Dispatch(ctx, "op", "vendor_confirm_2_cash")
	if strings.Contains(done.Text, "неоплаченные") {
		t.Errorf("expected full settlement, got %q", done.Text)
	}

	empty := r.Dispatch(ctx, "op", "view_cart")
	if !strings.Contains(empty.Text, "пуста") {
		t.Errorf("expected an empty cart, got %q", empty.Text)
	}
}

func TestDispatchVendorConfirmTwiceShowsAlreadyPaid(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	ctx := context.Background()

	r.Dispatch(ctx, "op", "add_to_cart_10")
	r.Dispatch(ctx, "op", "add_lottery_13")
	r.Dispatch(ctx, "op", "vendor_confirm_1_cash")

	view := r.Dispatch(ctx, "op", "vendor_confirm_1_cash")
	if !strings.Contains(view.Text, "Уже оплачено") {
		t.Errorf("expected the already-paid status, got %q", view.Text)
	}
}

func TestDispatchWholeCartConfirm(t *testing.T) {
	cat := fixtureCatalog()
	r := newTestRouter(t, cat)
	ctx := context.Background()

	r.Dispatch(ctx, "op", "add_to_cart_10")
	r.Dispatch(ctx, "op", "add_to_cart_13")

	view := r.Dispatch(ctx, "op", "confirm_cash")
	if !strings.Contains(view.Text, "успешно") {
		t.Errorf("unexpected confirmation %q", view.Text)
	}
	if cat.appends != 2 {
		t.Errorf("expected 2 ledger appends, got %d", cat.appends)
	}

	empty := r.Dispatch(ctx, "op", "view_cart")
	if !strings.Contains(empty.Text, "пуста") {
		t.Errorf("expected an empty cart, got %q", empty.Text)
	}
}

func TestDispatchTotalsMenuUsesClock(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	view := r.Dispatch(context.Background(), "op", "view_totals")
	if !hasButton(view, "totals_date_2026-08-23") {
		t.Errorf("expected a today button, got %+v", view.Buttons)
	}
	if !hasButton(view, "totals_date_2026-08-22") {
		t.Error("expected a yesterday button")
	}
	if !hasButton(view, "totals_date_all") {
		t.Error("expected an all-time button")
	}
}

func TestDispatchSalesSummary(t *testing.T) {
	cat := fixtureCatalog()
	cat.transactions = []catalog.Transaction{
		{ID: 1, ProductID: 10, VendorID: 1, PaymentMethod: catalog.PaymentCash, Amount: 600, Timestamp: "2026-08-23 10:00:00"},
		{ID: 2, ProductID: 13, VendorID: 2, PaymentMethod: catalog.PaymentCashless, Amount: 100, Timestamp: "2026-08-23 11:00:00"},
	}
	r := newTestRouter(t, cat)

	view := r.Dispatch(context.Background(), "op", "totals_date_all")
	if !strings.Contains(view.Text, "Всего: 700 руб.") {
		t.Errorf("unexpected summary %q", view.Text)
	}
	if !hasButton(view, "vendor_details_1_all") || !hasButton(view, "vendor_details_2_all") {
		t.Errorf("expected drill-down buttons, got %+v", view.Buttons)
	}
}

func TestDispatchVendorDetails(t *testing.T) {
	cat := fixtureCatalog()
	cat.transactions = []catalog.Transaction{
		{ID: 1, ProductID: 10, VendorID: 1, PaymentMethod: catalog.PaymentCash, Amount: 600, Timestamp: "2026-08-23 10:00:00"},
	}
	r := newTestRouter(t, cat)

	view := r.Dispatch(context.Background(), "op", "vendor_details_1_all")
	if !strings.Contains(view.Text, "Иванова") || !strings.Contains(view.Text, "Роман") {
		t.Errorf("unexpected details %q", view.Text)
	}
	if !hasButton(view, "totals_date_all") {
		t.Error("expected a back-to-summary button")
	}
}

func TestDispatchClearCart(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())
	ctx := context.Background()

	r.Dispatch(ctx, "op", "add_to_cart_10")
	r.Dispatch(ctx, "op", "clear_cart")

	view := r.Dispatch(ctx, "op", "view_cart")
	if !strings.Contains(view.Text, "пуста") {
		t.Errorf("expected an empty cart, got %q", view.Text)
	}
}

func TestDispatchRefresh(t *testing.T) {
	cat := fixtureCatalog()
	r := newTestRouter(t, cat)

	r.Dispatch(context.Background(), "op", "refresh")
	if !cat.invalidated {
		t.Error("expected the caches invalidated")
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	view := r.Dispatch(context.Background(), "op", "bogus_token")
	if !strings.Contains(view.Text, "Неизвестное действие") {
		t.Errorf("unexpected view %q", view.Text)
	}
	if !hasButton(view, actionMain) {
		t.Error("expected a way back to the main menu")
	}
}

func TestDispatchUnknownProductShowsError(t *testing.T) {
	r := newTestRouter(t, fixtureCatalog())

	view := r.Dispatch(context.Background(), "op", "add_to_cart_999")
	if !strings.Contains(view.Text, "Не найдено") {
		t.Errorf("unexpected error view %q", view.Text)
	}
}
