// Package router maps inbound action tokens to core operations and renders
// each outcome as a view payload. Every failure view keeps a path back to a
// known-good state; a session is never left without a forward action.
package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bookfairhq/pos-backend/internal/catalog"
	"github.com/bookfairhq/pos-backend/internal/checkout"
	"github.com/bookfairhq/pos-backend/internal/pricing"
	"github.com/bookfairhq/pos-backend/internal/reporting"
	"github.com/bookfairhq/pos-backend/pkg/config"
	pkgerrors "github.com/bookfairhq/pos-backend/pkg/errors"
	"github.com/bookfairhq/pos-backend/pkg/logger"
)

// Catalog is the gateway surface the router consumes directly.
type Catalog interface {
	ListVendors(ctx context.Context) []catalog.Vendor
	VendorByID(ctx context.Context, vendorID int) (catalog.Vendor, bool)
	ListAllProducts(ctx context.Context) []catalog.Product
	ListProductsByVendor(ctx context.Context, vendorID int) []catalog.Product
	ListProductsByType(ctx context.Context, productType string) []catalog.Product
	ProductByID(ctx context.Context, productID int) (catalog.Product, bool)
	InvalidateCaches()
}

// Router dispatches one action per call; the transport serializes actions
// within a session.
type Router struct {
	catalog   Catalog
	checkout  checkout.Service
	reporting reporting.Service
	log       *logger.Logger
	ui        config.UIConfig
	now       func() time.Time
}

// Params collects the router's dependency stack.
type Params struct {
	Catalog   Catalog
	Checkout  checkout.Service
	Reporting reporting.Service
	Logger    *logger.Logger
	UI        config.UIConfig
	Now       func() time.Time
}

// New wires an interaction router.
func New(params Params) (*Router, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if params.Reporting == nil {
		return nil, fmt.Errorf("reporting service required")
	}
	if params.UI.PageSize <= 0 {
		params.UI.PageSize = 10
	}
	if params.UI.DetailLimit <= 0 {
		params.UI.DetailLimit = 10
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Router{
		catalog:   params.Catalog,
		checkout:  params.Checkout,
		reporting: params.Reporting,
		log:       params.Logger,
		ui:        params.UI,
		now:       params.Now,
	}, nil
}

// Dispatch maps one action token to a core operation and renders the result.
func (r *Router) Dispatch(ctx context.Context, sessionID, action string) View {
	if r.log != nil {
		ctx = r.log.WithAction(r.log.WithSessionID(ctx, sessionID), action)
	}

	switch {
	case action == actionMain:
		return r.mainMenu()
	case action == actionSelectAuthor:
		return r.showAuthors(ctx)
	case action == actionSelectProduct:
		return r.showProductTypes(ctx)
	case action == actionViewCart:
		return r.showCart(ctx, sessionID)
	case action == actionClearCart:
		return r.clearCart(ctx, sessionID)
	case action == actionViewTotals:
		return r.showTotalsMenu()
	case action == actionRefresh:
		return r.refresh(ctx)
	}

	if arg, ok := strings.CutPrefix(action, prefixProductsPage); ok {
		if productType, page, ok := splitPage(arg); ok {
			return r.showProductsByType(ctx, productType, page)
		}
		return r.unknownAction(ctx, action)
	}
	if arg, ok := strings.CutPrefix(action, prefixProductType); ok {
		return r.showProductsByType(ctx, arg, 0)
	}
	if arg, ok := strings.CutPrefix(action, prefixAuthor); ok {
		if id, err := strconv.Atoi(arg); err == nil {
			return r.showProductsByAuthor(ctx, id)
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixAddDiscount); ok {
		if id, err := strconv.Atoi(arg); err == nil {
			return r.addToCart(ctx, sessionID, id, true)
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixAddLottery); ok {
		if id, err := strconv.Atoi(arg); err == nil {
			return r.addLottery(ctx, sessionID, id)
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixAdd); ok {
		if id, err := strconv.Atoi(arg); err == nil {
			return r.addToCart(ctx, sessionID, id, false)
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixProduct); ok {
		if id, err := strconv.Atoi(arg); err == nil {
			return r.showProductDetails(ctx, id)
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixVendorPay); ok {
		if id, method, ok := splitIDSuffix(arg); ok {
			return r.startVendorCheckout(ctx, sessionID, id, catalog.PaymentMethod(method))
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixVendorConfirm); ok {
		if id, method, ok := splitIDSuffix(arg); ok {
			return r.confirmVendorPayment(ctx, sessionID, id, catalog.PaymentMethod(method))
		}
	}
	if arg, ok := strings.CutPrefix(action, prefixTotalsDate); ok {
		return r.showSalesSummary(ctx, arg)
	}
	if arg, ok := strings.CutPrefix(action, prefixVendorDetails); ok {
		if id, date, ok := splitIDSuffix(arg); ok {
			return r.showVendorDetails(ctx, id, date)
		}
	}
	if method, ok := strings.CutPrefix(action, prefixConfirm); ok {
		// Legacy single-pass checkout over the whole cart.
		return r.confirmWholeCart(ctx, sessionID, catalog.PaymentMethod(method))
	}

	return r.unknownAction(ctx, action)
}

func (r *Router) mainMenu() View {
	return View{
		Text: "Добро пожаловать в кассу книжной ярмарки! Выберите действие:",
		Buttons: [][]Button{
			row(Button{Label: "Выбор по автору", Action: actionSelectAuthor}),
			row(Button{Label: "Выбор по продукту", Action: actionSelectProduct}),
			row(Button{Label: "Корзина", Action: actionViewCart}),
			row(Button{Label: "Итоги", Action: actionViewTotals}),
		},
	}
}

func (r *Router) showAuthors(ctx context.Context) View {
	vendors := r.catalog.ListVendors(ctx)
	if len(vendors) == 0 {
		return View{
			Text:    "Извините, не удалось загрузить список авторов.",
			Buttons: [][]Button{row(Button{Label: "⬅️ Назад", Action: actionMain})},
		}
	}

	var buttons [][]Button
	for _, vendor := range vendors {
		name := vendor.Name
		if name == "" {
			name = fmt.Sprintf("Автор #%d", vendor.ID)
		}
		buttons = append(buttons, row(Button{Label: name, Action: authorAction(vendor.ID)}))
	}
	buttons = append(buttons, row(Button{Label: "⬅️ Назад", Action: actionMain}))
	return View{Text: "Выберите автора:", Buttons: buttons}
}

func (r *Router) showProductTypes(ctx context.Context) View {
	seen := make(map[string]struct{})
	var types []string
	for _, product := range r.catalog.ListAllProducts(ctx) {
		t := strings.TrimSpace(product.ProductType)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	if len(types) == 0 {
		return View{
			Text:    "Извините, не удалось загрузить каталог.",
			Buttons: [][]Button{row(Button{Label: "⬅️ Назад", Action: actionMain})},
		}
	}

	var buttons [][]Button
	for _, t := range types {
		buttons = append(buttons, row(Button{Label: t, Action: productTypeAction(t)}))
	}
	buttons = append(buttons, row(Button{Label: "⬅️ Назад", Action: actionMain}))
	return View{Text: "Выберите тип продукта:", Buttons: buttons}
}

func (r *Router) showProductsByType(ctx context.Context, productType string, page int) View {
	products := r.catalog.ListProductsByType(ctx, productType)
	if len(products) == 0 {
		return View{
			Text:    fmt.Sprintf("Продукты типа «%s» не найдены.", productType),
			Buttons: [][]Button{row(Button{Label: "⬅️ К типам продуктов", Action: actionSelectProduct})},
		}
	}

	start := page * r.ui.PageSize
	if start >= len(products) {
		start = 0
		page = 0
	}
	end := min(start+r.ui.PageSize, len(products))

	var buttons [][]Button
	for _, product := range products[start:end] {
		buttons = append(buttons, row(Button{
			Label:  truncate(product.Title, 30),
			Action: productAction(product.ID),
		}))
	}

	var pagination []Button
	if page > 0 {
		pagination = append(pagination, Button{Label: "⬅️ Пред.", Action: productsPageAction(productType, page-1)})
	}
	if end < len(products) {
		pagination = append(pagination, Button{Label: "След. ➡️", Action: productsPageAction(productType, page+1)})
	}
	if len(pagination) > 0 {
		buttons = append(buttons, pagination)
	}
	buttons = append(buttons, row(Button{Label: "⬅️ К типам продуктов", Action: actionSelectProduct}))

	text := fmt.Sprintf("📦 %s (%d-%d из %d)\n\nВыберите продукт:", productType, start+1, end, len(products))
	return View{Text: text, Buttons: buttons}
}

func (r *Router) showProductsByAuthor(ctx context.Context, vendorID int) View {
	products := r.catalog.ListProductsByVendor(ctx, vendorID)
	if len(products) == 0 {
		return View{
			Text:    "У этого автора пока нет доступных книг.",
			Buttons: [][]Button{row(Button{Label: "⬅️ К авторам", Action: actionSelectAuthor})},
		}
	}

	var buttons [][]Button
	for _, product := range products {
		buttons = append(buttons, row(Button{
			Label:  truncate(product.Title, 30),
			Action: productAction(product.ID),
		}))
	}
	buttons = append(buttons, row(Button{Label: "⬅️ К авторам", Action: actionSelectAuthor}))
	return View{Text: "Выберите книгу:", Buttons: buttons}
}

func (r *Router) showProductDetails(ctx context.Context, productID int) View {
	product, ok := r.catalog.ProductByID(ctx, productID)
	if !ok {
		return r.domainError("Книга не найдена.", actionSelectAuthor, "⬅️ К авторам")
	}

	authorName := "Неизвестный автор"
	if vendor, ok := r.catalog.VendorByID(ctx, product.VendorID); ok && vendor.Name != "" {
		authorName = vendor.Name
	}

	var promo string
	if product.BundleEligible() {
		promo = "\n🎉 Участвует в акции «3 за 2»!"
	}
	description := product.Description
	if description == "" {
		description = "Описание отсутствует"
	}
	text := fmt.Sprintf("📚 %s\n\n👤 Автор: %s\n💰 Цена: %d руб.%s\n\n📝 %s",
		product.Title, authorName, product.Price, promo, description)

	buttons := [][]Button{
		row(Button{Label: "🛒 Добавить в корзину", Action: addAction(product.ID)}),
	}
	if product.Discount > 0 {
		buttons = append(buttons, row(Button{
			Label:  fmt.Sprintf("В корзину со скидкой %d руб.", product.Discount),
			Action: addDiscountAction(product.ID),
		}))
	}
	if product.LotteryEligible {
		buttons = append(buttons, row(Button{
			Label:  "🎟 Разыграть в лотерею",
			Action: addLotteryAction(product.ID),
		}))
	}
	buttons = append(buttons, row(Button{Label: "⬅️ К книгам автора", Action: authorAction(product.VendorID)}))

	return View{Text: text, Buttons: buttons, ImageURL: product.PhotoURL}
}

func (r *Router) addToCart(ctx context.Context, sessionID string, productID int, withDiscount bool) View {
	item, err := r.checkout.AddToCart(ctx, sessionID, productID, withDiscount)
	if err != nil {
		return r.errorView(ctx, err, actionSelectAuthor, "⬅️ К авторам")
	}

	text := fmt.Sprintf("✅ «%s» добавлена в корзину!", item.Product.Title)
	if item.DiscountApplied > 0 {
		text = fmt.Sprintf("✅ «%s» добавлена в корзину со скидкой %d руб.!", item.Product.Title, item.DiscountApplied)
	}
	return View{
		Text: text + "\n\nЧто делаем дальше?",
		Buttons: [][]Button{
			row(Button{Label: "🛒 Корзина", Action: actionViewCart}),
			row(Button{Label: "➕ Добавить еще", Action: actionSelectAuthor}),
			row(Button{Label: "🏠 Главное меню", Action: actionMain}),
		},
	}
}

func (r *Router) addLottery(ctx context.Context, sessionID string, productID int) View {
	item, err := r.checkout.AddLotteryToCart(ctx, sessionID, productID)
	if err != nil {
		return r.errorView(ctx, err, actionSelectAuthor, "⬅️ К авторам")
	}
	return View{
		Text: fmt.Sprintf("🎟 «%s» добавлена как лотерейный билет за %d руб.!\n\nЧто делаем дальше?",
			item.Product.Title, item.EffectivePrice),
		Buttons: [][]Button{
			row(Button{Label: "🛒 Корзина", Action: actionViewCart}),
			row(Button{Label: "➕ Добавить еще", Action: actionSelectAuthor}),
			row(Button{Label: "🏠 Главное меню", Action: actionMain}),
		},
	}
}

func (r *Router) showCart(ctx context.Context, sessionID string) View {
	cartState, quote := r.checkout.CartQuote(ctx, sessionID)
	if cartState.Empty() {
		return View{
			Text:    "🛒 Ваша корзина пуста",
			Buttons: [][]Button{row(Button{Label: "➕ Добавить книги", Action: actionSelectAuthor})},
		}
	}

	paid := r.checkout.PaymentState(ctx, sessionID)

	var originalTotal int
	lines := []string{"🛒 Ваша корзина:", ""}
	for i, item := range cartState.Items {
		originalTotal += item.EffectivePrice
		line := fmt.Sprintf("%d. %s - %d руб.", i+1, item.Product.Title, item.EffectivePrice)
		switch {
		case item.IsLottery:
			line += " (лотерея)"
		case item.DiscountApplied > 0:
			line += fmt.Sprintf(" (скидка %d руб.)", item.DiscountApplied)
		case quote.IsFree(i):
			line = fmt.Sprintf("%d. %s - %d руб. → БЕСПЛАТНО (%s)", i+1, item.Product.Title, item.EffectivePrice, pricing.FreeReason)
		}
		lines = append(lines, line)
	}

	if savings := originalTotal - quote.Total; savings > 0 {
		lines = append(lines, "",
			fmt.Sprintf("💰 Без акции: %d руб.", originalTotal),
			fmt.Sprintf("🎉 Экономия по акции «3 за 2»: %d руб.", savings),
			fmt.Sprintf("💵 Итого к оплате: %d руб.", quote.Total))
	} else {
		lines = append(lines, "", fmt.Sprintf("💰 Общая сумма: %d руб.", quote.Total))
	}

	var buttons [][]Button
	for _, vendorID := range cartState.VendorIDs() {
		if paid[vendorID] {
			continue
		}
		name := fmt.Sprintf("Автор #%d", vendorID)
		if vendor, ok := r.catalog.VendorByID(ctx, vendorID); ok && vendor.Name != "" {
			name = vendor.Name
		}
		buttons = append(buttons, row(
			Button{Label: "💳 Безнал — " + name, Action: vendorPayAction(vendorID, string(catalog.PaymentCashless))},
			Button{Label: "💵 Наличные — " + name, Action: vendorPayAction(vendorID, string(catalog.PaymentCash))},
		))
	}
	for _, vendorID := range cartState.VendorIDs() {
		if paid[vendorID] {
			if vendor, ok := r.catalog.VendorByID(ctx, vendorID); ok {
				lines = append(lines, fmt.Sprintf("✅ %s — оплачено", vendor.Name))
			}
		}
	}
	buttons = append(buttons,
		row(Button{Label: "🗑 Очистить корзину", Action: actionClearCart}),
		row(Button{Label: "➕ Добавить еще", Action: actionSelectAuthor}),
	)

	return View{Text: strings.Join(lines, "\n"), Buttons: buttons}
}

func (r *Router) clearCart(ctx context.Context, sessionID string) View {
	r.checkout.ClearCart(ctx, sessionID)
	return View{
		Text: "🗑 Корзина очищена",
		Buttons: [][]Button{
			row(Button{Label: "➕ Добавить книги", Action: actionSelectAuthor}),
			row(Button{Label: "🏠 Главное меню", Action: actionMain}),
		},
	}
}

func (r *Router) startVendorCheckout(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) View {
	instructions, err := r.checkout.StartVendorCheckout(ctx, sessionID, vendorID, method)
	if err != nil {
		return r.errorView(ctx, err, actionViewCart, "⬅️ Назад к корзине")
	}

	header := "💵 Оплата наличными"
	if method == catalog.PaymentCashless {
		header = "💳 Безналичная оплата"
	}
	lines := []string{header, "",
		fmt.Sprintf("👤 Автор: %s", instructions.VendorName),
		fmt.Sprintf("💰 Сумма: %d руб.", instructions.Subtotal),
		"",
	}
	for i, item := range instructions.Items {
		line := fmt.Sprintf("%d. %s - %d руб.", i+1, item.Product.Title, item.EffectivePrice)
		switch {
		case instructions.Quote.IsFree(i):
			line += fmt.Sprintf(" → БЕСПЛАТНО (%s)", pricing.FreeReason)
		case item.DiscountApplied > 0:
			line += fmt.Sprintf(" (скидка %d руб.)", item.DiscountApplied)
		}
		lines = append(lines, line)
	}

	view := View{
		Buttons: [][]Button{
			row(Button{Label: "✅ Подтвердить оплату", Action: vendorConfirmAction(vendorID, string(method))}),
			row(Button{Label: "⬅️ Назад к корзине", Action: actionViewCart}),
		},
	}

	switch instructions.Kind {
	case checkout.InstructionCash:
		lines = append(lines, "", "💵 Примите оплату наличными")
	case checkout.InstructionQR:
		lines = append(lines, "", "📱 Отсканируйте QR-код для оплаты")
		view.ImageURL = instructions.QRCodeURL
	case checkout.InstructionContact:
		lines = append(lines, "", "📞 Контакт для оплаты: "+instructions.Contact)
	case checkout.InstructionNone:
		lines = append(lines, "", "❌ Нет информации для оплаты")
	}

	view.Text = strings.Join(lines, "\n")
	return view
}

func (r *Router) confirmVendorPayment(ctx context.Context, sessionID string, vendorID int, method catalog.PaymentMethod) View {
	summary, err := r.checkout.ConfirmVendorPayment(ctx, sessionID, vendorID, method)
	if err != nil {
		return r.errorView(ctx, err, actionViewCart, "⬅️ Назад к корзине")
	}
	return r.summaryView(summary)
}

func (r *Router) confirmWholeCart(ctx context.Context, sessionID string, method catalog.PaymentMethod) View {
	summary, err := r.checkout.ConfirmWholeCartPayment(ctx, sessionID, method)
	if err != nil {
		return r.errorView(ctx, err, actionViewCart, "⬅️ Назад к корзине")
	}
	return r.summaryView(summary)
}

func (r *Router) summaryView(summary *checkout.Summary) View {
	methodText := "наличными"
	methodEmoji := "💵"
	if summary.Method == catalog.PaymentCashless {
		methodText = "безналичная"
		methodEmoji = "💳"
	}

	var text string
	if summary.FailureCount == 0 {
		text = fmt.Sprintf("✅ Оплата успешно завершена!\n\n%s Оплата %s: %d руб.\n📝 Записано транзакций: %d",
			methodEmoji, methodText, summary.Total, summary.SuccessCount)
	} else {
		text = fmt.Sprintf("⚠️ Оплата завершена с ошибками!\n\n%s Оплата %s: %d руб.\n✅ Успешно: %d\n❌ Ошибок: %d\n\nСверьте журнал транзакций вручную.",
			methodEmoji, methodText, summary.Total, summary.SuccessCount, summary.FailureCount)
	}

	if summary.CartCleared {
		return View{
			Text: text,
			Buttons: [][]Button{
				row(Button{Label: "➕ Новая продажа", Action: actionSelectAuthor}),
				row(Button{Label: "🏠 Главное меню", Action: actionMain}),
			},
		}
	}
	return View{
		Text: text + "\n\nОстались неоплаченные авторы.",
		Buttons: [][]Button{
			row(Button{Label: "🛒 К корзине", Action: actionViewCart}),
			row(Button{Label: "🏠 Главное меню", Action: actionMain}),
		},
	}
}

func (r *Router) showTotalsMenu() View {
	today := r.now()
	format := func(t time.Time) string { return t.Format("2006-01-02") }
	return View{
		Text: "📊 Итоги продаж\n\nВыберите период для просмотра:",
		Buttons: [][]Button{
			row(Button{Label: "📅 Сегодня", Action: totalsDateAction(format(today))}),
			row(Button{Label: "📅 Вчера", Action: totalsDateAction(format(today.AddDate(0, 0, -1)))}),
			row(Button{Label: "📅 За неделю", Action: totalsDateAction(format(today.AddDate(0, 0, -7)))}),
			row(Button{Label: "📅 За месяц", Action: totalsDateAction(format(today.AddDate(0, 0, -30)))}),
			row(Button{Label: "📅 Все время", Action: totalsDateAction(dateAll)}),
			row(Button{Label: "⬅️ Назад", Action: actionMain}),
		},
	}
}

func (r *Router) showSalesSummary(ctx context.Context, date string) View {
	since, periodText, ok := parsePeriod(date)
	if !ok {
		return r.unknownAction(ctx, prefixTotalsDate+date)
	}

	summaries := r.reporting.SalesSummaryByVendor(ctx, since)
	if len(summaries) == 0 {
		return View{
			Text:    "📊 Нет данных о продажах за выбранный период.",
			Buttons: [][]Button{row(Button{Label: "⬅️ К выбору периода", Action: actionViewTotals})},
		}
	}

	var totalCash, totalCashless int
	var buttons [][]Button
	for _, summary := range summaries {
		totalCash += summary.Cash
		totalCashless += summary.Cashless

		var amounts string
		switch {
		case summary.Cash > 0 && summary.Cashless > 0:
			amounts = fmt.Sprintf("%d₽ (💵%d + 💳%d)", summary.Total, summary.Cash, summary.Cashless)
		case summary.Cash > 0:
			amounts = fmt.Sprintf("%d₽ (💵 наличные)", summary.Total)
		case summary.Cashless > 0:
			amounts = fmt.Sprintf("%d₽ (💳 безнал)", summary.Total)
		default:
			amounts = "0₽"
		}
		buttons = append(buttons, row(Button{
			Label:  truncate(fmt.Sprintf("%s: %s", summary.VendorName, amounts), 45),
			Action: vendorDetailsAction(summary.VendorID, date),
		}))
	}
	buttons = append(buttons, row(Button{Label: "⬅️ К выбору периода", Action: actionViewTotals}))

	lines := []string{fmt.Sprintf("📊 Итоги продаж %s", periodText), "", "📈 ОБЩИЙ ИТОГ:"}
	if totalCash > 0 {
		lines = append(lines, fmt.Sprintf("💵 Наличные: %d руб.", totalCash))
	}
	if totalCashless > 0 {
		lines = append(lines, fmt.Sprintf("💳 Безнал: %d руб.", totalCashless))
	}
	lines = append(lines, fmt.Sprintf("💰 Всего: %d руб.", totalCash+totalCashless))

	return View{Text: strings.Join(lines, "\n"), Buttons: buttons}
}

func (r *Router) showVendorDetails(ctx context.Context, vendorID int, date string) View {
	since, periodText, ok := parsePeriod(date)
	if !ok {
		return r.unknownAction(ctx, prefixVendorDetails+date)
	}

	backButton := row(Button{Label: "⬅️ Назад к итогам", Action: totalsDateAction(date)})

	vendorName := fmt.Sprintf("Автор #%d", vendorID)
	if vendor, ok := r.catalog.VendorByID(ctx, vendorID); ok && vendor.Name != "" {
		vendorName = vendor.Name
	}

	details := r.reporting.VendorTransactionDetail(ctx, vendorID, since)
	if len(details) == 0 {
		return View{
			Text:    fmt.Sprintf("📚 %s\n\nНет продаж за выбранный период.", vendorName),
			Buttons: [][]Button{backButton},
		}
	}

	var total, cash, cashless int
	for _, line := range details {
		total += line.Amount
		if line.PaymentMethod == catalog.PaymentCash {
			cash += line.Amount
		} else if line.PaymentMethod == catalog.PaymentCashless {
			cashless += line.Amount
		}
	}

	lines := []string{
		fmt.Sprintf("📚 %s", vendorName),
		fmt.Sprintf("📊 Продажи %s", periodText),
		"",
		"💰 Итого:",
	}
	if cash > 0 {
		lines = append(lines, fmt.Sprintf("💵 Наличные: %d руб.", cash))
	}
	if cashless > 0 {
		lines = append(lines, fmt.Sprintf("💳 Безнал: %d руб.", cashless))
	}
	lines = append(lines, fmt.Sprintf("Всего: %d руб.", total), "",
		fmt.Sprintf("📋 Продано товаров: %d", len(details)))

	shown := min(len(details), r.ui.DetailLimit)
	for i, line := range details[:shown] {
		emoji := "💳"
		if line.PaymentMethod == catalog.PaymentCash {
			emoji = "💵"
		}
		date := line.Timestamp
		if len(date) >= 10 {
			if parsed, err := time.Parse("2006-01-02", date[:10]); err == nil {
				date = parsed.Format("02.01")
			}
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s %d₽ (%s)", i+1, line.ProductTitle, emoji, line.Amount, date))
	}
	if len(details) > shown {
		lines = append(lines, fmt.Sprintf("... и еще %d транзакций", len(details)-shown))
	}

	return View{Text: strings.Join(lines, "\n"), Buttons: [][]Button{backButton}}
}

func (r *Router) refresh(ctx context.Context) View {
	r.catalog.InvalidateCaches()
	if r.log != nil {
		r.log.Info(ctx, "caches invalidated by operator")
	}
	return View{
		Text:    "🔄 Кэш очищен! Данные будут обновлены при следующем обращении к таблице.",
		Buttons: [][]Button{row(Button{Label: "🏠 Главное меню", Action: actionMain})},
	}
}

func (r *Router) unknownAction(ctx context.Context, action string) View {
	if r.log != nil {
		r.log.Warn(ctx, "unknown action token: "+action)
	}
	return View{
		Text:    "❌ Неизвестное действие.",
		Buttons: [][]Button{row(Button{Label: "🏠 Главное меню", Action: actionMain})},
	}
}

// errorView renders a domain failure as a short status with a way back.
func (r *Router) errorView(ctx context.Context, err error, backAction, backLabel string) View {
	if r.log != nil {
		r.log.Warn(ctx, "operation failed: "+err.Error())
	}
	text := "❌ Ошибка при выполнении операции."
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeNotFound:
			text = "❌ Не найдено в каталоге."
		case pkgerrors.CodeValidation:
			text = "❌ Действие сейчас недоступно."
		case pkgerrors.CodeStateConflict:
			text = "✅ Уже оплачено."
		}
	}
	return View{
		Text:    text,
		Buttons: [][]Button{row(Button{Label: backLabel, Action: backAction})},
	}
}

func (r *Router) domainError(text, backAction, backLabel string) View {
	return View{
		Text:    text,
		Buttons: [][]Button{row(Button{Label: backLabel, Action: backAction})},
	}
}

func parsePeriod(date string) (since *time.Time, periodText string, ok bool) {
	if date == dateAll {
		return nil, "за все время", true
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, "", false
	}
	return &parsed, "с " + parsed.Format("02.01.2006"), true
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
