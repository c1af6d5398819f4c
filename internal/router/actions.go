package router

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionMain opens the main menu. Transports send it when a session has no
// pending action of its own.
const ActionMain = actionMain

// Action tokens are compact opaque strings: an action name plus arguments
// joined by underscores. They must round-trip through the transport's
// callback payloads unchanged.
const (
	actionMain          = "main"
	actionSelectAuthor  = "select_author"
	actionSelectProduct = "select_product"
	actionViewCart      = "view_cart"
	actionClearCart     = "clear_cart"
	actionViewTotals    = "view_totals"
	actionRefresh       = "refresh"

	prefixProductType   = "product_type_"
	prefixProductsPage  = "products_page_"
	prefixAuthor        = "author_"
	prefixProduct       = "product_"
	prefixAddDiscount   = "add_to_cart_discount_"
	prefixAdd           = "add_to_cart_"
	prefixAddLottery    = "add_lottery_"
	prefixVendorPay     = "vendor_pay_"
	prefixVendorConfirm = "vendor_confirm_"
	prefixConfirm       = "confirm_"
	prefixTotalsDate    = "totals_date_"
	prefixVendorDetails = "vendor_details_"
)

const dateAll = "all"

func authorAction(vendorID int) string {
	return prefixAuthor + strconv.Itoa(vendorID)
}

func productAction(productID int) string {
	return prefixProduct + strconv.Itoa(productID)
}

func addAction(productID int) string {
	return prefixAdd + strconv.Itoa(productID)
}

func addDiscountAction(productID int) string {
	return prefixAddDiscount + strconv.Itoa(productID)
}

func addLotteryAction(productID int) string {
	return prefixAddLottery + strconv.Itoa(productID)
}

func productTypeAction(productType string) string {
	return prefixProductType + productType
}

func productsPageAction(productType string, page int) string {
	return fmt.Sprintf("%s%s_%d", prefixProductsPage, productType, page)
}

func vendorPayAction(vendorID int, method string) string {
	return fmt.Sprintf("%s%d_%s", prefixVendorPay, vendorID, method)
}

func vendorConfirmAction(vendorID int, method string) string {
	return fmt.Sprintf("%s%d_%s", prefixVendorConfirm, vendorID, method)
}

func totalsDateAction(date string) string {
	return prefixTotalsDate + date
}

func vendorDetailsAction(vendorID int, date string) string {
	return fmt.Sprintf("%s%d_%s", prefixVendorDetails, vendorID, date)
}

// splitPage pops the trailing page number off a products_page argument; the
// product type itself may contain the delimiter.
func splitPage(arg string) (productType string, page int, ok bool) {
	idx := strings.LastIndex(arg, "_")
	if idx < 0 {
		return "", 0, false
	}
	page, err := strconv.Atoi(arg[idx+1:])
	if err != nil || page < 0 {
		return "", 0, false
	}
	return arg[:idx], page, true
}

// splitIDSuffix parses "<id>_<suffix>" arguments.
func splitIDSuffix(arg string) (id int, suffix string, ok bool) {
	idx := strings.Index(arg, "_")
	if idx < 0 {
		return 0, "", false
	}
	id, err := strconv.Atoi(arg[:idx])
	if err != nil {
		return 0, "", false
	}
	return id, arg[idx+1:], true
}
