package catalog

import (
	"strings"

	"github.com/bookfairhq/pos-backend/pkg/sheets"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCashless PaymentMethod = "cashless"
)

// IsValid reports whether the method is one of the known values.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCashless
}

// BundleTag marks products participating in the "3 for 2" promotion.
const BundleTag = "3for2"

// Vendor is a fair participant selling products. Payment routing is
// optional; cashless flows fall back from QR code to contact to nothing.
type Vendor struct {
	ID        int
	Name      string
	QRCodeURL string
	Contact   string
}

// Product is one catalog entry. Immutable from the core's perspective.
type Product struct {
	ID              int
	Title           string
	Description     string
	Price           int
	PhotoURL        string
	VendorID        int
	ProductType     string
	Discount        int
	PromotionTag    string
	LotteryEligible bool
}

// BundleEligible reports whether the product participates in "3 for 2".
func (p Product) BundleEligible() bool {
	return strings.EqualFold(strings.TrimSpace(p.PromotionTag), BundleTag)
}

// Transaction is one append-only ledger record.
type Transaction struct {
	ID            int
	ProductID     int
	VendorID      int
	PaymentMethod PaymentMethod
	Amount        int
	Timestamp     string
}

// Date returns the date portion of the fixed-width timestamp.
func (t Transaction) Date() string {
	if len(t.Timestamp) < 10 {
		return t.Timestamp
	}
	return t.Timestamp[:10]
}

// Row parsing happens once, here, so the default-on-missing policy is not
// scattered across call sites. Absent or malformed cells become zero values.

func vendorFromRow(row sheets.Row) Vendor {
	return Vendor{
		ID:        parseInt(row.Get("VendorID")),
		Name:      row.Get("Name"),
		QRCodeURL: row.Get("QR_Code_URL"),
		Contact:   row.Get("Contact"),
	}
}

func productFromRow(row sheets.Row) Product {
	return Product{
		ID:              parseInt(row.Get("ProductID")),
		Title:           row.Get("Title"),
		Description:     row.Get("Description"),
		Price:           parseAmount(row.Get("Price")),
		PhotoURL:        row.Get("Photo_URL"),
		VendorID:        parseInt(row.Get("VendorID")),
		ProductType:     row.Get("ProductType"),
		Discount:        parseAmount(row.Get("Discount")),
		PromotionTag:    strings.ToLower(row.Get("Promotion")),
		LotteryEligible: parseBool(row.Get("Lottery")),
	}
}

func transactionFromRow(row sheets.Row) Transaction {
	return Transaction{
		ID:            parseInt(row.Get("TransactionID")),
		ProductID:     parseInt(row.Get("ProductID")),
		VendorID:      parseInt(row.Get("VendorID")),
		PaymentMethod: PaymentMethod(strings.ToLower(row.Get("Payment_Method"))),
		Amount:        parseAmount(row.Get("Amount")),
		Timestamp:     row.Get("Timestamp"),
	}
}

func parseInt(value string) int {
	return parseAmount(value)
}

// parseAmount coerces a textual cell to whole currency units. Sheets hand
// back "450", "450.0" or "450,00" depending on locale and cell formatting.
func parseAmount(value string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0
	}
	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return int(dec.IntPart())
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1", "да":
		return true
	}
	return false
}
