package cart

import "github.com/bookfairhq/pos-backend/internal/catalog"

// Item is a snapshot of a product at the moment it entered the cart.
// EffectivePrice carries any manual discount or lottery override baked in at
// add time; everything later is derived, never stored back.
type Item struct {
	Product         catalog.Product
	EffectivePrice  int
	DiscountApplied int
	IsLottery       bool
}

// BundleEligible reports whether the item enters 3-for-2 grouping. Lottery
// items never do, whatever their source product says.
func (i Item) BundleEligible() bool {
	return !i.IsLottery && i.Product.BundleEligible()
}

// Cart is the ordered item sequence owned by one session.
type Cart struct {
	Items []Item
}

// Add appends an item snapshot.
func (c *Cart) Add(item Item) {
	c.Items = append(c.Items, item)
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// VendorIDs returns the distinct vendors represented in the cart, in
// first-seen order.
func (c *Cart) VendorIDs() []int {
	seen := make(map[int]struct{}, len(c.Items))
	var ids []int
	for _, item := range c.Items {
		id := item.Product.VendorID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ItemsForVendor returns the vendor's items in cart order.
func (c *Cart) ItemsForVendor(vendorID int) []Item {
	var items []Item
	for _, item := range c.Items {
		if item.Product.VendorID == vendorID {
			items = append(items, item)
		}
	}
	return items
}

// PaymentState maps vendor ID to a paid flag. It only ever holds keys for
// vendors currently represented in the cart.
type PaymentState map[int]bool

// AllPaid reports whether every listed vendor is marked paid.
func (p PaymentState) AllPaid(vendorIDs []int) bool {
	if len(vendorIDs) == 0 {
		return false
	}
	for _, id := range vendorIDs {
		if !p[id] {
			return false
		}
	}
	return true
}

// State is one session's cart and payment progress. It lives only for the
// duration of the session.
type State struct {
	Cart Cart
	Paid PaymentState
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{Paid: make(PaymentState)}
}

// Reset clears cart and payment state together, both or neither.
func (s *State) Reset() {
	s.Cart = Cart{}
	s.Paid = make(PaymentState)
}
