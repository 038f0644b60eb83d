package domain

import (
	"strings"
	"time"
)

// EditableFields are the order fields an operator may patch.
var EditableFields = []string{
	"email", "phone", "customer_name", "child_name", "shipping_address", "book_style", "discount_code", "locale",
}

// IsEditableField reports whether name may be patched.
func IsEditableField(name string) bool {
	for _, f := range EditableFields {
		if f == name {
			return true
		}
	}
	return false
}

// Patch carries operator edits. Nil fields are left unchanged.
type Patch struct {
	Email           *string
	Phone           *string
	CustomerName    *string
	ChildName       *string
	BookStyle       *string
	DiscountCode    *string
	Locale          *string
	ShippingAddress *Address
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Email == nil && p.Phone == nil && p.CustomerName == nil && p.ChildName == nil &&
		p.BookStyle == nil && p.DiscountCode == nil && p.Locale == nil && p.ShippingAddress == nil
}

// Apply writes the patch onto o.
func (p Patch) Apply(o *Order) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&o.Email, p.Email)
	set(&o.Phone, p.Phone)
	set(&o.CustomerName, p.CustomerName)
	set(&o.ChildName, p.ChildName)
	set(&o.BookStyle, p.BookStyle)
	set(&o.DiscountCode, p.DiscountCode)
	set(&o.Locale, p.Locale)
	if p.ShippingAddress != nil {
		o.ShippingAddress = *p.ShippingAddress
	}
}

// LockResult is the outcome of a lock acquire. HeldBy names the holder when
// the lock was not acquired.
type LockResult struct {
	Acquired bool
	HeldBy   string
}

// RegisterInput is a storefront order or preview job to record.
type RegisterInput struct {
	OrderID            string
	JobID              string
	Email              string
	Phone              string
	CustomerName       string
	ChildName          string
	BookID             string
	BookStyle          string
	Locale             string
	DiscountCode       string
	TotalPrice         float64
	Currency           string
	ShippingAddress    Address
	Paid               bool
	WorkflowsTotal     int
	WorkflowsCompleted int
	CreatedAt          *time.Time
	ProcessedAt        *time.Time
}
