package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/diffrun/opsdesk/internal/errors"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/partner"
)

// ErrInvalidBookStyle indicates a book style that has no shipping SKU.
var ErrInvalidBookStyle = errors.Wrap(errors.ErrInvalidInput, "invalid book style for SKU")

// PackageWeightKg is the shipped weight of one book.
const PackageWeightKg = 0.5

const (
	orderDateLayout = "2006-01-02 15:04"
	maxPincodeLen   = 6
)

// Pickup locations registered with Shiprocket per printer.
const (
	PickupYara    = "Diffrun"
	PickupGenesis = "warehouse-1"
)

var bookTitles = map[string]string{
	"wigu":   "When %s grows up",
	"astro":  "%s's Space Adventure",
	"abcd":   "%s meets ABC",
	"dream":  "Many Dreams of %s",
	"sports": "Game On, %s!",
	"hero":   "%s, the Little Hero",
	"bloom":  "%s is Growing Up Fast",
}

// BookTitle is the customer-facing title of a personalized book.
func BookTitle(bookID, childName string) string {
	name := strings.TrimSpace(childName)
	if name == "" {
		name = "Your child"
	} else {
		name = capitalize(name)
	}
	if format, ok := bookTitles[strings.ToLower(strings.TrimSpace(bookID))]; ok {
		return fmt.Sprintf(format, name)
	}
	return name + "'s Storybook"
}

// SKU returns the shipping SKU for a book, e.g. "24_S_HC".
func SKU(bookID, bookStyle string) (string, error) {
	var prefix string
	switch strings.ToLower(strings.TrimSpace(bookID)) {
	case "wigu":
		prefix = "24_W"
	case "abcd":
		prefix = "28_S"
	default:
		prefix = "24_S"
	}

	style := strings.ToLower(strings.TrimSpace(bookStyle))
	if style == "" {
		style = "hardcover"
	}
	switch style {
	case "hardcover":
		return prefix + "_HC", nil
	case "paperback":
		return prefix + "_PB", nil
	default:
		return "", errors.Wrapf(ErrInvalidBookStyle, "book style %q", bookStyle)
	}
}

// Dimensions returns the package length, breadth and height for a book.
func Dimensions(bookID string) (length, breadth, height float64) {
	if strings.EqualFold(strings.TrimSpace(bookID), "wigu") {
		return 32, 23, 3
	}
	return 23, 23, 3
}

// PickupLocation returns the Shiprocket pickup name for the order's printer,
// falling back to def.
func PickupLocation(printer, def string) string {
	switch strings.ToLower(strings.TrimSpace(printer)) {
	case "yara":
		return PickupYara
	case "genesis":
		return PickupGenesis
	default:
		return def
	}
}

// BuildAdhocOrder maps an order onto a Shiprocket adhoc order. shipmentID is
// the identifier Shiprocket sees: the order id, or the reprint id for reprints.
func BuildAdhocOrder(
	order *ordersDomain.Order,
	shipmentID string,
	defaultPickup string,
	loc *time.Location,
) (partner.AdhocOrder, error) {
	sku, err := SKU(order.BookID, order.BookStyle)
	if err != nil {
		return partner.AdhocOrder{}, err
	}

	addr := order.ShippingAddress
	firstName, lastName := addr.FirstName, addr.LastName
	if firstName == "" && lastName == "" {
		firstName, lastName = SplitName(order.CustomerName)
	}

	orderedAt := order.CreatedAt
	if order.ProcessedAt != nil {
		orderedAt = *order.ProcessedAt
	}

	length, breadth, height := Dimensions(order.BookID)

	return partner.AdhocOrder{
		OrderID:             shipmentID,
		OrderDate:           orderedAt.In(loc).Format(orderDateLayout),
		PickupLocation:      PickupLocation(order.Printer, defaultPickup),
		BillingCustomerName: fallbackString(firstName, "Customer"),
		BillingLastName:     lastName,
		BillingAddress:      addr.Address1,
		BillingAddress2:     addr.Address2,
		BillingCity:         addr.City,
		BillingPincode:      clip(strings.TrimSpace(addr.Zip), maxPincodeLen),
		BillingState:        addr.Province,
		BillingCountry:      fallbackString(addr.Country, "India"),
		BillingEmail:        order.Email,
		BillingPhone:        fallbackString(addr.Phone, order.Phone),
		ShippingIsBilling:   true,
		OrderItems: []partner.AdhocItem{{
			Name:         BookTitle(order.BookID, order.ChildName),
			SKU:          sku,
			Units:        1,
			SellingPrice: order.TotalPrice,
		}},
		PaymentMethod: "Prepaid",
		SubTotal:      order.TotalPrice,
		Length:        length,
		Breadth:       breadth,
		Height:        height,
		Weight:        PackageWeightKg,
	}, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
