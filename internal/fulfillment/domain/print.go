package domain

import (
	"strconv"
	"strings"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/partner"
)

// DefaultTotalPages is the page count sent when the interior carries none.
const DefaultTotalPages = 35

// Cloudprinter shipping levels.
const (
	ShippingLevelSaver  = "cp_saver"
	ShippingLevelGround = "cp_ground"
)

var countryCodes = map[string]string{
	"india":          "IN",
	"united states":  "US",
	"united kingdom": "GB",
}

// CountryCode maps a country name to its ISO code. Unknown values pass through.
func CountryCode(country string) string {
	if code, ok := countryCodes[strings.ToLower(strings.TrimSpace(country))]; ok {
		return code
	}
	return strings.TrimSpace(country)
}

// ShippingLevel picks the Cloudprinter shipping level for a country code.
func ShippingLevel(countryCode string) string {
	if countryCode == "IN" {
		return ShippingLevelSaver
	}
	return ShippingLevelGround
}

// Product returns the item reference and product code for a book. Unknown
// styles print as hardcover.
func Product(bookStyle, bookID string) (reference, product string) {
	paperback := strings.EqualFold(strings.TrimSpace(bookStyle), "paperback")
	wide := strings.EqualFold(strings.TrimSpace(bookID), "wigu")

	switch {
	case wide && paperback:
		return "Paperback", "photobook_pb_270x200_mm_l_fc"
	case wide:
		return "Hardcover", "photobook_cw_270x200_mm_l_fc"
	case paperback:
		return "Paperback", "photobook_pb_s210_s_fc"
	default:
		return "Hardcover", "photobook_cw_s210_s_fc"
	}
}

// Artifact is a printable file in artifact storage.
type Artifact struct {
	Key    string
	URL    string
	MD5Sum string
}

// Artifacts are the approved files of a job.
type Artifacts struct {
	Cover      Artifact
	Interior   Artifact
	TotalPages int
}

// BuildPrintOrder maps an order and its approved artifacts onto a Cloudprinter
// order. contactEmail is the account address Cloudprinter notifies.
func BuildPrintOrder(order *ordersDomain.Order, files Artifacts, contactEmail string) partner.PrintOrder {
	addr := order.ShippingAddress
	country := CountryCode(addr.Country)
	reference, product := Product(order.BookStyle, order.BookID)

	firstName, lastName := addr.FirstName, addr.LastName
	if firstName == "" && lastName == "" {
		firstName, lastName = SplitName(order.CustomerName)
	}

	phone := addr.Phone
	if country != "IN" || phone == "" {
		phone = fallbackString(order.Phone, phone)
	}

	pages := files.TotalPages
	if pages <= 0 {
		pages = DefaultTotalPages
	}

	return partner.PrintOrder{
		Reference: order.OrderID,
		Email:     contactEmail,
		Addresses: []partner.PrintAddress{{
			Type:      "delivery",
			FirstName: firstName,
			LastName:  lastName,
			Street1:   addr.Address1,
			Street2:   addr.Address2,
			Zip:       addr.Zip,
			City:      addr.City,
			State:     addr.Province,
			Country:   country,
			Email:     order.Email,
			Phone:     phone,
		}},
		Items: []partner.PrintItem{{
			Reference:     reference,
			Product:       product,
			ShippingLevel: ShippingLevel(country),
			Title:         order.OrderID + "_" + fallbackString(order.ChildName, "Book"),
			Count:         1,
			Files: []partner.PrintFile{
				{Type: "cover", URL: files.Cover.URL, MD5Sum: files.Cover.MD5Sum},
				{Type: "book", URL: files.Interior.URL, MD5Sum: files.Interior.MD5Sum},
			},
			Options: []partner.PrintOption{
				{Type: "total_pages", Count: strconv.Itoa(pages)},
			},
		}},
	}
}

// SplitName splits a full name at its last space.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func fallbackString(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
