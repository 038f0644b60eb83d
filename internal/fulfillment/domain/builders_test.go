package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffrun/opsdesk/internal/errors"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func sampleOrder() *ordersDomain.Order {
	processed := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	return &ordersDomain.Order{
		OrderID:      "#1234",
		JobID:        "job-1",
		Email:        "parent@example.com",
		Phone:        "+15550100",
		CustomerName: "Asha Rao",
		ChildName:    "meera",
		BookID:       "wigu",
		BookStyle:    "paperback",
		TotalPrice:   1499,
		Printer:      "Genesis",
		ShippingAddress: ordersDomain.Address{
			Address1: "12 MG Road",
			City:     "Bengaluru",
			Province: "Karnataka",
			Zip:      "5600011",
			Country:  "India",
			Phone:    "+919800000000",
		},
		Timeline: ordersDomain.Timeline{
			CreatedAt:   processed.Add(-time.Hour),
			ProcessedAt: &processed,
		},
	}
}

func TestProduct(t *testing.T) {
	tests := []struct {
		style, book, ref, product string
	}{
		{"paperback", "wigu", "Paperback", "photobook_pb_270x200_mm_l_fc"},
		{"hardcover", "WIGU", "Hardcover", "photobook_cw_270x200_mm_l_fc"},
		{"", "wigu", "Hardcover", "photobook_cw_270x200_mm_l_fc"},
		{"Paperback", "astro", "Paperback", "photobook_pb_s210_s_fc"},
		{"spiral", "astro", "Hardcover", "photobook_cw_s210_s_fc"},
	}
	for _, tt := range tests {
		ref, product := Product(tt.style, tt.book)
		assert.Equal(t, tt.ref, ref, tt.style+"/"+tt.book)
		assert.Equal(t, tt.product, product, tt.style+"/"+tt.book)
	}
}

func TestBuildPrintOrder(t *testing.T) {
	t.Run("Success_India", func(t *testing.T) {
		order := sampleOrder()
		files := Artifacts{
			Cover:    Artifact{URL: "https://cdn/cover.pdf", MD5Sum: "c0"},
			Interior: Artifact{URL: "https://cdn/book.pdf", MD5Sum: "b0"},
		}

		po := BuildPrintOrder(order, files, "support@diffrun.com")

		assert.Equal(t, "#1234", po.Reference)
		assert.Equal(t, "support@diffrun.com", po.Email)
		require.Len(t, po.Addresses, 1)
		addr := po.Addresses[0]
		assert.Equal(t, "IN", addr.Country)
		assert.Equal(t, "Asha", addr.FirstName)
		assert.Equal(t, "Rao", addr.LastName)
		assert.Equal(t, "+919800000000", addr.Phone)

		require.Len(t, po.Items, 1)
		item := po.Items[0]
		assert.Equal(t, ShippingLevelSaver, item.ShippingLevel)
		assert.Equal(t, "#1234_meera", item.Title)
		assert.Equal(t, "Paperback", item.Reference)
		assert.Equal(t, "35", item.Options[0].Count)
		assert.Equal(t, "b0", item.Files[1].MD5Sum)
	})

	t.Run("Success_AbroadUsesOrderPhone", func(t *testing.T) {
		order := sampleOrder()
		order.ShippingAddress.Country = "United States"
		po := BuildPrintOrder(order, Artifacts{TotalPages: 40}, "ops@example.com")

		assert.Equal(t, "US", po.Addresses[0].Country)
		assert.Equal(t, "+15550100", po.Addresses[0].Phone)
		assert.Equal(t, ShippingLevelGround, po.Items[0].ShippingLevel)
		assert.Equal(t, "40", po.Items[0].Options[0].Count)
	})
}

func TestSKU(t *testing.T) {
	sku, err := SKU("wigu", "paperback")
	require.NoError(t, err)
	assert.Equal(t, "24_W_PB", sku)

	sku, err = SKU("abcd", "")
	require.NoError(t, err)
	assert.Equal(t, "28_S_HC", sku)

	_, err = SKU("astro", "spiral")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestBuildAdhocOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		order := sampleOrder()

		adhoc, err := BuildAdhocOrder(order, "#1234_RP1", "Primary", ist)
		require.NoError(t, err)

		assert.Equal(t, "#1234_RP1", adhoc.OrderID)
		assert.Equal(t, "2025-03-10 01:30", adhoc.OrderDate)
		assert.Equal(t, PickupGenesis, adhoc.PickupLocation)
		assert.Equal(t, "560001", adhoc.BillingPincode)
		assert.Equal(t, "Prepaid", adhoc.PaymentMethod)
		assert.Equal(t, 32.0, adhoc.Length)
		assert.Equal(t, PackageWeightKg, adhoc.Weight)
		require.Len(t, adhoc.OrderItems, 1)
		assert.Equal(t, "24_W_PB", adhoc.OrderItems[0].SKU)
		assert.Equal(t, "When Meera grows up", adhoc.OrderItems[0].Name)
	})

	t.Run("Success_DefaultPickupAndCreatedAt", func(t *testing.T) {
		order := sampleOrder()
		order.Printer = ""
		order.ProcessedAt = nil
		order.BookID = "astro"

		adhoc, err := BuildAdhocOrder(order, order.OrderID, "Primary", ist)
		require.NoError(t, err)
		assert.Equal(t, "Primary", adhoc.PickupLocation)
		assert.Equal(t, "2025-03-10 00:30", adhoc.OrderDate)
		assert.Equal(t, 23.0, adhoc.Length)
	})

	t.Run("Error_InvalidStyle", func(t *testing.T) {
		order := sampleOrder()
		order.BookStyle = "spiral"
		_, err := BuildAdhocOrder(order, order.OrderID, "Primary", ist)
		assert.ErrorIs(t, err, ErrInvalidBookStyle)
	})
}

func TestBulkResult_Add(t *testing.T) {
	var b BulkResult
	b.Add(ItemResult{ID: "1", Status: ItemSuccess})
	b.Add(ItemResult{ID: "2", Status: ItemError})
	b.Add(ItemResult{ID: "3", Status: ItemSkipped})
	b.Add(ItemResult{ID: "4", Status: ItemSkipped})

	assert.Equal(t, Summary{Total: 4, Success: 1, Error: 1, Skipped: 2}, b.Summary)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"#1", "#2"}, UniqueIDs([]string{" #1", "#2", "", "#1"}))
}
