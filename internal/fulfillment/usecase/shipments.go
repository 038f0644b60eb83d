package usecase

import (
	"context"
	"log/slog"

	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
)

// shipmentTarget is the base order, or one of its reprints, a shipment is booked for.
type shipmentTarget struct {
	order      *ordersDomain.Order
	reprintKey string
}

func (t shipmentTarget) booked() bool {
	if t.reprintKey == "" {
		return t.order.ShiprocketOrderID != "" && t.order.ShiprocketShipmentID != ""
	}
	meta := t.order.ReprintMeta[t.reprintKey]
	return meta.ShiprocketOrderID != "" && meta.ShiprocketShipmentID != ""
}

// CreateShipments books a Shiprocket shipment for each id. Ids with a reprint
// suffix book the reprint and store the identifiers in its meta.
func (f *fulfillmentUseCase) CreateShipments(
	ctx context.Context,
	orderIDs []string,
	assignAWB, requestPickup bool,
) (*fulfillmentDomain.BulkResult, error) {
	ids := fulfillmentDomain.UniqueIDs(orderIDs)
	result := &fulfillmentDomain.BulkResult{Results: []fulfillmentDomain.ItemResult{}}

	if _, err := f.shipper.Login(ctx); err != nil {
		f.logger.Error("shiprocket login failed", slog.Any("error", err))
		for _, id := range ids {
			result.Add(itemError(id, fulfillmentDomain.StepLogin, err))
		}
		return result, nil
	}

	items := make([]fulfillmentDomain.ItemResult, 0, len(ids))
	var ready []pickupItem
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, item := range items {
				result.Add(item)
			}
			return result, err
		}

		item, shipmentID := f.bookOne(ctx, id, assignAWB)
		if item.Status == fulfillmentDomain.ItemSuccess && item.AWB != "" && shipmentID != "" {
			ready = append(ready, pickupItem{shipmentID: shipmentID, index: len(items)})
		}
		items = append(items, item)
	}

	if requestPickup && len(ready) > 0 {
		f.requestPickup(ctx, items, ready)
	}

	for _, item := range items {
		result.Add(item)
	}
	f.logSummary("create_shipments", result)
	return result, nil
}

// bookOne creates the shipment for id and returns its result and the shipment id.
func (f *fulfillmentUseCase) bookOne(
	ctx context.Context,
	id string,
	assignAWB bool,
) (fulfillmentDomain.ItemResult, string) {
	target, err := f.resolve(ctx, id)
	if err != nil {
		return lookupFailure(id, err), ""
	}
	// Re-running a bulk request must not book a second shipment.
	if target.booked() {
		return itemSkipped(id, fulfillmentDomain.StepAlreadyBooked, "shipment already exists"), ""
	}

	adhoc, err := fulfillmentDomain.BuildAdhocOrder(target.order, id, f.config.PickupLocation, f.location)
	if err != nil {
		return itemError(id, fulfillmentDomain.StepCreateOrder, err), ""
	}
	created, err := f.shipper.CreateAdhocOrder(ctx, adhoc)
	if err != nil {
		f.logger.Error("failed to create shipment", slog.String("order_id", id), slog.Any("error", err))
		return itemError(id, fulfillmentDomain.StepCreateOrder, err), ""
	}

	booking := ordersDomain.ShipmentBooking{
		ShiprocketOrderID:    created.OrderID.String(),
		ShiprocketShipmentID: created.ShipmentID.String(),
		At:                   f.now(),
	}
	if err := f.saveBooking(ctx, target, booking); err != nil {
		return itemError(id, fulfillmentDomain.StepProcessing, err), ""
	}

	item := fulfillmentDomain.ItemResult{
		ID:        id,
		Status:    fulfillmentDomain.ItemSuccess,
		Step:      fulfillmentDomain.StepCompleted,
		Reference: booking.ShiprocketShipmentID,
	}
	if !assignAWB {
		return item, booking.ShiprocketShipmentID
	}

	awb, err := f.shipper.AssignAWB(ctx, booking.ShiprocketShipmentID)
	if err != nil {
		f.logger.Error("failed to assign awb", slog.String("order_id", id), slog.Any("error", err))
		// The shipment exists; keep its id so the AWB can be assigned later.
		failed := itemError(id, fulfillmentDomain.StepAssignAWB, err)
		failed.Reference = booking.ShiprocketShipmentID
		return failed, booking.ShiprocketShipmentID
	}
	booking.TrackingNumber = awb.AWBCode
	booking.CourierPartner = awb.CourierName
	booking.At = f.now()
	if err := f.saveBooking(ctx, target, booking); err != nil {
		return itemError(id, fulfillmentDomain.StepProcessing, err), booking.ShiprocketShipmentID
	}

	item.AWB = awb.AWBCode
	return item, booking.ShiprocketShipmentID
}

// resolve finds the order for an order id or a reprint id.
func (f *fulfillmentUseCase) resolve(ctx context.Context, id string) (shipmentTarget, error) {
	base, key, isReprint := ordersDomain.SplitReprintID(id)
	if !isReprint {
		order, err := f.orderRepo.GetByOrderID(ctx, id)
		return shipmentTarget{order: order}, err
	}

	order, err := f.orderRepo.GetByOrderID(ctx, base)
	if err != nil {
		return shipmentTarget{}, err
	}
	if _, ok := order.ReprintMeta[key]; !ok {
		return shipmentTarget{}, ordersDomain.ErrOrderNotFound
	}
	return shipmentTarget{order: order, reprintKey: key}, nil
}

// saveBooking stores the identifiers on the base order, or on the reprint meta
// under a row lock.
func (f *fulfillmentUseCase) saveBooking(
	ctx context.Context,
	target shipmentTarget,
	booking ordersDomain.ShipmentBooking,
) error {
	if target.reprintKey == "" {
		return f.orderRepo.SaveShipmentBooking(ctx, target.order.ID, booking)
	}

	return f.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := f.orderRepo.GetByOrderIDForUpdate(ctx, target.order.OrderID)
		if err != nil {
			return err
		}
		meta, ok := order.ReprintMeta[target.reprintKey]
		if !ok {
			return ordersDomain.ErrOrderNotFound
		}

		meta.ShiprocketOrderID = booking.ShiprocketOrderID
		meta.ShiprocketShipmentID = booking.ShiprocketShipmentID
		// The first save carries no AWB and must not clear a stored one.
		if booking.TrackingNumber != "" {
			meta.TrackingNumber = booking.TrackingNumber
			meta.CourierPartner = booking.CourierPartner
		}
		if meta.ShipmentCreatedAt == nil {
			at := booking.At
			meta.ShipmentCreatedAt = &at
		}
		order.ReprintMeta[target.reprintKey] = meta
		order.UpdatedAt = booking.At
		return f.orderRepo.Update(ctx, order)
	})
}

// pickupItem links a shipment with an AWB to its position in the results.
type pickupItem struct {
	shipmentID string
	index      int
}

// requestPickup schedules one pickup for every shipment with an AWB. A failure
// marks those items as errors.
func (f *fulfillmentUseCase) requestPickup(
	ctx context.Context,
	items []fulfillmentDomain.ItemResult,
	ready []pickupItem,
) {
	shipmentIDs := make([]string, len(ready))
	for i, p := range ready {
		shipmentIDs[i] = p.shipmentID
	}

	pickup, err := f.shipper.GeneratePickup(ctx, shipmentIDs)
	if err != nil {
		f.logger.Error("failed to generate pickup", slog.Int("shipments", len(shipmentIDs)), slog.Any("error", err))
		for _, p := range ready {
			failed := itemError(items[p.index].ID, fulfillmentDomain.StepPickup, err)
			failed.Reference = items[p.index].Reference
			failed.AWB = items[p.index].AWB
			items[p.index] = failed
		}
		return
	}

	f.logger.Info("pickup requested",
		slog.Int("shipments", len(shipmentIDs)),
		slog.String("scheduled", pickup.ScheduledDate),
		slog.String("token", pickup.TokenNumber),
	)
	for _, p := range ready {
		items[p.index].Step = fulfillmentDomain.StepPickup
	}
}
