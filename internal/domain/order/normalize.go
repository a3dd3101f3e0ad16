package order

import "time"

// FromSpeedy maps a validated Speedy order to a canonical order. Product ids
// are copied as-is; Speedy orders need no product lookups.
func FromSpeedy(src *SpeedyOrder) *Order {
	customerID := src.CustomerID

	items := make([]LineItem, len(src.LineItems))
	for i, item := range src.LineItems {
		items[i] = LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Qty,
			UnitPrice: item.UnitPrice,
		}
	}

	return &Order{
		CustomerID:      &customerID,
		SupplierID:      SupplierSpeedy,
		OrderDate:       src.OrderTimestamp.UTC(),
		DeliveryAddress: src.ShipTo.Normalize(),
		BillingAddress:  src.BillTo.Normalize(),
		Status:          StatusReceived,
		Items:           items,
	}
}

// FromVault maps a validated Vault order to a canonical order. The customer
// id and line items must already be resolved by the caller; items are used
// unchanged.
func FromVault(src *VaultOrder, customerID int64, items []LineItem) *Order {
	email := src.CustomerEmail

	return &Order{
		CustomerID:      &customerID,
		SupplierID:      SupplierVault,
		OrderDate:       time.Unix(src.PlacedAt, 0).UTC(),
		CustomerEmail:   &email,
		DeliveryAddress: src.DeliveryDetails.location().Normalize(),
		BillingAddress:  src.BillingDetails.location().Normalize(),
		Status:          StatusReceived,
		Items:           items,
	}
}

// FromCanonical copies a validated canonical order for submission. Any
// client-supplied id is dropped and the status is reset to received.
func FromCanonical(src *Order) *Order {
	var customerID *int64
	if src.CustomerID != nil {
		v := *src.CustomerID
		customerID = &v
	}

	items := make([]LineItem, len(src.Items))
	copy(items, src.Items)

	return &Order{
		CustomerID:      customerID,
		SupplierID:      src.SupplierID,
		OrderDate:       src.OrderDate.UTC(),
		CustomerEmail:   cloneString(src.CustomerEmail),
		DeliveryAddress: src.DeliveryAddress.clone(),
		BillingAddress:  src.BillingAddress.clone(),
		Status:          StatusReceived,
		Items:           items,
	}
}
