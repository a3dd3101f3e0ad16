package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier identifiers fixed per inbound format.
const (
	SupplierSpeedy int64 = 1
	SupplierVault  int64 = 2
)

// Status is the lifecycle state of a canonical order.
type Status string

const (
	StatusReceived   Status = "received"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Order is the canonical, submission-ready order accepted by the downstream
// order API. ID is assigned by the downstream API and is zero until then.
type Order struct {
	ID              int64
	CustomerID      *int64
	SupplierID      int64
	OrderDate       time.Time
	CustomerEmail   *string
	BillingAddress  *Address
	DeliveryAddress *Address
	Status          Status
	Items           []LineItem
}

// LineItem is a canonical order line. ProductID is always an internal id,
// never an external product code.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Address is a normalized postal address. Every field is optional.
type Address struct {
	Street     *string
	City       *string
	County     *string
	PostalCode *string
	Country    *string
}
