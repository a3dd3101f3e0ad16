package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Format identifies the shape of an inbound order payload.
type Format string

const (
	FormatCanonical Format = "canonical"
	FormatSpeedy    Format = "speedy"
	FormatVault     Format = "vault"
)

// Payload is an inbound order in one of the supported formats. The set of
// implementations is closed: *Order, *SpeedyOrder and *VaultOrder.
type Payload interface {
	Format() Format
	payload()
}

func (*Order) Format() Format       { return FormatCanonical }
func (*SpeedyOrder) Format() Format { return FormatSpeedy }
func (*VaultOrder) Format() Format  { return FormatVault }

func (*Order) payload()       {}
func (*SpeedyOrder) payload() {}
func (*VaultOrder) payload()  {}

// SpeedyOrder is the order shape posted by the Speedy courier integration.
// Customer and product identifiers are already internal ids.
type SpeedyOrder struct {
	CustomerID     int64
	OrderTimestamp time.Time
	ShipTo         *SpeedyAddress
	BillTo         *SpeedyAddress
	LineItems      []SpeedyLineItem
}

// SpeedyAddress is Speedy's address record.
type SpeedyAddress struct {
	StreetAddress *string
	City          *string
	Region        *string
	PostCode      *string
	Country       *string
}

// SpeedyLineItem is a Speedy order line.
type SpeedyLineItem struct {
	ProductID int64
	Qty       int
	UnitPrice decimal.Decimal
}

// VaultOrder is the order shape posted by the Vault warehouse integration.
// Customers are identified by email and products by an opaque UUID code,
// both of which must be resolved before submission.
type VaultOrder struct {
	CustomerEmail   string
	PlacedAt        int64 // Unix seconds
	DeliveryDetails *VaultDeliveryDetails
	BillingDetails  *VaultBillingDetails
	Items           []VaultLineItem
}

// VaultDeliveryDetails wraps the shipping location.
type VaultDeliveryDetails struct {
	ShippingLocation *VaultLocation
}

// VaultBillingDetails wraps the billing location.
type VaultBillingDetails struct {
	BillingLocation *VaultLocation
}

// VaultLocation is Vault's address record.
type VaultLocation struct {
	AddressLine *string
	Town        *string
	Region      *string
	Zip         *string
	CountryCode *string
}

// VaultLineItem is a Vault order line.
type VaultLineItem struct {
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}
