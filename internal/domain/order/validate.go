package order

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validate checks the fields a Speedy order must carry.
func (o *SpeedyOrder) Validate() error {
	if o.CustomerID <= 0 {
		return invalid("CustomerId", "must be greater than 0")
	}
	if len(o.LineItems) == 0 {
		return invalid("LineItems", "at least one line item is required")
	}
	for i, item := range o.LineItems {
		if item.ProductID <= 0 {
			return invalid(itemField("LineItems", i, "ProductId"), "must be greater than 0")
		}
		if err := validateLine("LineItems", i, "Qty", item.Qty, item.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields a Vault order must carry.
func (o *VaultOrder) Validate() error {
	if strings.TrimSpace(o.CustomerEmail) == "" {
		return invalid("CustomerEmail", "is required")
	}
	if len(o.Items) == 0 {
		return invalid("Items", "at least one item is required")
	}
	for i, item := range o.Items {
		if err := uuid.Validate(item.ProductCode); err != nil {
			return invalidf(itemField("Items", i, "ProductCode"), "%q is not a valid product code", item.ProductCode)
		}
		if err := validateLine("Items", i, "Quantity", item.Quantity, item.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields a directly submitted canonical order must carry.
// SupplierId is checked before anything else.
func (o *Order) Validate() error {
	if o.SupplierID <= 0 {
		return invalid("SupplierId", "must be greater than 0")
	}
	if len(o.Items) == 0 {
		return invalid("Items", "at least one item is required")
	}
	for i, item := range o.Items {
		if item.ProductID <= 0 {
			return invalid(itemField("Items", i, "ProductId"), "must be greater than 0")
		}
		if err := validateLine("Items", i, "Quantity", item.Quantity, item.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(list string, idx int, qtyName string, qty int, price decimal.Decimal) error {
	if qty <= 0 {
		return invalid(itemField(list, idx, qtyName), "must be greater than 0")
	}
	if price.IsNegative() {
		return invalid(itemField(list, idx, "UnitPrice"), "must not be negative")
	}
	return nil
}

// itemField names a field of the idx-th element of list, e.g. Items[2].Quantity.
func itemField(list string, idx int, name string) string {
	return fmt.Sprintf("%s[%d].%s", list, idx, name)
}
