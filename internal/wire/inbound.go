package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/order-ingest/internal/domain/order"
)

// DecodeSpeedy parses a Speedy order document. An empty or null document
// yields a nil order and no error.
func DecodeSpeedy(b []byte) (*order.SpeedyOrder, error) {
	if isEmpty(b) {
		return nil, nil
	}
	var o order.SpeedyOrder
	if err := document(b, func(d *jx.Decoder) error { return decodeSpeedy(d, &o) }); err != nil {
		return nil, errors.Wrap(err, "decode speedy order")
	}
	return &o, nil
}

func decodeSpeedy(d *jx.Decoder, o *order.SpeedyOrder) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "customerid":
			o.CustomerID, err = int64Value(d)
		case "ordertimestamp":
			o.OrderTimestamp, err = timestamp(d)
		case "shipto":
			o.ShipTo, err = speedyAddress(d)
		case "billto":
			o.BillTo, err = speedyAddress(d)
		case "lineitems":
			o.LineItems = nil
			err = array(d, func(d *jx.Decoder) error {
				var item order.SpeedyLineItem
				if err := speedyLineItem(d, &item); err != nil {
					return err
				}
				o.LineItems = append(o.LineItems, item)
				return nil
			})
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
}

func speedyAddress(d *jx.Decoder) (*order.SpeedyAddress, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	a := new(order.SpeedyAddress)
	err := object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "streetaddress":
			a.StreetAddress, err = optString(d)
		case "city":
			a.City, err = optString(d)
		case "region":
			a.Region, err = optString(d)
		case "postcode":
			a.PostCode, err = optString(d)
		case "country":
			a.Country, err = optString(d)
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
	return a, err
}

func speedyLineItem(d *jx.Decoder, item *order.SpeedyLineItem) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "productid":
			item.ProductID, err = int64Value(d)
		case "qty":
			item.Qty, err = intValue(d)
		case "unitprice":
			item.UnitPrice, err = decimalValue(d)
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
}

// DecodeVault parses a Vault order document. An empty or null document
// yields a nil order and no error.
func DecodeVault(b []byte) (*order.VaultOrder, error) {
	if isEmpty(b) {
		return nil, nil
	}
	var o order.VaultOrder
	if err := document(b, func(d *jx.Decoder) error { return decodeVault(d, &o) }); err != nil {
		return nil, errors.Wrap(err, "decode vault order")
	}
	return &o, nil
}

func decodeVault(d *jx.Decoder, o *order.VaultOrder) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "customeremail":
			o.CustomerEmail, err = str(d)
		case "placedat":
			o.PlacedAt, err = int64Value(d)
		case "deliverydetails":
			if d.Next() == jx.Null {
				return d.Null()
			}
			o.DeliveryDetails = new(order.VaultDeliveryDetails)
			err = object(d, func(d *jx.Decoder, key string) (err error) {
				if key != "shippinglocation" {
					return d.Skip()
				}
				o.DeliveryDetails.ShippingLocation, err = vaultLocation(d)
				return wrapKey(err, key)
			})
		case "billingdetails":
			if d.Next() == jx.Null {
				return d.Null()
			}
			o.BillingDetails = new(order.VaultBillingDetails)
			err = object(d, func(d *jx.Decoder, key string) (err error) {
				if key != "billinglocation" {
					return d.Skip()
				}
				o.BillingDetails.BillingLocation, err = vaultLocation(d)
				return wrapKey(err, key)
			})
		case "items":
			o.Items = nil
			err = array(d, func(d *jx.Decoder) error {
				var item order.VaultLineItem
				if err := vaultLineItem(d, &item); err != nil {
					return err
				}
				o.Items = append(o.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
}

func vaultLocation(d *jx.Decoder) (*order.VaultLocation, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	l := new(order.VaultLocation)
	err := object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "addressline":
			l.AddressLine, err = optString(d)
		case "town":
			l.Town, err = optString(d)
		case "region":
			l.Region, err = optString(d)
		case "zip":
			l.Zip, err = optString(d)
		case "countrycode":
			l.CountryCode, err = optString(d)
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
	return l, err
}

func vaultLineItem(d *jx.Decoder, item *order.VaultLineItem) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "productcode":
			item.ProductCode, err = str(d)
		case "quantity":
			item.Quantity, err = intValue(d)
		case "unitprice":
			item.UnitPrice, err = decimalValue(d)
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
}
