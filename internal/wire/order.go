package wire

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/order-ingest/internal/domain/order"
)

// statusByIndex mirrors the downstream API's numeric status enum.
var statusByIndex = []order.Status{
	order.StatusReceived,
	order.StatusProcessing,
	order.StatusShipped,
	order.StatusDelivered,
	order.StatusCancelled,
}

// DecodeOrder parses a canonical order document. An empty or null document
// yields a nil order and no error.
func DecodeOrder(b []byte) (*order.Order, error) {
	if isEmpty(b) {
		return nil, nil
	}
	var o order.Order
	if err := document(b, func(d *jx.Decoder) error { return decodeOrder(d, &o) }); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return &o, nil
}

func decodeOrder(d *jx.Decoder, o *order.Order) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			o.ID, err = int64Value(d)
		case "customerid":
			o.CustomerID, err = optInt64(d)
		case "supplierid":
			o.SupplierID, err = int64Value(d)
		case "orderdate":
			o.OrderDate, err = timestamp(d)
		case "customeremail":
			o.CustomerEmail, err = optString(d)
		case "billingaddress":
			o.BillingAddress, err = address(d)
		case "deliveryaddress":
			o.DeliveryAddress, err = address(d)
		case "status":
			o.Status, err = status(d)
		case "items":
			o.Items = nil
			err = array(d, func(d *jx.Decoder) error {
				var item order.LineItem
				if err := lineItem(d, &item); err != nil {
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

func address(d *jx.Decoder) (*order.Address, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	a := new(order.Address)
	err := object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "street":
			a.Street, err = optString(d)
		case "city":
			a.City, err = optString(d)
		case "county":
			a.County, err = optString(d)
		case "postalcode":
			a.PostalCode, err = optString(d)
		case "country":
			a.Country, err = optString(d)
		default:
			return d.Skip()
		}
		return wrapKey(err, key)
	})
	return a, err
}

func lineItem(d *jx.Decoder, item *order.LineItem) error {
	return object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "productid":
			item.ProductID, err = int64Value(d)
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

// status accepts either a known status name (any case) or its numeric index.
func status(d *jx.Decoder) (order.Status, error) {
	switch tt := d.Next(); tt {
	case jx.Null:
		return "", d.Null()
	case jx.Number:
		idx, err := d.Int()
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(statusByIndex) {
			return "", errors.Errorf("unknown status %d", idx)
		}
		return statusByIndex[idx], nil
	default:
		s, err := d.Str()
		if err != nil || s == "" {
			return "", err
		}
		st := order.Status(strings.ToLower(s))
		if !st.Valid() {
			return "", errors.Errorf("unknown status %q", s)
		}
		return st, nil
	}
}

// MarshalOrder returns the lowerCamelCase JSON form of o.
func MarshalOrder(o *order.Order) []byte {
	var e jx.Encoder
	EncodeOrder(&e, o)
	return e.Bytes()
}

// EncodeOrder writes o as a JSON object. The id is omitted until the order
// has been assigned one; optional values are written as null.
func EncodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		if o.ID != 0 {
			e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		}
		e.Field("customerId", func(e *jx.Encoder) {
			if o.CustomerID == nil {
				e.Null()
				return
			}
			e.Int64(*o.CustomerID)
		})
		e.Field("supplierId", func(e *jx.Encoder) { e.Int64(o.SupplierID) })
		e.Field("orderDate", func(e *jx.Encoder) {
			e.Str(o.OrderDate.UTC().Format(time.RFC3339Nano))
		})
		e.Field("customerEmail", func(e *jx.Encoder) { encodeOptString(e, o.CustomerEmail) })
		e.Field("billingAddress", func(e *jx.Encoder) { encodeAddress(e, o.BillingAddress) })
		e.Field("deliveryAddress", func(e *jx.Encoder) { encodeAddress(e, o.DeliveryAddress) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Int64(item.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Num(jx.Num(item.UnitPrice.String())) })
					})
				}
			})
		})
	})
}

func encodeAddress(e *jx.Encoder, a *order.Address) {
	if a == nil {
		e.Null()
		return
	}
	e.Obj(func(e *jx.Encoder) {
		e.Field("street", func(e *jx.Encoder) { encodeOptString(e, a.Street) })
		e.Field("city", func(e *jx.Encoder) { encodeOptString(e, a.City) })
		e.Field("county", func(e *jx.Encoder) { encodeOptString(e, a.County) })
		e.Field("postalCode", func(e *jx.Encoder) { encodeOptString(e, a.PostalCode) })
		e.Field("country", func(e *jx.Encoder) { encodeOptString(e, a.Country) })
	})
}

func encodeOptString(e *jx.Encoder, s *string) {
	if s == nil {
		e.Null()
		return
	}
	e.Str(*s)
}
