package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Supplier is the downstream supplier resource.
type Supplier struct {
	ID   int64
	Name string
}

// DecodeSupplier parses a supplier resource.
func DecodeSupplier(b []byte) (Supplier, error) {
	var s Supplier
	if isEmpty(b) {
		return s, errors.New("empty supplier document")
	}
	err := document(b, func(d *jx.Decoder) error {
		return object(d, func(d *jx.Decoder, key string) (err error) {
			switch key {
			case "id":
				s.ID, err = int64Value(d)
			case "name":
				s.Name, err = str(d)
			default:
				return d.Skip()
			}
			return wrapKey(err, key)
		})
	})
	if err != nil {
		return Supplier{}, errors.Wrap(err, "decode supplier")
	}
	return s, nil
}

// DecodeID extracts the "id" of a downstream resource, ignoring every other
// field. A document without a positive id is an error.
func DecodeID(b []byte) (int64, error) {
	if isEmpty(b) {
		return 0, errors.New("empty document")
	}
	var id int64
	err := document(b, func(d *jx.Decoder) error {
		return object(d, func(d *jx.Decoder, key string) (err error) {
			if key != "id" {
				return d.Skip()
			}
			id, err = int64Value(d)
			return wrapKey(err, key)
		})
	})
	if err != nil {
		return 0, errors.Wrap(err, "decode resource id")
	}
	if id <= 0 {
		return 0, errors.New("resource has no id")
	}
	return id, nil
}
