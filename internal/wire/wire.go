// Package wire encodes and decodes the JSON documents exchanged with order
// suppliers and the downstream order API.
//
// Object keys are matched case-insensitively on input and unknown keys are
// skipped. Output always uses lowerCamelCase keys.
package wire

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// isEmpty reports whether b holds no document: only whitespace or a JSON null.
func isEmpty(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// document checks that b holds exactly one JSON value with nothing after it,
// then runs f over it.
func document(b []byte, f func(d *jx.Decoder) error) error {
	if err := jx.DecodeBytes(b).Validate(); err != nil {
		return errors.Wrap(err, "invalid json")
	}
	return f(jx.DecodeBytes(b))
}

// wrapKey annotates a field decode error with its key. Nil stays nil.
func wrapKey(err error, key string) error {
	if err != nil {
		return errors.Wrap(err, key)
	}
	return nil
}

// object decodes a JSON object, passing lower-cased keys to f. A null value
// is accepted and leaves the target untouched.
func object(d *jx.Decoder, f func(d *jx.Decoder, key string) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		return f(d, strings.ToLower(key))
	})
}

// array decodes a JSON array, calling f per element. Null is an empty array.
func array(d *jx.Decoder, f func(d *jx.Decoder) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Arr(f)
}

func optString(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func str(d *jx.Decoder) (string, error) {
	s, err := optString(d)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

func optInt64(d *jx.Decoder) (*int64, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Int64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func int64Value(d *jx.Decoder) (int64, error) {
	v, err := optInt64(d)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func intValue(d *jx.Decoder) (int, error) {
	v, err := int64Value(d)
	return int(v), err
}

// decimalValue accepts both JSON numbers and numeric strings.
func decimalValue(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.Null:
		return decimal.Zero, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Zero, errors.Errorf("unexpected %s for decimal", tt)
	}
}

// localLayout is RFC 3339 without a zone offset, as written by serializers
// that drop the time zone. Such values are read as UTC.
const localLayout = "2006-01-02T15:04:05.999999999"

func timestamp(d *jx.Decoder) (time.Time, error) {
	s, err := optString(d)
	if err != nil || s == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err == nil {
		return t, nil
	}
	if local, lerr := time.Parse(localLayout, *s); lerr == nil {
		return local.UTC(), nil
	}
	return time.Time{}, errors.Wrap(err, "parse timestamp")
}
