package downstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-ingest/internal/domain/order"
	"github.com/xenking/order-ingest/pkg/httpmiddleware"
)

// --- Helpers ---

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

// unreachableClient points at a server that has already been shut down.
func unreachableClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func testOrder() *order.Order {
	customerID := int64(5)
	return &order.Order{
		CustomerID: &customerID,
		SupplierID: order.SupplierSpeedy,
		OrderDate:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Status:     order.StatusReceived,
		Items: []order.LineItem{
			{ProductID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("9.5")},
		},
	}
}

// --- Tests ---

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)

	_, err = New("://bad")
	require.Error(t, err)
}

func TestSupplierName(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/suppliers/1", r.URL.Path)
		jsonHandler(http.StatusOK, `{"Id": 1, "Name": "Speedy"}`)(w, r)
	}))

	assert.Equal(t, "Speedy", c.SupplierName(context.Background(), 1))
}

func TestSupplierName_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client func(t *testing.T) *Client
	}{
		{"server error", func(t *testing.T) *Client {
			return newTestClient(t, jsonHandler(http.StatusInternalServerError, `{}`))
		}},
		{"not found", func(t *testing.T) *Client {
			return newTestClient(t, jsonHandler(http.StatusNotFound, ``))
		}},
		{"bad body", func(t *testing.T) *Client {
			return newTestClient(t, jsonHandler(http.StatusOK, `<html>`))
		}},
		{"empty name", func(t *testing.T) *Client {
			return newTestClient(t, jsonHandler(http.StatusOK, `{"id": 1, "name": ""}`))
		}},
		{"unreachable", unreachableClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, order.UnknownSupplier, tt.client(t).SupplierName(context.Background(), 1))
		})
	}
}

func TestCustomerID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		jsonHandler(http.StatusOK, `{"ID": 11, "email": "a b@y.com"}`)(w, r)
	}))

	id, ok := c.CustomerID(context.Background(), "a b@y.com")
	require.True(t, ok)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, "/customers/by-email/a b@y.com", gotPath)
}

func TestCustomerID_NotFound(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusNotFound, `{"title": "Not Found"}`))
	_, ok := c.CustomerID(context.Background(), "x@y.com")
	assert.False(t, ok)

	_, ok = unreachableClient(t).CustomerID(context.Background(), "x@y.com")
	assert.False(t, ok)
}

func TestProductID(t *testing.T) {
	const code = "6f1c3a1e-8a57-4c59-9a3f-1d2b3c4d5e6f"
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/by-code/"+code {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		jsonHandler(http.StatusOK, `{"id": 101, "code": "`+code+`"}`)(w, r)
	}))

	id, ok := c.ProductID(context.Background(), code)
	require.True(t, ok)
	assert.Equal(t, int64(101), id)

	_, ok = c.ProductID(context.Background(), "0b6f4e2a-3c1d-4e5f-8a9b-0c1d2e3f4a5b")
	assert.False(t, ok)
}

func TestSubmit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))

		var doc map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, float64(1), doc["supplierId"])
		assert.Equal(t, "received", doc["status"])

		jsonHandler(http.StatusCreated, `{"id": 300, "supplierId": 1, "status": "received", "items": []}`)(w, r)
	}))

	ctx := httpmiddleware.ContextWithRequestID(context.Background(), "req-1")
	created, err := c.Submit(ctx, testOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(300), created.ID)
}

func TestSubmit_Rejected(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusConflict, `{"error":"duplicate"}`))

	_, err := c.Submit(context.Background(), testOrder())
	var rejected *order.UpstreamRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusConflict, rejected.StatusCode)
	assert.Equal(t, `{"error":"duplicate"}`, string(rejected.Body))
	assert.Equal(t, "application/json", rejected.ContentType)
}

func TestSubmit_DecodeFailure(t *testing.T) {
	for name, body := range map[string]string{
		"garbage": `<html>`,
		"empty":   ``,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, jsonHandler(http.StatusCreated, body))

			_, err := c.Submit(context.Background(), testOrder())
			var decodeErr *order.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, order.OutcomeDeserializationFailed, order.Classify(err))
		})
	}
}

func TestSubmit_LargeBodies(t *testing.T) {
	t.Run("rejection at the limit is kept whole", func(t *testing.T) {
		body := strings.Repeat("x", maxResponseBytes)
		c := newTestClient(t, jsonHandler(http.StatusUnprocessableEntity, body))

		_, err := c.Submit(context.Background(), testOrder())
		var rejected *order.UpstreamRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Len(t, rejected.Body, maxResponseBytes)
	})

	for name, status := range map[string]int{
		"oversized rejection": http.StatusUnprocessableEntity,
		"oversized echo":      http.StatusCreated,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, jsonHandler(status, strings.Repeat("x", maxResponseBytes+1)))

			_, err := c.Submit(context.Background(), testOrder())
			var decodeErr *order.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.ErrorIs(t, err, errResponseTooLarge)
		})
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	_, err := unreachableClient(t).Submit(context.Background(), testOrder())
	var transportErr *order.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "submit order", transportErr.Op)
}

func TestGet(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/300", r.URL.Path)
		jsonHandler(http.StatusOK, `{"id": 300, "supplierId": 2}`)(w, r)
	}))

	o, err := c.Get(context.Background(), 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), o.ID)
	assert.Equal(t, order.SupplierVault, o.SupplierID)
}

type countingTransport struct {
	calls atomic.Int64
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return t.next.RoundTrip(r)
}

func TestSharedHTTPClient(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"id": 1, "name": "Speedy"}`))
	t.Cleanup(srv.Close)

	tr := &countingTransport{next: srv.Client().Transport}
	c, err := New(srv.URL, WithHTTPClient(&http.Client{Transport: tr}))
	require.NoError(t, err)

	ctx := context.Background()
	c.SupplierName(ctx, 1)
	c.CustomerID(ctx, "x@y.com")
	c.ProductID(ctx, "code")
	assert.Equal(t, int64(3), tr.calls.Load())
}

func TestPing(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusNotFound, ``))
	require.NoError(t, c.Ping(context.Background()))
	require.Error(t, unreachableClient(t).Ping(context.Background()))
}
