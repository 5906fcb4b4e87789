package btcpay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(handler http.HandlerFunc) (*Driver, *httptest.Server) {
	srv := httptest.NewServer(handler)
	d := NewDriver(srv.URL, "test-token")
	return d, srv
}

func TestGetInvoice(t *testing.T) {
	d, srv := newTestDriver(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/inv-1", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"data":{"id":"inv-1","url":"https://pay/i/inv-1","status":"confirmed","btcPrice":"0.00050000","invoiceTime":1700000000000,"expirationTime":1700000900000}}`)
	})
	defer srv.Close()

	invoice, err := d.GetInvoice(context.Background(), "inv-1")
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Equal(t, "inv-1", invoice.ID)
	assert.Equal(t, "CONFIRMED", invoice.Status)
	assert.Equal(t, 0.0005, invoice.BTCPrice)
	assert.EqualValues(t, 1700000000000, invoice.InvoiceTime.UnixMilli())
}

func TestGetInvoiceNotFound(t *testing.T) {
	d, srv := newTestDriver(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	invoice, err := d.GetInvoice(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, invoice)
}

func TestGetInvoiceMalformedBTCPrice(t *testing.T) {
	d, srv := newTestDriver(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"inv-1","status":"paid","btcPrice":"not-a-number"}}`)
	})
	defer srv.Close()

	_, err := d.GetInvoice(context.Background(), "inv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "btcPrice")
}

func TestGetRateParsesEnvelope(t *testing.T) {
	d, srv := newTestDriver(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates/BTC_EUR", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"rate":30000.5}]}`)
	})
	defer srv.Close()

	rate, err := d.GetRate(context.Background(), "BTC_EUR")
	require.NoError(t, err)
	assert.Equal(t, 30000.5, rate)
}
