package btcpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vpn-backend/internal/payment"
	"vpn-backend/internal/utils"
)

// Driver talks to a BTCPay Server merchant over its Bitpay-compatible API.
type Driver struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewDriver(baseURL, token string) *Driver {
	return &Driver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  utils.NewHTTPClient(30 * time.Second),
	}
}

type invoicePayload struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	Status         string  `json:"status"`
	BTCPrice       string  `json:"btcPrice"`
	InvoiceTime    int64   `json:"invoiceTime"`    // unix millis
	ExpirationTime int64   `json:"expirationTime"` // unix millis
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
}

type invoiceEnvelope struct {
	Data *invoicePayload `json:"data"`
}

type rateEnvelope struct {
	Data []struct {
		Rate float64 `json:"rate"`
	} `json:"data"`
}

func (d *Driver) CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (*payment.Invoice, error) {
	body := map[string]interface{}{
		"price":           req.Price,
		"currency":        req.Currency,
		"itemDesc":        req.ItemDesc,
		"notificationURL": req.NotificationURL,
		"redirectURL":     req.RedirectURL,
		"token":           d.Token,
	}

	var env invoiceEnvelope
	if err := d.do(ctx, http.MethodPost, "/invoices", body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, errors.New("btcpay: empty invoice response")
	}
	return env.Data.toInvoice()
}

func (d *Driver) GetInvoice(ctx context.Context, id string) (*payment.Invoice, error) {
	var env invoiceEnvelope
	err := d.do(ctx, http.MethodGet, "/invoices/"+id+"?token="+d.Token, nil, &env)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if env.Data == nil {
		return nil, nil
	}
	return env.Data.toInvoice()
}

func (d *Driver) GetRate(ctx context.Context, pair string) (float64, error) {
	var env rateEnvelope
	if err := d.do(ctx, http.MethodGet, "/rates/"+pair+"?token="+d.Token, nil, &env); err != nil {
		return 0, err
	}
	if len(env.Data) == 0 {
		return 0, errors.New("btcpay: no rate for pair " + pair)
	}
	return env.Data[0].Rate, nil
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("btcpay: unexpected status %d: %s", e.Code, e.Body)
}

func (d *Driver) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Accept-Version", "2.0.0")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return &statusError{Code: resp.StatusCode, Body: buf.String()}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *invoicePayload) toInvoice() (*payment.Invoice, error) {
	var btcPrice float64
	if p.BTCPrice != "" {
		var err error
		btcPrice, err = strconv.ParseFloat(p.BTCPrice, 64)
		if err != nil {
			return nil, fmt.Errorf("btcpay: malformed btcPrice %q: %w", p.BTCPrice, err)
		}
	}
	return &payment.Invoice{
		ID:             p.ID,
		URL:            p.URL,
		Status:         strings.ToUpper(p.Status),
		BTCPrice:       btcPrice,
		InvoiceTime:    time.UnixMilli(p.InvoiceTime),
		ExpirationTime: time.UnixMilli(p.ExpirationTime),
	}, nil
}
