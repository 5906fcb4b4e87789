package billing

type CreateInvoiceInput struct {
	Months      int    `json:"months" binding:"required,gt=0"`
	PaymentType string `json:"payment_type" binding:"required,oneof=CRYPTO"`
}

type CreateInvoiceResponse struct {
	InvoiceURL string `json:"invoice_url"`
}

type InvoiceResponse struct {
	ID             string  `json:"id"`
	Months         int     `json:"months,omitempty"`
	Price          float64 `json:"price,omitempty"`
	BTCPrice       float64 `json:"btc_price,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	PaymentType    string  `json:"payment_type,omitempty"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	InvoiceURL     string  `json:"invoice_url,omitempty"`
	RewardSatoshis int64   `json:"affilate_rewarded_satoshis,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	ExpirationTime int64   `json:"expiration_time,omitempty"`
}

type RateResponse struct {
	Rate float64 `json:"rate"`
}

type WebhookInput struct {
	ID string `json:"id"`
}
