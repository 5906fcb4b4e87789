package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vpn-backend/internal/utils"
)

const sendgridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendgridSender delivers mail through the SendGrid v3 API.
type SendgridSender struct {
	APIKey string
	Client *http.Client
}

func NewSendgridSender(apiKey string) *SendgridSender {
	return &SendgridSender{
		APIKey: apiKey,
		Client: utils.NewHTTPClient(15 * time.Second),
	}
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridRequest struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (s *SendgridSender) Send(msg Message) error {
	req := sendgridRequest{
		From:    sendgridAddress{Email: msg.From},
		Subject: msg.Subject,
	}
	req.Personalizations = append(req.Personalizations, struct {
		To []sendgridAddress `json:"to"`
	}{To: []sendgridAddress{{Email: msg.To}}})
	req.Content = append(req.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/plain", Value: msg.Text})

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest(http.MethodPost, sendgridEndpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}
	return nil
}
