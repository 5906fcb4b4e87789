package utils

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"vpn-backend/pkg/logger"

	"go.uber.org/zap"
)

// LoggingTransport implements http.RoundTripper and logs outbound requests
// and responses. Used for the payment processor and mail collaborators.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func transportLogger() *zap.Logger {
	if logger.Log != nil {
		return logger.Log
	}
	return zap.NewNop()
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := transport.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		transportLogger().Error("outbound request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	bodyLog := ""
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // restore body
		if len(bodyBytes) > 2000 {
			bodyLog = string(bodyBytes[:2000]) + "...(truncated)"
		} else {
			bodyLog = string(bodyBytes)
		}
	}

	transportLogger().Debug("outbound request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("body", bodyLog))

	return resp, nil
}

// NewHTTPClient returns an http.Client with request logging enabled.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &LoggingTransport{
			Transport: http.DefaultTransport,
		},
	}
}
