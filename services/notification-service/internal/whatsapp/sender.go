package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Sender interface {
	Send(ctx context.Context, to string, body string) error
	ProviderID() string
}

// CloudSender sends text messages through the WhatsApp Cloud API.
type CloudSender struct {
	baseURL       string
	phoneNumberID string
	token         string
	http          *http.Client
}

func NewCloudSender(baseURL string, phoneNumberID string, token string) *CloudSender {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &CloudSender{
		baseURL:       baseURL,
		phoneNumberID: strings.TrimSpace(phoneNumberID),
		token:         strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *CloudSender) ProviderID() string {
	return "whatsapp-cloud"
}

func (s *CloudSender) Send(ctx context.Context, to string, body string) error {
	if s.phoneNumberID == "" || s.token == "" {
		return errors.New("whatsapp cloud api not configured")
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text": map[string]any{
			"preview_url": false,
			"body":        body,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp cloud api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) ProviderID() string {
	return "whatsapp-noop"
}

func (s *NoopSender) Send(_ context.Context, _ string, _ string) error {
	return nil
}
