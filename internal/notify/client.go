package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPDispatcher invokes the confirmation function over HTTPS.
type HTTPDispatcher struct {
	url    string
	key    string
	client *http.Client
}

func NewHTTPDispatcher(url, key string, timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, c Confirmation) (*Receipt, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.key != "" {
		req.Header.Set("Authorization", "Bearer "+d.key)
		req.Header.Set("apikey", d.key)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke confirmation function: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return nil, &DispatchError{Status: resp.StatusCode, Message: e.Error}
	}

	var rc Receipt
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &rc, nil
}
