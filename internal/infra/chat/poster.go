package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order_bot/internal/domain"

	"github.com/google/uuid"
)

// Poster publishes outbound effects to the chat platform's REST API:
// posting thread replies, redrawing the order message, pinning and
// unpinning. It runs strictly after the core has committed, so a slow
// or failing call here never holds an order's lock.
type Poster struct {
	restURL string
	token   string
	client  *http.Client
}

// NewPoster creates a REST poster.
func NewPoster(restURL, token string) *Poster {
	return &Poster{
		restURL: restURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (p *Poster) call(method string, body map[string]interface{}) error {
	// Correlation id lets the platform deduplicate retried deliveries.
	body["request_id"] = uuid.NewString()

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.restURL+"/"+method, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: bad status %s", method, resp.Status)
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !ar.OK {
		return fmt.Errorf("%s: platform error %q", method, ar.Error)
	}
	return nil
}

// PostThreadReply posts text as a reply in the order message's thread.
func (p *Poster) PostThreadReply(channelID string, orderID domain.OrderID, text string) error {
	return p.call("chat.post", map[string]interface{}{
		"channel_id": channelID,
		"thread_id":  string(orderID),
		"text":       text,
	})
}

// UpdateOrderMessage redraws the order message and attaches the
// snapshot as its metadata, keeping the platform-carried copy current.
func (p *Poster) UpdateOrderMessage(channelID string, orderID domain.OrderID, text string, snap *domain.Snapshot) error {
	return p.call("chat.update", map[string]interface{}{
		"channel_id": channelID,
		"message_id": string(orderID),
		"text":       text,
		"metadata":   snap,
	})
}

// Pin pins the order message in its channel.
func (p *Poster) Pin(channelID string, orderID domain.OrderID) error {
	return p.call("pins.add", map[string]interface{}{
		"channel_id": channelID,
		"message_id": string(orderID),
	})
}

// Unpin removes the pin after an order closes.
func (p *Poster) Unpin(channelID string, orderID domain.OrderID) error {
	return p.call("pins.remove", map[string]interface{}{
		"channel_id": channelID,
		"message_id": string(orderID),
	})
}
