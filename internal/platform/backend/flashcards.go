package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// Generate asks the backend to generate cards from notes. A body that is not
// a JSON array of cards yields domain.ErrEmptyResult.
func (c *Client) Generate(ctx context.Context, notes string) ([]domain.Card, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.paths.Generate, map[string]string{"notes": notes})
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, serviceError("generate", status, body)
	}

	var cards []domain.Card
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("%w: response is not a card array", domain.ErrEmptyResult)
	}
	return cards, nil
}

// savedCardWire tolerates the backend's zone-less ISO timestamps.
type savedCardWire struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// List returns the saved cards, newest first as ordered by the backend.
// A 404 yields domain.ErrNotFound.
func (c *Client) List(ctx context.Context) ([]domain.SavedCard, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.paths.List, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: saved cards", domain.ErrNotFound)
	}
	if !success(status) {
		return nil, serviceError("list", status, body)
	}

	var wire []savedCardWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &domain.ServiceError{Operation: "list", StatusCode: status, Message: "malformed response"}
	}

	out := make([]domain.SavedCard, 0, len(wire))
	for _, w := range wire {
		out = append(out, domain.SavedCard{
			ID:        w.ID,
			Question:  w.Question,
			Answer:    w.Answer,
			CreatedAt: parseCreatedAt(w.CreatedAt),
		})
	}
	return out, nil
}

type messageBody struct {
	Message string `json:"message"`
}

// Save persists one card and returns the backend's message, which may be empty.
func (c *Client) Save(ctx context.Context, card domain.Card) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.paths.Save, card)
	if err != nil {
		return "", err
	}
	if !success(status) {
		return "", serviceError("save", status, body)
	}

	var mb messageBody
	_ = json.Unmarshal(body, &mb)
	return mb.Message, nil
}

// Delete removes a saved card by id. A 404 yields domain.ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	status, body, err := c.do(ctx, http.MethodDelete, fmt.Sprintf(c.paths.Delete, id), nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: card %d", domain.ErrNotFound, id)
	}
	if !success(status) {
		return "", serviceError("delete", status, body)
	}

	var mb messageBody
	_ = json.Unmarshal(body, &mb)
	return mb.Message, nil
}

// ClearAll removes every saved card.
func (c *Client) ClearAll(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodDelete, c.paths.ClearAll, nil)
	if err != nil {
		return "", err
	}
	if !success(status) {
		return "", serviceError("clear_all", status, body)
	}

	var mb messageBody
	_ = json.Unmarshal(body, &mb)
	return mb.Message, nil
}

// HealthStatus is the backend's health report.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health reports backend health. An unhealthy 5xx report is returned along
// with a *domain.ServiceError.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.paths.Health, nil)
	if err != nil {
		return nil, err
	}

	var hs HealthStatus
	_ = json.Unmarshal(body, &hs)
	if !success(status) {
		return &hs, &domain.ServiceError{Operation: "health", StatusCode: status, Message: hs.Error}
	}
	return &hs, nil
}
