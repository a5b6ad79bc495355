package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/redact"
)

// Charge submits a payment. A non-2xx status yields *domain.ServiceError; a
// 2xx answer is returned as-is, including success=false.
func (c *Client) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	log.InfoContext(ctx, "submitting payment",
		"email", redact.String(req.Email),
		"phone", redact.String(req.Phone),
		"amount", req.Amount,
		"flashcard_count", req.FlashcardCount)

	status, body, err := c.do(ctx, http.MethodPost, c.paths.Charge, req)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, serviceError("charge", status, body)
	}

	var res domain.ChargeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return &domain.ChargeResult{Success: false}, nil
	}
	return &res, nil
}
