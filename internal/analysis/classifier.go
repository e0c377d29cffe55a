package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Classification is the external classifier's verdict over a batch of
// comments. Percentages should sum to ~100; the remarks are free text.
type Classification struct {
	PositivePct     float64 `json:"positive_pct"`
	NegativePct     float64 `json:"negative_pct"`
	NeutralPct      float64 `json:"neutral_pct"`
	PositiveRemarks string  `json:"positive_remarks"`
	NegativeRemarks string  `json:"negative_remarks"`
	NeutralRemarks  string  `json:"neutral_remarks"`
	Conclusion      string  `json:"conclusion"`
}

// Classifier turns raw comment text into sentiment percentages. The model
// itself lives behind an external service; this core only consumes it.
type Classifier interface {
	Classify(ctx context.Context, comments []string) (*Classification, error)
}

// HTTPClassifier calls the external classification service.
type HTTPClassifier struct {
	client *resty.Client
	apiKey string
}

// Ensure HTTPClassifier implements Classifier
var _ Classifier = (*HTTPClassifier)(nil)

// NewHTTPClassifier creates a classifier client for the given service URL.
func NewHTTPClassifier(baseURL, apiKey string) *HTTPClassifier {
	return &HTTPClassifier{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(60 * time.Second),
		apiKey: apiKey,
	}
}

type classifyRequest struct {
	Comments []string `json:"comments"`
}

// Classify sends the comment batch to the service and decodes its verdict.
func (c *HTTPClassifier) Classify(ctx context.Context, comments []string) (*Classification, error) {
	var result Classification

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(classifyRequest{Comments: comments}).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post("/classify")
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("classification service returned status %d: %s",
			resp.StatusCode(), string(resp.Body()))
	}

	return &result, nil
}
