// Package advisor talks to the external time-slot prediction service.
//
// The service is advisory. Client.Rank never fails: any trouble with the
// upstream answer is logged, counted and replaced by the local heuristic.
package advisor

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

	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/domain/services"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	predictPath = "/predict-timeslot"
	learnPath   = "/learn"
)

var _ ports.SlotAdvisor = (*Client)(nil)

// Client is the HTTP client of the prediction service with a heuristic
// fallback.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fallback   services.HeuristicSlotRanker
	loc        *time.Location
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient creates a client for baseURL. An empty baseURL disables the
// upstream calls and every ranking comes from the heuristic. Hours sent to
// and read from the service are evaluated in loc.
func NewClient(baseURL string, timeout time.Duration, loc *time.Location, m *metrics.Metrics, logger *zap.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fallback: services.NewHeuristicSlotRanker(loc),
		loc:      loc,
		metrics:  m,
		logger:   logger.With(zap.String("component", "slot_advisor")),
	}
}

// Rank asks the prediction service to score candidates. Candidates the
// service does not mention are left out for the caller to score.
func (c *Client) Rank(ctx context.Context, candidates []prediction.Candidate, pctx prediction.Context) []prediction.Prediction {
	if len(candidates) == 0 {
		return []prediction.Prediction{}
	}
	if c.baseURL == "" {
		return c.useFallback(candidates, pctx, reasonDisabled, nil)
	}

	resp, err := c.predict(ctx, c.newPredictRequest(candidates[0], pctx))
	if err != nil {
		reason := reasonBadResponse
		if errors.Is(err, ErrInternal) {
			reason = reasonUnavailable
		}
		return c.useFallback(candidates, pctx, reason, err)
	}

	predictions := c.match(candidates, resp.Predictions)
	if len(predictions) == 0 {
		return c.useFallback(candidates, pctx, reasonNoMatch, ErrNoMatch)
	}

	return prediction.SortAndRank(predictions)
}

// RecordPreference sends the chosen slot to the learning endpoint.
func (c *Client) RecordPreference(ctx context.Context, feedback prediction.Feedback) error {
	if c.baseURL == "" {
		return nil
	}

	body := learnRequest{
		RecipientData: c.features(feedback.Selected, feedback.Context),
		SelectedSlot:  c.timeSlotKey(feedback.Selected),
	}

	resp, err := c.post(ctx, learnPath, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}
	return nil
}

func (c *Client) newPredictRequest(first prediction.Candidate, pctx prediction.Context) predictRequest {
	return predictRequest{recipientFeatures: c.features(first, pctx)}
}

// features fills the service's inputs, substituting the defaults it was
// trained with for anything the caller did not supply. The area code is the
// first three digits of the postal code.
func (c *Client) features(cand prediction.Candidate, pctx prediction.Context) recipientFeatures {
	f := recipientFeatures{
		RecipientID:  pctx.RecipientID,
		DayOfWeek:    int(cand.Start.In(c.loc).Weekday()),
		LocationType: pctx.AddressType,
		AreaCode:     areaCode(pctx.PostalCode),
		Distance:     defaultDistanceKm,
		OrderValue:   defaultOrderValue,
	}
	if f.LocationType == "" {
		f.LocationType = defaultLocationType
	}
	if p := pctx.Location; p != nil {
		lat, lng := p.Lat(), p.Lng()
		f.Latitude, f.Longitude = &lat, &lng
	}
	return f
}

func areaCode(postalCode string) string {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return defaultAreaCode
	}
	if len(postalCode) > areaCodeDigits {
		return postalCode[:areaCodeDigits]
	}
	return postalCode
}

func (c *Client) predict(ctx context.Context, body predictRequest) (*predictResponse, error) {
	resp, err := c.post(ctx, predictPath, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var out predictResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	return resp, nil
}

// match pairs candidates with predictions by their hour range. Confidences
// arrive in percent.
func (c *Client) match(candidates []prediction.Candidate, predicted []predictedSlot) []prediction.Prediction {
	byKey := make(map[string]predictedSlot, len(predicted))
	for _, p := range predicted {
		key := strings.ReplaceAll(p.TimeSlot, " ", "")
		if _, ok := byKey[key]; !ok {
			byKey[key] = p
		}
	}

	out := make([]prediction.Prediction, 0, len(candidates))
	for _, cand := range candidates {
		p, ok := byKey[c.timeSlotKey(cand)]
		if !ok {
			continue
		}
		out = append(out, prediction.Prediction{
			SlotID:      cand.SlotID,
			Confidence:  prediction.Clamp(p.Confidence / 100),
			Explanation: p.Explanation,
			Source:      prediction.SourceAdvisor,
		})
	}
	return out
}

func (c *Client) timeSlotKey(cand prediction.Candidate) string {
	return fmt.Sprintf("%d-%d", cand.Start.In(c.loc).Hour(), cand.End.In(c.loc).Hour())
}

func (c *Client) useFallback(
	candidates []prediction.Candidate,
	pctx prediction.Context,
	reason string,
	err error,
) []prediction.Prediction {
	c.metrics.ObserveAdvisorFallback(reason)
	if err != nil {
		c.logger.Warn("prediction service unusable, ranking with heuristic",
			zap.String("reason", reason), zap.Error(err))
	}
	return c.fallback.Rank(candidates, pctx)
}
