package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

// JudgeClient fetches everything the tracker stores about a handle.
type JudgeClient interface {
	FetchProfile(ctx context.Context, handle string) (*models.ProfileBundle, error)
}

type codeforcesClient struct {
	baseURL         string
	submissionCount int
	client          *http.Client
	logger          zerolog.Logger
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment,omitempty"`
	Result  json.RawMessage `json:"result"`
}

func NewCodeforcesClient(baseURL string, timeout time.Duration, submissionCount int, logger zerolog.Logger) JudgeClient {
	return &codeforcesClient{
		baseURL:         baseURL,
		submissionCount: submissionCount,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchProfile performs the three lookups once each. Any failure is reported
// as a *models.LookupError; nothing is retried.
func (c *codeforcesClient) FetchProfile(ctx context.Context, handle string) (*models.ProfileBundle, error) {
	var users []models.UserInfo
	if err := c.call(ctx, "user.info", url.Values{"handles": {handle}}, &users); err != nil {
		return nil, c.lookupFailed(handle, err)
	}
	if len(users) == 0 {
		return nil, c.lookupFailed(handle, errors.New("handle not found"))
	}

	var contests []models.Contest
	if err := c.call(ctx, "user.rating", url.Values{"handle": {handle}}, &contests); err != nil {
		return nil, c.lookupFailed(handle, err)
	}

	var submissions []models.Submission
	params := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {strconv.Itoa(c.submissionCount)},
	}
	if err := c.call(ctx, "user.status", params, &submissions); err != nil {
		return nil, c.lookupFailed(handle, err)
	}

	c.logger.Debug().
		Str("handle", handle).
		Int("contests", len(contests)).
		Int("submissions", len(submissions)).
		Msg("Fetched codeforces profile")

	return &models.ProfileBundle{
		User:        users[0],
		Contests:    contests,
		Submissions: submissions,
	}, nil
}

func (c *codeforcesClient) call(ctx context.Context, method string, params url.Values, dst interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	// Codeforces answers 400 with a FAILED envelope for unknown handles, so
	// the envelope is decoded before looking at the status code.
	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
		}
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if envelope.Status != "OK" {
		return fmt.Errorf("%s failed: %s", method, envelope.Comment)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	if err := json.Unmarshal(envelope.Result, dst); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	return nil
}

func (c *codeforcesClient) lookupFailed(handle string, err error) error {
	c.logger.Error().Err(err).Str("handle", handle).Msg("Codeforces lookup failed")
	return &models.LookupError{Handle: handle, Err: err}
}
