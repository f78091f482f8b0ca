package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 15 * time.Second
)

// Client talks to the collection endpoint over HTTP. URL is the submission address;
// the token listing lives below it.
type Client struct {
	URL            string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Collector = Client{}

type storeResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	EntryIndex int    `json:"entry_index"`
	TotalCount int    `json:"total_count"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c Client) Submit(ctx context.Context, submission domain.Submission) (int, error) {
	endpoint, err := c.endpoint("")
	if err != nil {
		return 0, &domain.SubmitError{Err: err}
	}

	payload, err := json.Marshal(submission)
	if err != nil {
		return 0, &domain.SubmitError{Err: fmt.Errorf("encode submission: %w", err)}
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, &domain.SubmitError{Err: fmt.Errorf("create submit request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, &domain.SubmitError{Err: fmt.Errorf("post token: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, &domain.SubmitError{StatusCode: resp.StatusCode, Err: decodeError(resp)}
	}

	var body storeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return 0, &domain.SubmitError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode submit response: %w", err)}
	}

	return body.TotalCount, nil
}

func (c Client) List(ctx context.Context) (application.TokenList, error) {
	var list application.TokenList
	if err := c.get(ctx, "tokens", &list); err != nil {
		return application.TokenList{}, fmt.Errorf("list tokens: %w", err)
	}

	return list, nil
}

func (c Client) Latest(ctx context.Context) (domain.TokenRecord, error) {
	var record domain.TokenRecord
	if err := c.get(ctx, "tokens/latest", &record); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("latest token: %w", err)
	}

	return record, nil
}

func (c Client) get(ctx context.Context, path string, dst any) error {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound && path == "tokens/latest" {
		return domain.ErrNoTokens
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %w", resp.StatusCode, decodeError(resp))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c Client) endpoint(path string) (string, error) {
	if c.URL == "" {
		return "", errors.New("collector url is required")
	}

	parsed, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse collector url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("collector url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("collector url host is required")
	}

	if path != "" {
		parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + path
	}

	return parsed.String(), nil
}

func (c Client) authorize(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil || body.Message == "" {
		return errors.New(http.StatusText(resp.StatusCode))
	}

	return errors.New(body.Message)
}
