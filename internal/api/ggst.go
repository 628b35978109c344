package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ggst-replays/internal/config"
	"ggst-replays/internal/constants"
	"ggst-replays/internal/protocol"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	replayCatalogPath = "/api/catalog/get_replay"
	userStatsPath     = "/api/statistics/get"
)

type GGSTClient struct {
	token        []byte
	baseURL      string
	utilsBaseURL string
	timeout      time.Duration
	client       *fasthttp.Client
	logger       zerolog.Logger
}

func NewGGSTClient(cfg *config.Config, logger zerolog.Logger) (*GGSTClient, error) {
	token, err := cfg.TokenBytes()
	if err != nil {
		return nil, err
	}

	return &GGSTClient{
		token:        token,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		utilsBaseURL: strings.TrimRight(cfg.UtilsBaseURL, "/"),
		timeout:      cfg.RequestTimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.ClientMaxConns,
			ReadTimeout:         cfg.RequestTimeout,
			WriteTimeout:        cfg.RequestTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "ggst_client").Logger(),
	}, nil
}

// Token returns a copy of the decoded session token.
func (c *GGSTClient) Token() []byte {
	return append([]byte(nil), c.token...)
}

// TransportError is a failed exchange with the game service: a network error,
// a timeout or a non-200 status.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: API error: %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FetchReplayPage posts one encoded catalog request and returns the raw page.
func (c *GGSTClient) FetchReplayPage(ctx context.Context, body []byte) ([]byte, error) {
	return c.postData(ctx, c.baseURL+replayCatalogPath, body)
}

type userIDResponse struct {
	UserID *string `json:"UserID"`
}

// ResolveUserID maps a steam id to the game's own user id.
func (c *GGSTClient) ResolveUserID(ctx context.Context, steamID string) (string, error) {
	url := fmt.Sprintf("%s/%s.json", c.utilsBaseURL, steamID)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	body, err := c.do(ctx, url, req, resp)
	if err != nil {
		return "", err
	}

	var result userIDResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unexpected response from API: %w", err)
	}
	if result.UserID == nil || *result.UserID == "" {
		return "", fmt.Errorf("unexpected response from API: no UserID for steam id %s", steamID)
	}
	return *result.UserID, nil
}

type UserStatsResponse struct {
	NickName      string `json:"NickName"`
	PublicComment string `json:"PublicComment"`
}

// GetUserStats fetches the public profile of a user id.
func (c *GGSTClient) GetUserStats(ctx context.Context, userID string) (*UserStatsResponse, error) {
	payload, err := protocol.EncodeUserStatsRequest(c.token, userID)
	if err != nil {
		return nil, err
	}

	body, err := c.postData(ctx, c.baseURL+userStatsPath, payload)
	if err != nil {
		return nil, err
	}

	// the JSON document is preceded by binary framing
	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, fmt.Errorf("unexpected response from API: no JSON object in %d bytes", len(body))
	}

	var result UserStatsResponse
	if err := json.Unmarshal(body[start:], &result); err != nil {
		return nil, fmt.Errorf("unexpected response from API: %w", err)
	}
	return &result, nil
}

func (c *GGSTClient) postData(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	defer fasthttp.ReleaseArgs(args)

	args.Set("data", hex.EncodeToString(payload))

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBody(args.QueryString())

	return c.do(ctx, url, req, resp)
}

// do runs the exchange and copies the body out, since resp is pooled.
func (c *GGSTClient) do(ctx context.Context, url string, req *fasthttp.Request, resp *fasthttp.Response) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("request failed")
		return nil, &TransportError{URL: url, Err: err}
	}

	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Int("bytes", len(resp.Body())).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &TransportError{URL: url, Status: resp.StatusCode()}
	}

	return append([]byte(nil), resp.Body()...), nil
}
