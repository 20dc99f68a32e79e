// Package irctc is a small client for the RapidAPI IRCTC PNR status endpoint.
package irctc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultHost    = "irctc1.p.rapidapi.com"
	DefaultTimeout = 5 * time.Second
	pnrStatusPath  = "/api/v3/getPNRStatus"
)

var (
	ErrMissingAPIKey  = errors.New("rapidapi key is not configured")
	ErrUpstreamStatus = errors.New("pnr provider returned a non-success status")
	ErrNoData         = errors.New("pnr provider returned no data")
)

type Config struct {
	APIKey string
	Host   string
	// BaseURL overrides https://{Host}; used to point at a test server.
	BaseURL string
	Timeout time.Duration
}

type IClient interface {
	PNRStatus(ctx context.Context, pnr string) (PNRData, error)
}

type client struct {
	http    *http.Client
	apiKey  string
	host    string
	baseURL string
	group   singleflight.Group
	log     *logrus.Logger
}

func New(cfg Config, log *logrus.Logger) (IClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		host:    cfg.Host,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log,
	}, nil
}

type pnrResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
}

// PNRStatus fetches the raw provider record. Concurrent lookups of the same
// PNR share one request.
func (c *client) PNRStatus(ctx context.Context, pnr string) (PNRData, error) {
	v, err, _ := c.group.Do(pnr, func() (interface{}, error) {
		return c.fetch(ctx, pnr)
	})
	if err != nil {
		return nil, err
	}
	return v.(PNRData), nil
}

func (c *client) fetch(ctx context.Context, pnr string) (PNRData, error) {
	endpoint := c.baseURL + pnrStatusPath + "?" + url.Values{"pnrNumber": {pnr}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed pnrResponse
	if err := jsoniter.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode pnr response: %w", err)
	}

	data := PNRData{}
	if len(parsed.Data) > 0 && parsed.Data[0] == '{' {
		if err := jsoniter.Unmarshal(parsed.Data, &data); err != nil {
			return nil, fmt.Errorf("decode pnr data: %w", err)
		}
	}

	if !parsed.Status && len(data) == 0 {
		c.log.WithFields(logrus.Fields{
			"pnr":     pnr,
			"message": parsed.Message,
		}).Warn("[irctc.fetch] provider returned no data")
		return nil, ErrNoData
	}

	return data, nil
}

// PNRData is the provider's record. Field names vary between provider
// versions, so values are read with defaults.
type PNRData map[string]interface{}

func (d PNRData) String(key, def string) string {
	switch v := d[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return def
}

func (d PNRData) Int(key string, def int) int {
	switch v := d[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
