package retrieval

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptTypes      = "application/json, text/html"
	acceptLanguage   = "en-US,en;q=0.9"
	contentEncoding  = "gzip"
	maxBodySize      = 10 << 20
)

// Client performs the HTTP requests of all sources. Requests share one rate
// limiter, so concurrent sources are still spaced out.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string

	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient returns a client with the given request timeout. Consecutive
// requests are at least interval apart; a non-positive interval disables
// spacing.
func NewClient(logger *zap.Logger, timeout, interval time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptTypes)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// get fetches url and returns the decompressed body of a 200 response.
func (c *Client) get(ctx context.Context, url string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(io.LimitReader(reader, maxBodySize))
}

func (c *Client) getJSON(ctx context.Context, url string, q url.Values, target any) error {
	data, err := c.get(ctx, url, q)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func (c *Client) getHTML(ctx context.Context, url string, q url.Values) (*goquery.Document, error) {
	data, err := c.get(ctx, url, q)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return doc, nil
}

// decodeItems converts loosely typed API items into typed structs.
func decodeItems(items any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(items)
}
