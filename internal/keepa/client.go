package keepa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrUnavailable    = errors.New("keepa: product data unavailable")
	ErrNoCandidates   = errors.New("keepa: product finder returned no products")
	ErrInvalidKeyword = errors.New("keepa: invalid keyword")
	ErrNoProducts     = errors.New("keepa: response has no products")
	ErrNoPriceHistory = errors.New("keepa: no new price history")
)

const (
	maxKeywordTokens = 50
	minFinderPerPage = 50
	maxLoggedBody    = 4096
)

// Client talks to the Keepa REST API. It issues exactly one request per
// call and relies on the default http.Client timeouts.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     logger.With("component", "keepa_client"),
	}
}

// FindProducts returns up to limit ASINs whose title contains every
// whitespace separated token of keyword. Matching is case-insensitive and
// whole-token, done by Keepa's product finder.
func (c *Client) FindProducts(ctx context.Context, keyword string, domain, limit int) ([]string, error) {
	tokens := strings.Fields(keyword)
	if len(tokens) == 0 || len(tokens) > maxKeywordTokens {
		return nil, fmt.Errorf("%w: %d tokens in %q", ErrInvalidKeyword, len(tokens), keyword)
	}

	perPage := limit
	if perPage < minFinderPerPage {
		perPage = minFinderPerPage
	}

	selection, err := json.Marshal(FinderSelection{
		Title:   strings.Join(tokens, " "),
		PerPage: perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("keepa: marshal selection: %w", err)
	}

	params := url.Values{}
	params.Set("domain", strconv.Itoa(domain))
	params.Set("selection", string(selection))

	c.logger.Info("querying product finder", "keyword", keyword, "domain", domain, "per_page", perPage)

	body, status, err := c.doGet(ctx, "/query", params)
	if err != nil {
		return nil, fmt.Errorf("keepa: product finder: %w", err)
	}
	if status != http.StatusOK {
		c.logger.Error("product finder failed", "status", status, "body", truncate(body))
		return nil, fmt.Errorf("keepa: product finder: unexpected status %d", status)
	}

	var resp FinderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("keepa: decode product finder: %w", err)
	}

	if len(resp.ASINList) == 0 {
		return nil, ErrNoCandidates
	}

	asins := resp.ASINList
	if limit > 0 && len(asins) > limit {
		asins = asins[:limit]
	}

	c.logger.Info("product finder returned candidates",
		"total_results", resp.TotalResults,
		"returned", len(asins),
		"tokens_left", resp.TokensLeft,
	)

	return asins, nil
}

// Product fetches the product object for one ASIN on one marketplace.
// Any failure wraps ErrUnavailable; callers skip the pair and move on.
func (c *Client) Product(ctx context.Context, asin string, domain int) (*ProductResponse, error) {
	params := url.Values{}
	params.Set("domain", strconv.Itoa(domain))
	params.Set("asin", asin)

	body, status, err := c.doGet(ctx, "/product", params)
	if err != nil {
		c.logger.Error("error fetching product", "asin", asin, "domain", domain, "error", err)
		return nil, fmt.Errorf("%w: asin %s domain %d: %v", ErrUnavailable, asin, domain, err)
	}

	if status != http.StatusOK {
		c.logger.Error("error fetching product",
			"asin", asin,
			"domain", domain,
			"status", status,
			"body", truncate(body),
		)
		return nil, fmt.Errorf("%w: asin %s domain %d: status %d", ErrUnavailable, asin, domain, status)
	}

	var resp ProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("error decoding product", "asin", asin, "domain", domain, "error", err)
		return nil, fmt.Errorf("%w: asin %s domain %d: decode: %v", ErrUnavailable, asin, domain, err)
	}

	c.logger.Debug("fetched product", "asin", asin, "domain", domain, "tokens_left", resp.TokensLeft)

	return &resp, nil
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
