package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/models"
)

const NoResults = "No specific results found for this query."

const maxRelatedTopics = 3

var log = internal.GetLogger()

// ErrTransient marks upstream failures worth retrying: network errors, 429s
// and 5xx responses.
var ErrTransient = errors.New("transient web search failure")

var _ models.WebSearcher = &Client{}

// Client answers free-text questions from the DuckDuckGo instant answer API,
// falling back to CoinGecko spot prices for price questions.
type Client struct {
	cfg         config.WebSearchConfig
	httpClient  *http.Client
	retryPolicy retrypolicy.RetryPolicy[any]
}

func NewClient(cfg config.WebSearchConfig) *Client {
	return &Client{
		cfg:         cfg,
		httpClient:  internal.NewTracedHTTPClient(nil),
		retryPolicy: buildRetryPolicy(),
	}
}

func buildRetryPolicy() retrypolicy.RetryPolicy[any] {
	return retrypolicy.Builder[any]().
		HandleErrors(ErrTransient).
		WithBackoff(100*time.Millisecond, time.Second).
		WithMaxRetries(2).
		Build()
}

type duckDuckGoResponse struct {
	Answer        any    `json:"Answer"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

type coinGeckoPrice struct {
	USD          *float64 `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

// Search never fails. It returns "" when the primary lookup errors and
// NoResults when neither source had anything to say.
func (c *Client) Search(ctx context.Context, query string) string {
	if c.cfg.Disabled {
		return ""
	}

	results, err := c.searchDuckDuckGo(ctx, query)
	if err != nil {
		log.Errorf("web search failed: %v", err)
		return ""
	}

	if strings.TrimSpace(results) == "" && c.wantsPrices(query) {
		prices, err := c.fetchPrices(ctx)
		if err != nil {
			log.Warnf("price fetch failed: %v", err)
		} else {
			results = prices
		}
	}

	if results == "" {
		return NoResults
	}
	return results
}

func (c *Client) wantsPrices(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range c.cfg.FallbackKeywords {
		if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (c *Client) searchDuckDuckGo(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	var data duckDuckGoResponse
	if err := c.getJSON(ctx, c.cfg.DuckDuckGoURL, params, c.cfg.Timeout, &data); err != nil {
		return "", err
	}

	var sb strings.Builder
	if answer := answerText(data.Answer); answer != "" {
		fmt.Fprintf(&sb, "Answer: %s\n", answer)
	}
	if data.AbstractText != "" {
		sb.WriteString(data.AbstractText + "\n")
		if data.AbstractURL != "" {
			fmt.Fprintf(&sb, "Source: %s\n", data.AbstractURL)
		}
	}
	if len(data.RelatedTopics) > 0 {
		sb.WriteString("\nRelated info:\n")
		for i, topic := range data.RelatedTopics {
			if i == maxRelatedTopics {
				break
			}
			// numbering follows the topic position, even when one is skipped
			if topic.Text != "" {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, topic.Text)
			}
		}
	}

	return sb.String(), nil
}

// answerText handles DuckDuckGo returning Answer as either a string or an
// object for calculator-style answers.
func answerText(answer any) string {
	switch a := answer.(type) {
	case string:
		return a
	case map[string]any:
		if s, ok := a["result"].(string); ok {
			return s
		}
	}
	return ""
}

func (c *Client) fetchPrices(ctx context.Context) (string, error) {
	ids := make([]string, 0, len(c.cfg.PriceAssets))
	for _, asset := range c.cfg.PriceAssets {
		ids = append(ids, asset.ID)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	var prices map[string]coinGeckoPrice
	if err := c.getJSON(ctx, c.cfg.CoinGeckoURL, params, c.cfg.PriceTimeout, &prices); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Current PulseChain ecosystem prices:\n")
	for _, asset := range c.cfg.PriceAssets {
		p, ok := prices[asset.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s: $%s (%s%%)\n", asset.Symbol, formatFloat(p.USD), formatChange(p.USD24hChange))
	}
	return sb.String(), nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatChange(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// getJSON issues a GET bounded by timeout, retrying transient failures within
// that budget, and decodes the body into out.
func (c *Client) getJSON(
	ctx context.Context,
	endpoint string,
	params url.Values,
	timeout time.Duration,
	out any,
) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	_, err = failsafe.Get(func() (any, error) {
		return nil, c.doGet(ctx, u.String(), out)
	}, c.retryPolicy)
	return err
}

func (c *Client) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", ErrTransient, req.URL.Host, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s returned %d", req.URL.Host, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Host, err)
	}
	return nil
}
