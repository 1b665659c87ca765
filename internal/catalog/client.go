package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bks/internal"
	"bks/internal/config"
)

// Client fetches pricing components from the remote component feed. The
// feed is a plain JSON endpoint guarded by a bearer token; transient
// failures are retried with backoff and requests are rate limited.
type Client struct {
	cfg        config.Config
	httpClient *http.Client

	mu            sync.Mutex
	nextAllowedAt time.Time
}

type feedPayload struct {
	Components []feedComponent `json:"components"`
}

type feedComponent struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Unit      string      `json:"unit"`
	UnitPrice json.Number `json:"unit_price"`
	LaborMax  *float64    `json:"labor_max"`
	Active    bool        `json:"active_in_calculator"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
	}
}

// GetComponents fetches and decodes the full component feed.
func (c *Client) GetComponents(ctx context.Context) ([]internal.PricingComponent, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode component feed: %w", err)
	}

	out := make([]internal.PricingComponent, 0, len(payload.Components))
	for _, fc := range payload.Components {
		component, err := toComponent(fc)
		if err != nil {
			continue
		}
		out = append(out, component)
	}
	return out, nil
}

// Source adapts the client to the cache's Source signature.
func (c *Client) Source() Source {
	return c.GetComponents
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	if strings.TrimSpace(c.cfg.CatalogFeedURL) == "" {
		return nil, errors.New("missing CATALOG_FEED_URL")
	}

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.waitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.CatalogFeedURL, nil)
		if err != nil {
			return nil, err
		}
		if token := strings.TrimSpace(c.cfg.CatalogFeedToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("component feed status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("component feed error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("component feed request failed")
	}
	return nil, lastErr
}

// waitTurn spaces requests to at most CatalogRateLimitRPS per second.
func (c *Client) waitTurn() {
	rps := c.cfg.CatalogRateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	interval := time.Second / time.Duration(rps)

	c.mu.Lock()
	now := time.Now()
	scheduled := now
	if c.nextAllowedAt.After(now) {
		scheduled = c.nextAllowedAt
	}
	c.nextAllowedAt = scheduled.Add(interval)
	c.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toComponent(fc feedComponent) (internal.PricingComponent, error) {
	name := strings.TrimSpace(fc.Name)
	if name == "" {
		return internal.PricingComponent{}, errors.New("empty name")
	}
	if strings.TrimSpace(fc.ID) == "" {
		return internal.PricingComponent{}, errors.New("missing id")
	}

	price := decimal.Zero
	if fc.UnitPrice != "" {
		parsed, err := decimal.NewFromString(fc.UnitPrice.String())
		if err != nil {
			return internal.PricingComponent{}, fmt.Errorf("bad unit_price for %s: %w", name, err)
		}
		price = parsed
	}
	if price.IsNegative() {
		return internal.PricingComponent{}, fmt.Errorf("negative unit_price for %s", name)
	}

	return internal.PricingComponent{
		ID:        strings.TrimSpace(fc.ID),
		Name:      name,
		Unit:      strings.TrimSpace(fc.Unit),
		UnitPrice: price,
		LaborMax:  fc.LaborMax,
		Active:    fc.Active,
	}, nil
}
