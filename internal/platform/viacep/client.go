package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

var (
	// ErrInvalidCEP is returned when the input does not carry exactly 8 digits.
	ErrInvalidCEP = errors.New("cep must have 8 digits")
	// ErrCEPNotFound is returned when ViaCEP does not know the postal code.
	ErrCEPNotFound = errors.New("cep not found")
	// ErrCircuitOpen signals the breaker is open after repeated 429 responses.
	ErrCircuitOpen = errors.New("viacep circuit open due to repeated rate limit errors")
)

// Lookup outcomes reported to Config.Observe.
const (
	OutcomeHit      = "cache_hit"
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cache stores resolved addresses keyed by the 8 digit CEP.
type Cache interface {
	Get(ctx context.Context, cep string) (model.Address, bool, error)
	Set(ctx context.Context, cep string, addr model.Address, ttl time.Duration) error
}

// Config defines settings for the ViaCEP client.
type Config struct {
	BaseURL    string
	Mock       bool
	MaxRetries int
	BreakerMax int
	Cache      Cache
	CacheTTL   time.Duration
	Observe    func(outcome string)

	// Cooldown is how long the breaker stays open before a trial request is let through.
	Cooldown     time.Duration
	// RetryBackoff is the base delay between attempts; attempt n waits n times this.
	RetryBackoff time.Duration
}

// Client wraps ViaCEP calls with retry, caching, and circuit breaker support.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	mock       bool
	cache      Cache
	cacheTTL   time.Duration
	observe    func(string)
	group      singleflight.Group

	maxRetries       int
	retryBackoff     time.Duration
	breakerThreshold int
	cooldown         time.Duration
	now              func() time.Time

	mu               sync.Mutex
	consecutiveLimit int
	openUntil        time.Time
}

// New creates a ViaCEP client.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://viacep.com.br/ws"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	breaker := cfg.BreakerMax
	if breaker <= 0 {
		breaker = 5
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	observe := cfg.Observe
	if observe == nil {
		observe = func(string) {}
	}

	return &Client{
		baseURL:          base,
		httpClient:       httpClient,
		mock:             cfg.Mock,
		cache:            cfg.Cache,
		cacheTTL:         ttl,
		observe:          observe,
		maxRetries:       maxRetries,
		retryBackoff:     backoff,
		breakerThreshold: breaker,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// Lookup resolves a CEP (masked or not) into an address.
func (c *Client) Lookup(ctx context.Context, cep string) (model.Address, error) {
	digits := util.OnlyDigits(cep)
	if len(digits) != 8 {
		c.observe(OutcomeInvalid)
		return model.Address{}, ErrInvalidCEP
	}

	if c.mock {
		c.observe(OutcomeFound)
		return model.Address{
			CEP:    util.MaskCEP(digits),
			Rua:    "Rua Exemplo",
			Bairro: "Centro",
			Cidade: "Campinas",
			Estado: "SP",
		}, nil
	}

	if c.cache != nil {
		if addr, ok, err := c.cache.Get(ctx, digits); err == nil && ok {
			c.observe(OutcomeHit)
			return addr, nil
		}
	}

	// The shared call outlives any single caller's cancellation.
	ch := c.group.DoChan(digits, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), digits)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		c.observe(OutcomeError)
		return model.Address{}, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		switch {
		case errors.Is(err, ErrCEPNotFound):
			c.observe(OutcomeNotFound)
		case errors.Is(err, ErrInvalidCEP):
			c.observe(OutcomeInvalid)
		default:
			c.observe(OutcomeError)
		}
		return model.Address{}, err
	}
	addr := v.(model.Address)
	c.observe(OutcomeFound)

	if c.cache != nil {
		_ = c.cache.Set(ctx, digits, addr, c.cacheTTL)
	}
	return addr, nil
}

// breakerOpen reports whether requests are short-circuited. Once the cooldown
// has passed the breaker is half-open: the next request goes through and a
// single 429 opens it again.
func (c *Client) breakerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutiveLimit >= c.breakerThreshold && c.now().Before(c.openUntil)
}

// recordLimit counts a 429 and reports whether the breaker is now open.
func (c *Client) recordLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveLimit++
	if c.consecutiveLimit < c.breakerThreshold {
		return false
	}
	c.openUntil = c.now().Add(c.cooldown)
	return true
}

func (c *Client) resetLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveLimit = 0
	c.openUntil = time.Time{}
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(attempt) * c.retryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, digits string) (model.Address, error) {
	if c.breakerOpen() {
		return model.Address{}, ErrCircuitOpen
	}

	endpoint := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.wait(ctx, attempt); err != nil {
			return model.Address{}, fmt.Errorf("request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return model.Address{}, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request: %w", err)
			if ctx.Err() != nil {
				return model.Address{}, lastErr
			}
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			c.resetLimit()
			return decodeViaCEPResponse(body)
		case resp.StatusCode == http.StatusBadRequest:
			return model.Address{}, ErrInvalidCEP
		case resp.StatusCode == http.StatusTooManyRequests:
			if c.recordLimit() {
				return model.Address{}, ErrCircuitOpen
			}
			lastErr = fmt.Errorf("viacep status %d", resp.StatusCode)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("viacep status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		default:
			return model.Address{}, fmt.Errorf("viacep status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return model.Address{}, fmt.Errorf("viacep lookup failed after retries: %w", lastErr)
}

func decodeViaCEPResponse(body []byte) (model.Address, error) {
	var payload viaCEPResponse
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err != nil {
		return model.Address{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.notFound() {
		return model.Address{}, ErrCEPNotFound
	}
	return util.CleanAddress(model.Address{
		CEP:         payload.CEP,
		Rua:         payload.Logradouro,
		Complemento: payload.Complemento,
		Bairro:      payload.Bairro,
		Cidade:      payload.Localidade,
		Estado:      payload.UF,
	}), nil
}

type viaCEPResponse struct {
	CEP         string      `json:"cep"`
	Logradouro  string      `json:"logradouro"`
	Complemento string      `json:"complemento"`
	Bairro      string      `json:"bairro"`
	Localidade  string      `json:"localidade"`
	UF          string      `json:"uf"`
	Erro        interface{} `json:"erro"`
}

// notFound handles both `"erro": true` and the newer `"erro": "true"`.
func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
