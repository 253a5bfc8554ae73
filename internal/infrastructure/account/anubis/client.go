package anubis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/tournament-engine/internal/domain/actor"
	basecache "github.com/riskibarqy/tournament-engine/internal/platform/cache"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
	"github.com/riskibarqy/tournament-engine/internal/platform/resilience"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

var errAnubisTransient = crerr.New("anubis transient failure")

const maxCachedPrincipals = 10000

type Config struct {
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves bearer tokens into principals through Anubis token introspection.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	cache         *basecache.Store[actor.Principal]
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var cache *basecache.Store[actor.Principal]
	if cfg.CacheTTL > 0 {
		cache = basecache.NewStore[actor.Principal](cfg.CacheTTL).WithMaxEntries(maxCachedPrincipals)
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		cache:         cache,
		breaker:       resilience.New(cfg.CircuitBreaker),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (actor.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return actor.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.cache == nil {
		return c.verify(ctx, token)
	}
	return c.cache.GetOrLoad(ctx, principalCacheKey(token), func(ctx context.Context) (actor.Principal, error) {
		return c.verify(ctx, token)
	})
}

func (c *Client) verify(ctx context.Context, token string) (actor.Principal, error) {
	var principal actor.Principal
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var callErr error
		principal, callErr = c.introspect(ctx, token)
		return callErr
	})
	switch {
	case err == nil:
		return principal, nil
	case crerr.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", string(c.breaker.State()))
		return actor.Principal{}, fmt.Errorf("%w: identity provider circuit open", usecase.ErrDependencyUnavailable)
	case crerr.Is(err, errAnubisTransient):
		return actor.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	default:
		return actor.Principal{}, err
	}
}

func (c *Client) introspect(ctx context.Context, token string) (actor.Principal, error) {
	encoded, err := jsoniter.Marshal(introspectRequest{Token: token})
	if err != nil {
		return actor.Principal{}, resilience.Permanent(crerr.Wrap(err, "marshal introspect request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return actor.Principal{}, resilience.Permanent(crerr.Wrap(err, "create introspect request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return actor.Principal{}, crerr.Mark(crerr.Wrap(err, "request introspection to anubis"), errAnubisTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return actor.Principal{}, crerr.Mark(crerr.Wrap(err, "read introspect response"), errAnubisTransient)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return actor.Principal{}, resilience.Permanent(fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized))
	case resp.StatusCode == http.StatusForbidden:
		// A 403 means our admin key was rejected, not the caller's token.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return actor.Principal{}, fmt.Errorf("%w: identity provider rejected credentials", usecase.ErrDependencyUnavailable)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return actor.Principal{}, crerr.Mark(crerr.Newf("anubis introspection failed with status %d", resp.StatusCode), errAnubisTransient)
	}

	var decoded introspectResponse
	if err := jsoniter.Unmarshal(body, &decoded); err != nil {
		return actor.Principal{}, crerr.Mark(crerr.Wrap(err, "unmarshal introspect response"), errAnubisTransient)
	}
	if !decoded.Active {
		return actor.Principal{}, resilience.Permanent(fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized))
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return actor.Principal{}, crerr.Mark(crerr.New("invalid introspect response: user_id is empty"), errAnubisTransient)
	}

	return actor.Principal{
		UserID:        decoded.UserID,
		Email:         decoded.Email,
		Role:          roleFrom(decoded.Roles),
		TournamentIDs: decoded.TournamentIDs,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active        bool     `json:"active"`
	UserID        string   `json:"user_id"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	TournamentIDs []string `json:"tournament_ids"`
}

func roleFrom(roles []string) actor.Role {
	switch {
	case slices.Contains(roles, string(actor.RoleAdmin)):
		return actor.RoleAdmin
	case slices.Contains(roles, string(actor.RoleDirector)):
		return actor.RoleDirector
	default:
		return actor.RoleViewer
	}
}

func principalCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}

// buildURL joins the introspection path onto the base URL. An absolute path overrides the
// base entirely.
func buildURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
