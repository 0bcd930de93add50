package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pharmacy-site/pkg/errs"
)

const serviceName = "backend"

// Client defines the interface for inserting rows through Supabase's REST API
type Client interface {
	Insert(ctx context.Context, table string, row map[string]any) (string, error)
}

type clientImpl struct {
	http    *resty.Client
	missing []string
	logger  *zap.Logger
}

// NewClient creates a new Supabase client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation")

	var missing []string
	if baseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if apiKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}

	return &clientImpl{
		http:    client,
		missing: missing,
		logger:  logger.Named("supabase"),
	}
}

// Insert creates one row and returns its id.
func (c *clientImpl) Insert(ctx context.Context, table string, row map[string]any) (string, error) {
	if len(c.missing) > 0 {
		return "", &errs.ConfigurationError{Service: serviceName, Missing: c.missing}
	}

	var created []struct {
		ID any `json:"id"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(row).
		SetResult(&created).
		Post("/rest/v1/" + url.PathEscape(table))
	if err != nil {
		return "", &errs.TransportError{Service: serviceName, Err: err}
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		c.logger.Error("insert rejected",
			zap.String("table", table),
			zap.Int("status", resp.StatusCode()),
		)
		return "", fmt.Errorf("error from Supabase API: status %d", resp.StatusCode())
	}

	if len(created) == 0 || created[0].ID == nil {
		return "", fmt.Errorf("error parsing response: no id returned for %s", table)
	}

	id := fmt.Sprint(created[0].ID)
	c.logger.Info("created record", zap.String("table", table), zap.String("id", id))
	return id, nil
}
