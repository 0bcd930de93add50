package pharmacy

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

const serviceName = "pharmacy API"

// Client defines the interface for interacting with the pharmacy-management API
type Client interface {
	SubmitRefill(ctx context.Context, r models.RefillRequest) (*RefillResponse, error)
	SubmitTransfer(ctx context.Context, t models.TransferRequest) (*TransferResponse, error)
}

type clientImpl struct {
	http   *resty.Client
	cfg    config.PharmacyConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewClient creates a new pharmacy API client. now supplies the pharmacy's
// local time for request timestamps and transfer dates.
func NewClient(cfg config.PharmacyConfig, logger *zap.Logger, now func() time.Time) Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &clientImpl{
		http:   client,
		cfg:    cfg,
		logger: logger.Named("pharmacy"),
		now:    now,
	}
}

// SubmitRefill sends a refill request. A response counts as success only when
// every prescription number comes back "OK".
func (c *clientImpl) SubmitRefill(ctx context.Context, r models.RefillRequest) (*RefillResponse, error) {
	if missing := c.cfg.MissingForRefill(); len(missing) > 0 {
		return nil, &errs.ConfigurationError{Service: serviceName, Missing: missing}
	}

	payload, err := NewRefillPayload(c.cfg.PharmacyID, r, c.now())
	if err != nil {
		return nil, err
	}

	var out RefillResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.cfg.APIKey).
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		Post("/refills")
	if err != nil {
		c.logger.Warn("refill request failed", zap.Error(err))
		return nil, &errs.TransportError{Service: serviceName, Err: err}
	}

	// Only counts and vendor codes are logged; the payload identifies a patient.
	c.logger.Info("refill response",
		zap.Int("status", resp.StatusCode()),
		zap.String("error_code", out.ErrorCode),
		zap.Int("rx_count", len(payload.RxNumbers)),
		zap.Int("result_count", len(out.Results)),
	)

	if err := checkRefill(resp.StatusCode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func checkRefill(status int, out *RefillResponse) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices || out.ErrorCode != "" {
		return errs.NewVendorError(status, out.ErrorCode)
	}
	if len(out.Results) == 0 {
		return errs.NewVendorError(status, "")
	}

	var failures []errs.RxFailure
	for _, res := range out.Results {
		if res.Status != StatusOK {
			failures = append(failures, errs.RxFailure{
				RxNumber: res.RxNumber,
				Status:   res.Status,
				Reason:   res.Message,
			})
		}
	}
	if len(failures) > 0 {
		return &errs.PartialFailure{Failures: failures}
	}
	return nil
}

// SubmitTransfer sends a transfer request. HTTP 200 is not enough: the payload
// must be valid, transferred, and carry no error code.
func (c *clientImpl) SubmitTransfer(ctx context.Context, t models.TransferRequest) (*TransferResponse, error) {
	if missing := c.cfg.MissingForTransfer(); len(missing) > 0 {
		return nil, &errs.ConfigurationError{Service: serviceName, Missing: missing}
	}

	payload, err := NewTransferPayload(c.cfg.PharmacyID, t, c.now())
	if err != nil {
		return nil, err
	}

	var out TransferResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.Username, c.cfg.Password).
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		Post("/transfers")
	if err != nil {
		c.logger.Warn("transfer request failed", zap.Error(err))
		return nil, &errs.TransportError{Service: serviceName, Err: err}
	}

	c.logger.Info("transfer response",
		zap.Int("status", resp.StatusCode()),
		zap.String("error_code", out.ErrorCode),
		zap.Bool("is_valid", out.IsValid),
		zap.Bool("transferred", out.Transferred),
	)

	if err := checkTransfer(resp.StatusCode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func checkTransfer(status int, out *TransferResponse) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices ||
		out.ErrorCode != "" || !out.IsValid || !out.Transferred {
		return errs.NewVendorError(status, out.ErrorCode)
	}
	return nil
}
