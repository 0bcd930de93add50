package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/forms"
)

const maxBodyBytes = 64 << 10

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	sessions *forms.Sessions
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(sessions *forms.Sessions, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		logger:   logger.Named("api"),
	}
}

// RegisterRoutes mounts every handler on r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.GET("/csrf", h.CSRFToken)
	api.POST("/forms/:form", h.HandleSubmit)
	api.POST("/forms/:form/sessions", h.OpenSession)
	api.GET("/forms/:form/sessions/:id", h.GetSession)
	api.PATCH("/forms/:form/sessions/:id", h.PatchSession)
	api.POST("/forms/:form/sessions/:id/submit", h.SubmitSession)
	api.DELETE("/forms/:form/sessions/:id", h.CloseSession)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// CSRFToken hands the site the token to echo in the X-CSRF-Token header.
// It is empty when CSRF protection is off.
func (h *Handlers) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"token": csrf.Token(c.Request)})
}

// HandleSubmit validates and submits a whole form in one request, without a
// session.
func (h *Handlers) HandleSubmit(c *gin.Context) {
	form, err := h.sessions.New(c.Param("form"))
	if err != nil {
		h.abort(c, err)
		return
	}
	if !h.apply(c, form) {
		return
	}
	view, err := form.Run(c.Request.Context())
	h.respond(c, view, err)
}

type sessionResponse struct {
	ID   string `json:"id"`
	View any    `json:"view"`
}

// OpenSession opens a modal for the form and returns its session id.
func (h *Handlers) OpenSession(c *gin.Context) {
	id, form, err := h.sessions.Open(c.Param("form"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{ID: id, View: form.Snapshot()})
}

// GetSession returns the current view of an open form.
func (h *Handlers) GetSession(c *gin.Context) {
	form, err := h.sessions.Get(c.Param("form"), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, form.Snapshot())
}

// PatchSession edits the fields present in the body and clears their errors.
func (h *Handlers) PatchSession(c *gin.Context) {
	form, err := h.sessions.Get(c.Param("form"), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	if !h.apply(c, form) {
		return
	}
	c.JSON(http.StatusOK, form.Snapshot())
}

// SubmitSession submits the values the session holds.
func (h *Handlers) SubmitSession(c *gin.Context) {
	form, err := h.sessions.Get(c.Param("form"), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	view, err := form.Run(c.Request.Context())
	h.respond(c, view, err)
}

// CloseSession closes the modal. The form resets after the close transition,
// or at once with ?dismiss=true.
func (h *Handlers) CloseSession(c *gin.Context) {
	kind, id := c.Param("form"), c.Param("id")
	var err error
	if c.Query("dismiss") == "true" {
		err = h.sessions.Dismiss(kind, id)
	} else {
		err = h.sessions.Close(kind, id)
	}
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) apply(c *gin.Context, form forms.Form) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request"})
		return false
	}
	if err := form.ApplyJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return false
	}
	return true
}

func (h *Handlers) respond(c *gin.Context, view any, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("unexpected submission failure", zap.String("form", c.Param("form")), zap.Error(err))
	}
	c.JSON(status, view)
}

func (h *Handlers) abort(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forms.ErrUnknownForm):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
	case errors.Is(err, forms.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "This form was closed. Please open it again."})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// StatusFor maps a submission outcome to the response status.
func StatusFor(err error) int {
	var (
		verr *errs.ValidationError
		ferr *errs.FieldError
		cerr *errs.ConfigurationError
		terr *errs.TransportError
		vend *errs.VendorError
		part *errs.PartialFailure
	)
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, forms.ErrSubmitInFlight), errors.Is(err, forms.ErrAlreadySubmitted), errors.Is(err, forms.ErrFormReset):
		return http.StatusConflict
	case errors.As(err, &verr), errors.As(err, &ferr), errors.As(err, &part):
		return http.StatusUnprocessableEntity
	case errors.As(err, &cerr):
		return http.StatusServiceUnavailable
	case errors.As(err, &terr):
		return http.StatusBadGateway
	case errors.As(err, &vend):
		if vend.Status >= 500 {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
