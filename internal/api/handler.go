package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"busstation-backend/internal/denorm"
	"busstation-backend/internal/dispatch"
	"busstation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	workflow *dispatch.Workflow
	syncer   *denorm.Syncer
	webpush  *webpush.Options
	log      logrus.FieldLogger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, workflow *dispatch.Workflow, syncer *denorm.Syncer, webpushOptions *webpush.Options, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:    s,
		workflow: workflow,
		syncer:   syncer,
		webpush:  webpushOptions,
		log:      log.WithField("module", "api"),
	}
}

// writeError maps workflow and store errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validationErr *dispatch.ValidationError
		transitionErr *dispatch.TransitionError
		notFoundErr   *dispatch.NotFoundError
		conflictErr   *dispatch.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &notFoundErr), store.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error(), "currentStatus": transitionErr.From})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error()})
	default:
		c.Error(err)
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the body into req. An empty body leaves req zero-valued.
func bindJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}
