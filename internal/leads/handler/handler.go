package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadqual_backend/internal/conversion"
	"leadqual_backend/internal/leads/service"
	"leadqual_backend/internal/leads/transport"
	"leadqual_backend/platform/httpkit"
	"leadqual_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Upsert)
	rg.GET("/:key/score", h.Score)
	rg.POST("/:key/convert", h.Convert)
	rg.POST("/:key/events", h.LogEvent)
}

// RegisterPreviewRoute mounts the stateless scoring endpoint outside the
// /leads group.
func (h *Handler) RegisterPreviewRoute(rg *gin.RouterGroup) {
	rg.POST("/score/preview", h.Preview)
}

func (h *Handler) Upsert(c *gin.Context) {
	var req transport.UpsertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	key, err := h.svc.Upsert(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"leadKey": key})
}

func (h *Handler) Score(c *gin.Context) {
	key := c.Param("key")

	res, err := h.svc.Score(c.Request.Context(), key)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewScoreResponse(key, res))
}

func (h *Handler) Preview(c *gin.Context) {
	var req transport.PreviewScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, transport.NewScoreResponse("", h.svc.Preview(req)))
}

func (h *Handler) Convert(c *gin.Context) {
	key := c.Param("key")

	// The request body is optional; an empty body means a manual conversion.
	var req transport.ConvertLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	res, err := h.svc.Convert(c.Request.Context(), key, req.Trigger)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, conversionStatus(res.Outcome), transport.NewConversionResponse(res))
}

func (h *Handler) LogEvent(c *gin.Context) {
	key := c.Param("key")

	var req transport.LogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	res, err := h.svc.LogEvent(c.Request.Context(), key, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.LogEventResponse{
		LeadKey:    key,
		EventType:  req.EventType,
		Conversion: transport.NewConversionResponse(res),
	})
}

// conversionStatus maps conversion outcomes to HTTP statuses. Duplicate and
// repeat conversions are conflicts, not server errors.
func conversionStatus(outcome conversion.Outcome) int {
	switch outcome {
	case conversion.OutcomeDuplicateFound, conversion.OutcomeAlreadyConverted:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}
