package api

import (
	"errors"
	"net/http"

	models "PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	"PopPredict/internal/service/metrics"
	"PopPredict/internal/service/ratelimit"
	"PopPredict/internal/usecase"
	xhttp "PopPredict/pkg/http"
	xlogger "PopPredict/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Per-client budget for prediction endpoints. Predictions fan out to the
// scorer, so they are throttled harder than the read-only endpoints.
const (
	predictBurst  = 10
	predictRefill = 5 // tokens per second
)

// PredictionsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type PredictionsEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.PredictionService
	catalog domrepo.Catalog
	rl      *ratelimit.Limiter
}

func NewPredictionsEchoHandler(logger *xlogger.Logger, svc *usecase.PredictionService, catalog domrepo.Catalog) *PredictionsEchoHandler {
	metrics.Register()
	return &PredictionsEchoHandler{
		logger:  logger,
		svc:     svc,
		catalog: catalog,
		rl:      ratelimit.New(),
	}
}

func (h *PredictionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.POST("/predict/batch", h.PredictBatch)
	g.GET("/history/:id", h.History)
	g.GET("/status", h.Status)
	g.GET("/items/:id", h.Item)
}

func (h *PredictionsEchoHandler) Predict(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":predict", predictBurst, predictRefill) {
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Predict(c.Request().Context(), *req)
	if err != nil {
		return h.usecaseError(c, "predict", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) PredictBatch(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":predict_batch", predictBurst, predictRefill) {
		h.logger.Warn("predict_batch rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.BatchPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.svc.PredictBatch(c.Request().Context(), *req)
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.History(c.Request().Context(), req.ItemID, req.Days)
	if err != nil {
		return h.usecaseError(c, "history", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Status(c.Request().Context()))
}

func (h *PredictionsEchoHandler) Item(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "item id required")
	}
	item, err := h.catalog.GetItem(c.Request().Context(), id)
	if err != nil {
		return h.usecaseError(c, "item", err)
	}
	return xhttp.SuccessResponse(c, item)
}

func (h *PredictionsEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// usecaseError maps domain sentinels onto HTTP statuses; everything else is a 500.
func (h *PredictionsEchoHandler) usecaseError(c echo.Context, endpoint string, err error) error {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("item not found").WithError(err))
	case errors.Is(err, models.ErrNoHistory):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no sales history for item").WithError(err))
	case errors.Is(err, models.ErrScorerUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("scoring service unavailable").WithError(err))
	case errors.Is(err, models.ErrDataIntegrity):
		return xhttp.AppErrorResponse(c, xhttp.DataIntegrityError("inconsistent stored data").WithError(err))
	default:
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("internal error").WithError(err))
	}
}
