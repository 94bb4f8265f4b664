package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	portssvc "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/services"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/middleware"
)

// tituloHandler handles HTTP requests for treasury-bond records.
type tituloHandler struct {
	tituloService portssvc.TituloSvcFacade
}

func newTituloHandler(ts portssvc.TituloSvcFacade) *tituloHandler {
	return &tituloHandler{tituloService: ts}
}

// RegisterTituloRoutes registers the /titulo_tesouro resource.
//
// Gin allows a single wildcard name per segment position within a method
// tree, so the one-segment GET route reuses the :action name even though it
// carries the record id there.
func RegisterTituloRoutes(r *gin.Engine, tituloService portssvc.TituloSvcFacade) {
	h := newTituloHandler(tituloService)

	titulos := r.Group("/titulo_tesouro")
	{
		titulos.GET("/comparar", h.compareTitulos)
		titulos.GET("/:action", h.getHistory)
		titulos.GET("/:action/:titulo_id", h.getHistoryByAction)
		titulos.POST("", h.createTitulo)
		titulos.PUT("/:titulo_id", h.updateTitulo)
		titulos.DELETE("/:titulo_id", h.deleteTitulo)
	}
}

// createTitulo godoc
// @Summary Create a treasury-bond record
// @Description Validates and stores one sale/redemption record
// @Tags titulo_tesouro
// @Accept json
// @Produce json
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /titulo_tesouro [post]
func (h *tituloHandler) createTitulo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, logger, apperrors.NewAppError(http.StatusInternalServerError, "Internal server error.", err))
		return
	}

	created, err := h.tituloService.CreateTitulo(c.Request.Context(), body)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Titulo created",
		slog.Int64("titulo_id", created.ID),
		slog.String("category", created.Category),
		slog.String("action", created.Action))
	respondSuccess(c, http.StatusCreated, created)
}

// updateTitulo godoc
// @Summary Partially update a treasury-bond record
// @Description Updates any subset of month, year, action and amount; the category is immutable
// @Tags titulo_tesouro
// @Accept json
// @Produce json
// @Param titulo_id path int true "Record id"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /titulo_tesouro/{titulo_id} [put]
func (h *tituloHandler) updateTitulo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, logger, apperrors.NewAppError(http.StatusInternalServerError, "Internal server error.", err))
		return
	}

	updated, err := h.tituloService.UpdateTitulo(c.Request.Context(), c.Param("titulo_id"), body)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Titulo updated", slog.String("titulo_id", c.Param("titulo_id")))
	respondSuccess(c, http.StatusOK, updated)
}

// deleteTitulo godoc
// @Summary Delete a treasury-bond record
// @Tags titulo_tesouro
// @Produce json
// @Param titulo_id path int true "Record id"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /titulo_tesouro/{titulo_id} [delete]
func (h *tituloHandler) deleteTitulo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := h.tituloService.DeleteTitulo(c.Request.Context(), c.Param("titulo_id")); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Titulo deleted", slog.String("titulo_id", c.Param("titulo_id")))
	respondSuccess(c, http.StatusOK, "Deleted.")
}

// getHistory godoc
// @Summary Read one record's history
// @Description Time-series of the record's (category, action) pair, optionally filtered by data_inicio ("YYYY-mm")
// @Tags titulo_tesouro
// @Produce json
// @Param id path int true "Record id"
// @Param data_inicio query string false "Start month, YYYY-mm"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /titulo_tesouro/{id} [get]
func (h *tituloHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	// Single-segment GET: the :action wildcard carries the record id.
	idParam := c.Param("action")
	dataInicio, hasDataInicio := c.GetQuery("data_inicio")

	history, err := h.tituloService.GetHistory(c.Request.Context(), idParam, dataInicio, hasDataInicio)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, history)
}

// getHistoryByAction godoc
// @Summary Read one record's history scoped to an action
// @Tags titulo_tesouro
// @Produce json
// @Param action path string true "venda or resgate"
// @Param id path int true "Record id"
// @Param data_inicio query string false "Start month, YYYY-mm"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /titulo_tesouro/{action}/{id} [get]
func (h *tituloHandler) getHistoryByAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	dataInicio, hasDataInicio := c.GetQuery("data_inicio")

	history, err := h.tituloService.GetHistoryByAction(c.Request.Context(),
		c.Param("action"), c.Param("titulo_id"), dataInicio, hasDataInicio)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, history)
}

// compareTitulos godoc
// @Summary Compare several records side by side
// @Description ids is passed as a repeated query parameter; data_inicio filters every history
// @Tags titulo_tesouro
// @Produce json
// @Param ids query []int true "Record ids" collectionFormat(multi)
// @Param data_inicio query string false "Start month, YYYY-mm"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /titulo_tesouro/comparar [get]
func (h *tituloHandler) compareTitulos(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ids, idsPresent := c.GetQueryArray("ids")
	dataInicio, hasDataInicio := c.GetQuery("data_inicio")

	histories, err := h.tituloService.CompareTitulos(c.Request.Context(), ids, idsPresent, dataInicio, hasDataInicio)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, histories)
}
