package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Skufu/refractplan/internal/intake"
	"github.com/Skufu/refractplan/internal/metrics"
	"github.com/Skufu/refractplan/internal/model"
	"github.com/Skufu/refractplan/internal/planner"
)

type caseHandler struct {
	planner *planner.Planner
	logger  *zap.Logger
}

func (h *caseHandler) evaluate(c *gin.Context) {
	var in model.CaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			validationFailed(c, planner.FieldErrors(err))
			return
		}
		badPayload(c, err)
		return
	}

	eval, err := h.planner.Evaluation(in)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			validationFailed(c, verr.Fields)
			return
		}
		h.logger.Error("evaluate case", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation failed"})
		return
	}

	metrics.ObserveCase(eval.Result)
	c.JSON(http.StatusOK, eval)
}

func (h *caseHandler) batch(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badPayload(c, err)
		return
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		badPayload(c, err)
		return
	}

	records := make([]intake.Record, len(rows))
	for i, row := range rows {
		records[i] = intake.FromJSON(i+1, row)
	}
	h.runBatch(c, intake.Items(records))
}

func (h *caseHandler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	if _, err := intake.DetectFormat(fh.Filename); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("open upload", zap.String("filename", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	records, err := intake.Read(fh.Filename, f, c.Query("sheet"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Debug("upload parsed", zap.String("filename", fh.Filename), zap.Int("rows", len(records)))
	h.runBatch(c, intake.Items(records))
}

func (h *caseHandler) runBatch(c *gin.Context, items []model.BatchItem) {
	res, err := h.planner.EvaluateBatch(c.Request.Context(), items)
	if err != nil {
		h.logger.Warn("batch aborted", zap.Int("rows", len(items)), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch aborted"})
		return
	}

	metrics.ObserveBatch(res)
	c.JSON(http.StatusOK, res)
}

func validationFailed(c *gin.Context, fields []model.FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation_failed",
		"details": fields,
	})
}

func badPayload(c *gin.Context, err error) {
	if tooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
