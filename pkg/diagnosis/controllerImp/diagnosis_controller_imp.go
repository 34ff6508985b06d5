package controllerImp

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"cropdoc/pkg/apperror"
	"cropdoc/pkg/diagnosis/controller"
	"cropdoc/pkg/diagnosis/service"
	"cropdoc/pkg/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DiagnosisCtrl struct{ s service.DiagnosisService }

func New(s service.DiagnosisService) controller.DiagnosisController { return &DiagnosisCtrl{s: s} }

type analyzeReq struct {
	Image    string `json:"image"`
	CropType string `json:"cropType"`
}

func (h *DiagnosisCtrl) Analyze(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	res, err := h.s.Analyze(c.Request().Context(), service.AnalyzeInput{
		Image:    req.Image,
		CropType: req.CropType,
		UserID:   middleware.UserID(c),
	})
	if err != nil {
		return apperror.Respond(c, err, "Analysis failed. Please try again.")
	}
	return c.JSON(http.StatusOK, map[string]any{"result": res})
}

func (h *DiagnosisCtrl) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.s.History(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return apperror.Respond(c, err, "Could not load history")
	}
	return c.JSON(http.StatusOK, map[string]any{"history": list})
}

func (h *DiagnosisCtrl) DeleteHistory(c echo.Context) error {
	if err := h.s.DeleteHistory(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return apperror.Respond(c, err, "Could not delete diagnosis")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DiagnosisCtrl) ExportHistory(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.s.ExportHistory(c.Request().Context(), middleware.UserID(c), &buf); err != nil {
		return apperror.Respond(c, err, "Could not build export")
	}
	name := "diagnosis-history-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
