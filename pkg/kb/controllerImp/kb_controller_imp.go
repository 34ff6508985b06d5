package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cropdoc/entities"
	"cropdoc/pkg/kb/controller"
	"cropdoc/pkg/kb/service"
)

type KBCtrl struct{ s service.KBService }

func New(s service.KBService) controller.KBController { return &KBCtrl{s: s} }

type cropSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ScientificName string `json:"scientificName"`
	DiseaseCount   int    `json:"diseaseCount"`
}

func (h *KBCtrl) ListCrops(c echo.Context) error {
	crops := h.s.Crops()
	out := make([]cropSummary, 0, len(crops))
	for _, cr := range crops {
		out = append(out, cropSummary{ID: cr.ID, Name: cr.Name, ScientificName: cr.ScientificName, DiseaseCount: len(cr.Diseases)})
	}
	return c.JSON(http.StatusOK, map[string]any{"crops": out})
}

func (h *KBCtrl) CropDiseases(c echo.Context) error {
	cr, ok := h.s.Crop(c.Param("crop"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown crop"})
	}
	return c.JSON(http.StatusOK, map[string]any{"diseases": cr.Diseases})
}

func (h *KBCtrl) GetDisease(c echo.Context) error {
	d, ok := h.s.FindDiseaseByID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "disease not found"})
	}
	return c.JSON(http.StatusOK, map[string]*entities.DiseaseInfo{"disease": d})
}

// FindDisease resolves a loosely phrased disease name within one crop.
func (h *KBCtrl) FindDisease(c echo.Context) error {
	crop, name := c.QueryParam("crop"), c.QueryParam("name")
	if strings.TrimSpace(crop) == "" || strings.TrimSpace(name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "crop and name are required"})
	}
	d, ok := h.s.FindDiseaseByCropAndName(crop, name)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "disease not found"})
	}
	return c.JSON(http.StatusOK, map[string]*entities.DiseaseInfo{"disease": d})
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q required"})
	}
	hits := h.s.Search(q)
	if hits == nil {
		hits = []entities.DiseaseInfo{}
	}
	return c.JSON(http.StatusOK, map[string]any{"diseases": hits})
}
