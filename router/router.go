package router

import (
	"github.com/labstack/echo/v4"

	authCtrl "cropdoc/pkg/auth/controller"
	chatCtrl "cropdoc/pkg/chat/controller"
	diagCtrl "cropdoc/pkg/diagnosis/controller"
	healthCtrl "cropdoc/pkg/health/controller"
	kbCtrl "cropdoc/pkg/kb/controller"
	"cropdoc/pkg/middleware"
)

// New registers every route. requireAuth=false lets anonymous callers act
// as the development user.
func New(
	e *echo.Echo,
	requireAuth bool,
	diagnosis diagCtrl.DiagnosisController,
	chat chatCtrl.ChatController,
	kb kbCtrl.KBController,
	health healthCtrl.HealthController,
	auth authCtrl.AuthController,
) *echo.Echo {
	e.GET("/health", health.Health)

	api := e.Group("/api", middleware.Identity(requireAuth))
	api.POST("/analyze-crop", diagnosis.Analyze)
	api.POST("/chat", chat.Chat)
	api.GET("/me", auth.WhoAmI)

	// Paths the hosted web client already calls.
	fn := e.Group("/functions/v1", middleware.Identity(requireAuth))
	fn.POST("/analyze-crop", diagnosis.Analyze)
	fn.POST("/chat", chat.Chat)

	// KB endpoints
	api.GET("/crops", kb.ListCrops)
	api.GET("/crops/:crop/diseases", kb.CropDiseases)
	api.GET("/diseases", kb.FindDisease)
	api.GET("/diseases/search", kb.Search)
	api.GET("/diseases/:id", kb.GetDisease)

	h := api.Group("/history", middleware.RequireUser())
	h.GET("", diagnosis.History)
	h.GET("/export", diagnosis.ExportHistory)
	h.DELETE("/:id", diagnosis.DeleteHistory)
	return e
}
