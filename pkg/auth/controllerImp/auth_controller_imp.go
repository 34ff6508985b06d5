package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cropdoc/pkg/auth/controller"
	"cropdoc/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// WhoAmI reports the identity the server resolved for this request.
// anonymous is true when the id is the development stand-in.
func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid := middleware.UserID(c)
	return c.JSON(http.StatusOK, map[string]any{
		"uid":       uid,
		"anonymous": uid == "" || uid == middleware.DevUserID,
	})
}
