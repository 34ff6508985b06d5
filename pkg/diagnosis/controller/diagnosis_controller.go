package controller

import "github.com/labstack/echo/v4"

type DiagnosisController interface {
	Analyze(c echo.Context) error
	History(c echo.Context) error
	DeleteHistory(c echo.Context) error
	ExportHistory(c echo.Context) error
}
