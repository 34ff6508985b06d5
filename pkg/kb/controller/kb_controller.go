package controller

import "github.com/labstack/echo/v4"

type KBController interface {
	ListCrops(c echo.Context) error
	CropDiseases(c echo.Context) error
	GetDisease(c echo.Context) error
	FindDisease(c echo.Context) error
	Search(c echo.Context) error
}
