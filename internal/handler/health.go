package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe for load balancers and monitoring systems. It
// answers "ok" with 200 without touching the database.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
