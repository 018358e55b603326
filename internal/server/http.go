package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer builds the liveness/metrics server. An external uptime
// monitor polls GET / to keep the deployment awake.
func NewHTTPServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Guard bot is running.")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// StartHTTPServer runs the liveness server in the background; it must keep
// serving regardless of per-message failures elsewhere.
func StartHTTPServer(e *echo.Echo, port int) {
	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			fmt.Printf("[HTTP] Server stopped: %v\n", err)
		}
	}()
}
