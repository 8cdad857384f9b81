package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Index describes the API for a client hitting the base path.
func Index(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "message": "API is running",
        "version": "1.0.0",
        "endpoints": echo.Map{
            "auth":     "/api/v1/auth",
            "products": "/api/v1/products",
        },
    })
}
