package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// respondError writes the structured error body {message, error?}.  The
// raw error detail is only exposed outside production so deployments
// never leak driver internals to clients.
func respondError(c echo.Context, status int, message string, detail error, env string) error {
	body := echo.Map{"message": message}
	if detail != nil && env != "production" {
		body["error"] = detail.Error()
	}
	return c.JSON(status, body)
}

// internalError is the catch-all for unexpected store/crypto failures.
func internalError(c echo.Context, detail error, env string) error {
	return respondError(c, http.StatusInternalServerError, "Internal server error", detail, env)
}

// limitOffset reads ?limit= and ?offset= with the catalog defaults.
func limitOffset(c echo.Context) (limit, offset int) {
	limit, offset = 10, 0
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(c.QueryParam("offset")); err == nil && n >= 0 {
		offset = n
	}
	return limit, offset
}

// pathID parses the :id (or similar) path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
