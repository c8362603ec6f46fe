package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/api/middleware"
	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// ctxUser returns the user the Session middleware attached and fails fast
// before any service call when there is none.
func ctxUser(c echo.Context) (domain.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok || u.Email == "" {
		return domain.User{}, echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}
	return u, nil
}

// bind decodes and validates a request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// queryInt reads a positive integer query parameter; anything else is def.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// pathIndex reads a list position from the path.
func pathIndex(c echo.Context, name string) (int, error) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return i, nil
}

// formFile reads the multipart field "file" into an upload.
func formFile(c echo.Context) (ports.UploadFile, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return ports.UploadFile{}, nil, echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return ports.UploadFile{}, nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	return ports.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Data:        f,
	}, func() { _ = f.Close() }, nil
}
