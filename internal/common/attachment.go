package common

import (
	"net/http"

	"github.com/jo-hoe/gojournal/internal/backend/export"
	"github.com/labstack/echo/v4"
)

// SendAttachment streams an export artifact so the browser saves it as a file.
func SendAttachment(ctx echo.Context, artifact *export.Artifact) error {
	SetNoCache(ctx)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, artifact.ContentDisposition())
	return ctx.Blob(http.StatusOK, artifact.ContentType, artifact.Content)
}

// SetNoCache marks the response as never cacheable so the latest entries are always shown.
func SetNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}
