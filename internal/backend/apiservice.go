package backend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/jo-hoe/gojournal/internal/backend/export"
	"github.com/jo-hoe/gojournal/internal/common"
	"github.com/jo-hoe/gojournal/internal/core"

	"github.com/labstack/echo/v4"
)

type APIService struct {
	coreService *core.CoreService
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})

	e.GET("/api/entries", s.listEntriesHandler)
	e.POST("/api/entries", s.createEntryHandler)
	e.GET("/api/export/json", s.exportJSONHandler)
	e.GET("/api/export/docx", s.exportDocumentHandler)
}

func (s *APIService) listEntriesHandler(ctx echo.Context) error {
	common.SetNoCache(ctx)
	return ctx.JSON(http.StatusOK, s.coreService.Entries())
}

func (s *APIService) createEntryHandler(ctx echo.Context) error {
	var request core.SaveEntryRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return err
	}

	entry, err := s.coreService.SaveEntry(ctx.Request().Context(), request.Text)
	if err != nil {
		return failure(ctx, "createEntryHandler", "failed to save entry", err)
	}

	return ctx.JSON(http.StatusCreated, entry)
}

func (s *APIService) exportJSONHandler(ctx echo.Context) error {
	artifact, err := s.coreService.ExportJSON()
	if err != nil {
		return failure(ctx, "exportJSONHandler", "failed to export entries", err)
	}
	return common.SendAttachment(ctx, artifact)
}

func (s *APIService) exportDocumentHandler(ctx echo.Context) error {
	artifact, err := s.coreService.ExportDocument()
	if err != nil {
		return failure(ctx, "exportDocumentHandler", "failed to export entries", err)
	}
	return common.SendAttachment(ctx, artifact)
}

func failure(ctx echo.Context, handler, message string, err error) error {
	status := StatusForError(err)
	slog.Error(handler+": "+message, "status", status, "error", err)
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		// these name the offending content, which helps the user fix it
		message = err.Error()
	}
	return ctx.JSON(status, errorResponse{Error: message})
}

// StatusForError maps journal errors onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, export.ErrExportPackaging):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
