package frontend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/jo-hoe/gojournal/internal/common"
	"github.com/jo-hoe/gojournal/internal/core"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName = "index.html"
	mimePNG      = "image/png"
	mimeSVG      = "image/svg+xml"
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
	icons       *iconRenderer
}

type indexPage struct {
	StorageType    string
	MaxEntryLength int
	Entries        []*database.Entry
}

type saveResult struct {
	Entry   *database.Entry
	Entries []*database.Entry
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	svg, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		// embedded at build time, cannot be missing
		panic(err)
	}
	return &FrontendService{
		coreService: coreService,
		config:      config,
		icons:       newIconRenderer(svg),
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate()

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	e.GET("/"+MainPageName, service.indexHandler)

	e.GET("/htmx/entries", service.htmxListEntriesHandler)
	e.POST("/htmx/entries", service.htmxSaveEntryHandler)

	e.GET("/icon.svg", service.iconHandler)
	e.GET("/icon.png", service.iconPNGHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, MainPageName, indexPage{
		StorageType:    service.config.Database.Type,
		MaxEntryLength: core.MaxEntryLength,
		Entries:        service.coreService.Entries(),
	})
}

func (service *FrontendService) htmxListEntriesHandler(ctx echo.Context) error {
	// Prevent caching so the latest entries are always shown
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "entry-list", service.coreService.Entries())
}

func (service *FrontendService) htmxSaveEntryHandler(ctx echo.Context) error {
	var request core.SaveEntryRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		slog.Warn("htmxSaveEntryHandler: invalid entry",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, invalidEntryMessage(err))
	}

	entry, err := service.coreService.SaveEntry(ctx.Request().Context(), request.Text)
	if errors.Is(err, core.ErrInvalidEntry) {
		slog.Warn("htmxSaveEntryHandler: invalid entry",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, invalidEntryMessage(err))
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrStorageUnavailable) {
			status = http.StatusServiceUnavailable
		}
		slog.Error("htmxSaveEntryHandler: failed to save entry",
			"status", status, "error", err)
		// the form is only reset on success, so the draft survives for a retry
		return ctx.String(status, "Saving failed, your entry was kept. Please try again.")
	}

	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "save-result", saveResult{
		Entry:   entry,
		Entries: service.coreService.Entries(),
	})
}

// invalidEntryMessage tells the user what to change about a rejected draft.
func invalidEntryMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fieldError := range fieldErrors {
			if fieldError.Tag() == "max" {
				return "The entry is too long to be saved."
			}
		}
	}
	switch {
	case errors.Is(err, core.ErrEntryTooLong):
		return "The entry is too long to be saved."
	case errors.Is(err, core.ErrInvalidEntry):
		return "The entry contains characters that cannot be saved. Please remove them and try again."
	}
	return "The entry could not be read. Please try again."
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	setLongCache(ctx)
	return ctx.Blob(http.StatusOK, mimeSVG, data)
}

func (service *FrontendService) iconPNGHandler(ctx echo.Context) error {
	size := defaultIconSize
	if raw := ctx.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ctx.String(http.StatusBadRequest, "Invalid icon size")
		}
		size = parsed
	}

	data, err := service.icons.PNG(size)
	if err != nil {
		slog.Warn("iconPNGHandler: icon not available",
			"status", http.StatusBadRequest, "size", size, "error", err)
		return ctx.String(http.StatusBadRequest, "Icon not available in this size")
	}
	setLongCache(ctx)
	return ctx.Blob(http.StatusOK, mimePNG, data)
}

func setLongCache(ctx echo.Context) {
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
}
