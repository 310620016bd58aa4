package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/listing"
	"github.com/ewmrs/weather-render-api/internal/metrics"
	"github.com/ewmrs/weather-render-api/internal/pathsafe"
	"github.com/ewmrs/weather-render-api/internal/resolve"
	"github.com/ewmrs/weather-render-api/internal/timestamps"
)

var validate = validator.New()

// Handlers bundles the components the route layer serves.
type Handlers struct {
	Root     string
	Catalog  *catalog.Catalog
	Index    *timestamps.Index
	Resolver *resolve.Resolver
	Lister   *listing.Lister

	// Subdirs is the closed list of directories the aggregate view covers.
	Subdirs []string

	DefaultLimit int
	MaxLimit     int

	Log     zerolog.Logger
	Metrics *metrics.Metrics
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	v1 := app.Group("/api/v1")

	v1.Get("/products", h.listProducts)
	v1.Get("/products/:product/timestamps", h.listTimestamps)
	v1.Get("/products/:product/renders/:timestamp", h.streamRender)

	// Fixed name before the parameterized route, so "latest" never parses as
	// a timestamp.
	v1.Get("/surface/latest", h.streamSurfaceLatest)
	v1.Get("/surface/:timestamp", h.streamSurface)

	v1.Get("/files", h.listDirectories)
}

func (h *Handlers) listProducts(c *fiber.Ctx) error {
	products := h.Catalog.ListAvailable()
	h.Metrics.ObserveLookup("products", "ok")
	return c.JSON(fiber.Map{
		"products": products,
	})
}

func (h *Handlers) listTimestamps(c *fiber.Ctx) error {
	product := c.Params("product")

	// Unsafe names are client errors; safe but unmapped names are 404s.
	if err := pathsafe.ValidateSegment(h.Root, product); err != nil {
		h.Metrics.ObserveLookup("timestamps", "invalid")
		return fiber.NewError(fiber.StatusBadRequest, "invalid product name")
	}
	if _, ok := h.Catalog.PrefixFor(product); !ok {
		h.Metrics.ObserveLookup("timestamps", "not_found")
		return fiber.NewError(fiber.StatusNotFound, "unknown product")
	}

	ts, err := h.Index.List(product)
	if err != nil {
		return h.fail(c, "timestamps", err)
	}
	if ts == nil {
		ts = []string{}
	}

	h.Metrics.ObserveLookup("timestamps", "ok")
	return c.JSON(fiber.Map{
		"product":    product,
		"timestamps": ts,
	})
}

func (h *Handlers) streamRender(c *fiber.Ctx) error {
	path, err := h.Resolver.Render(c.Params("product"), c.Params("timestamp"))
	if err != nil {
		return h.fail(c, "render", err)
	}

	h.Metrics.ObserveLookup("render", "ok")
	return c.SendFile(path)
}

func (h *Handlers) streamSurface(c *fiber.Ctx) error {
	path, err := h.Resolver.Surface(c.Params("timestamp"))
	if err != nil {
		return h.fail(c, "surface", err)
	}

	h.Metrics.ObserveLookup("surface", "ok")
	return h.sendGeoJSON(c, path)
}

func (h *Handlers) streamSurfaceLatest(c *fiber.Ctx) error {
	path, err := h.Resolver.SurfaceLatest()
	if err != nil {
		return h.fail(c, "surface_latest", err)
	}

	h.Metrics.ObserveLookup("surface_latest", "ok")
	return h.sendGeoJSON(c, path)
}

func (h *Handlers) sendGeoJSON(c *fiber.Ctx, path string) error {
	if err := c.SendFile(path); err != nil {
		return err
	}
	// SendFile does not know the geojson extension.
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return nil
}

// listingQuery holds query parameters for the aggregate listing endpoint.
type listingQuery struct {
	Limit        int `validate:"required,min=1"`
	IncludeEmpty bool
}

func (h *Handlers) listDirectories(c *fiber.Ctx) error {
	req := listingQuery{
		Limit:        c.QueryInt("limit", h.DefaultLimit),
		IncludeEmpty: c.QueryBool("includeEmpty", true),
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Limit > h.MaxLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit exceeds maximum")
	}

	directories := make(map[string]interface{}, len(h.Subdirs))
	for _, name := range h.Subdirs {
		files, err := h.Lister.List(name, req.Limit)
		switch {
		case errors.Is(err, listing.ErrAbsent):
			if req.IncludeEmpty {
				directories[name] = fiber.Map{"missing": true}
			}
		case err != nil:
			return h.fail(c, "files", err)
		default:
			if len(files) == 0 && !req.IncludeEmpty {
				continue
			}
			directories[name] = fiber.Map{"files": files}
		}
	}

	h.Metrics.ObserveLookup("files", "ok")
	return c.JSON(fiber.Map{
		"limit":       req.Limit,
		"directories": directories,
	})
}

// fail maps component errors onto the HTTP taxonomy: validation failures are
// client errors, absence is routine 404, everything else is a generic 500
// with the cause logged but never echoed to the caller.
func (h *Handlers) fail(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, pathsafe.ErrEmptySegment),
		errors.Is(err, pathsafe.ErrUnsafeSegment),
		errors.Is(err, resolve.ErrBadTimestamp):
		h.Metrics.ObserveLookup(operation, "invalid")
		return fiber.NewError(fiber.StatusBadRequest, "invalid parameters")

	case errors.Is(err, resolve.ErrNotFound):
		h.Metrics.ObserveLookup(operation, "not_found")
		return fiber.NewError(fiber.StatusNotFound, "not found")

	default:
		h.Metrics.ObserveLookup(operation, "error")
		h.Log.Error().Err(err).
			Str("operation", operation).
			Str("path", c.Path()).
			Msg("lookup failed")
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
