package handler

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rutregistro/internal/apify"
	"rutregistro/internal/geo"
	"rutregistro/internal/live"
	"rutregistro/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parsing, status mapping, no business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.RegistryService, corr apify.Corroborator, hub *live.Hub) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/api/regiones", ListRegions())
	app.Get("/api/registros", ListRecords(svc))
	app.Post("/api/registros", SubmitRecord(svc))
	app.Post("/api/registros/export", ExportRecords(svc))
	app.Get("/api/registros/stream", StreamRecords(hub))
	app.Post("/api/rutificar", Rutificar(corr))
}

// HealthCheck verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListRegions serves the static region and comune catalog for form population.
func ListRegions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"regiones": geo.Regions(),
			"comunas":  geo.Catalog(),
		})
	}
}

// ListRecords returns a page of the registry, newest first.
func ListRecords(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// SubmitRecord runs the admission pipeline for one form submission and maps
// each terminal state to a status code. Internal failures stay generic.
func SubmitRecord(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input service.SubmitInput
		if err := c.BodyParser(&input); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		res, err := svc.Submit(c.UserContext(), input)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Status(admissionStatusCode(res.Status)).JSON(res)
	}
}

func admissionStatusCode(status service.AdmissionStatus) int {
	switch status {
	case service.StatusAccepted:
		return fiber.StatusCreated
	case service.StatusRejectedIncompleteInput:
		return fiber.StatusBadRequest
	case service.StatusRejectedDuplicate:
		return fiber.StatusConflict
	default:
		// Checksum and corroboration rejections: well-formed input the
		// system refuses to admit.
		return fiber.StatusUnprocessableEntity
	}
}

// ExportRecords snapshots the registry to archive storage and returns a
// presigned download URL.
func ExportRecords(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext())
		if err != nil {
			if errors.Is(err, service.ErrExportUnavailable) {
				return writeError(c, fiber.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "export storage not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// StreamRecords pushes registry snapshots to the client as Server-Sent
// Events. Each event carries the full current dataset, newest first.
func StreamRecords(hub *live.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		ch, cancel := hub.Subscribe()
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer cancel()
			for snapshot := range ch {
				data, err := json.Marshal(snapshot)
				if err != nil {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				// A failed flush means the client went away.
				if err := w.Flush(); err != nil {
					return
				}
			}
		})
		return nil
	}
}

type rutificarRequest struct {
	RutLimpio string `json:"rutLimpio"`
}

type rutificarResponse struct {
	Valido             bool   `json:"valido"`
	Mensaje            string `json:"mensaje"`
	NombreEncontrado   string `json:"nombreEncontrado,omitempty"`
	ApellidoEncontrado string `json:"apellidoEncontrado,omitempty"`
}

// Rutificar exposes the corroboration stage directly: it takes a canonical
// RUT and reports whether the public registry knows a person for it.
//
// Status code convention (the lenient variant): business rejections
// (person not found, actor run failed, polling budget exhausted) are 200
// with valido=false; a missing credential is 401; a missing rut is 400;
// transport failures are a generic 500.
func Rutificar(corr apify.Corroborator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rutificarRequest
		if err := c.BodyParser(&req); err != nil || req.RutLimpio == "" {
			return c.Status(fiber.StatusBadRequest).JSON(rutificarResponse{
				Valido:  false,
				Mensaje: "RUT es requerido.",
			})
		}

		res := corr.Corroborate(c.UserContext(), req.RutLimpio)
		switch res.Outcome {
		case apify.OutcomeFound:
			return c.Status(fiber.StatusOK).JSON(rutificarResponse{
				Valido:             true,
				Mensaje:            "RUT validado: existe en el registro público.",
				NombreEncontrado:   res.Name,
				ApellidoEncontrado: res.LastName,
			})
		case apify.OutcomeConfigError:
			return c.Status(fiber.StatusUnauthorized).JSON(rutificarResponse{
				Valido:  false,
				Mensaje: service.ReasonMessage(res.Outcome),
			})
		case apify.OutcomeTransportError:
			return c.Status(fiber.StatusInternalServerError).JSON(rutificarResponse{
				Valido:  false,
				Mensaje: "Error interno del servidor.",
			})
		default:
			return c.Status(fiber.StatusOK).JSON(rutificarResponse{
				Valido:  false,
				Mensaje: service.ReasonMessage(res.Outcome),
			})
		}
	}
}
