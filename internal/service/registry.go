package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"rutregistro/internal/apify"
	"rutregistro/internal/geo"
	"rutregistro/internal/live"
	"rutregistro/internal/model"
	"rutregistro/internal/repository"
	"rutregistro/internal/rut"
	"rutregistro/internal/storage"
)

// ErrExportUnavailable is returned when no archive storage is configured.
var ErrExportUnavailable = errors.New("export storage not configured")

// AdmissionStatus classifies the terminal state of one submission.
type AdmissionStatus string

const (
	StatusAccepted                AdmissionStatus = "accepted"
	StatusRejectedIncompleteInput AdmissionStatus = "rejected_incomplete_input"
	StatusRejectedChecksum        AdmissionStatus = "rejected_checksum"
	StatusRejectedDuplicate       AdmissionStatus = "rejected_duplicate"
	StatusRejectedNotCorroborated AdmissionStatus = "rejected_not_corroborated"
)

// SubmitInput carries the registry form fields.
type SubmitInput struct {
	Name     string `json:"nombre" validate:"required"`
	LastName string `json:"apellido" validate:"required"`
	RUT      string `json:"rut" validate:"required"`
	Region   string `json:"region" validate:"required"`
	Comune   string `json:"comuna" validate:"required"`
}

// AdmissionResult is the outcome of one run of the admission pipeline.
// Message is safe for user display; the record is set only on acceptance.
type AdmissionResult struct {
	Status  AdmissionStatus `json:"status"`
	Message string          `json:"mensaje"`
	Record  *model.Record   `json:"registro,omitempty"`
}

// Accepted reports whether the submission was persisted.
func (r *AdmissionResult) Accepted() bool { return r.Status == StatusAccepted }

// RecordListResult is the service-level DTO for paginated records.
type RecordListResult struct {
	Items []model.Record `json:"data"`
	Total int            `json:"total"`
}

// ExportResult describes a completed registry export.
type ExportResult struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Records int    `json:"records"`
}

// RegistryService defines the use cases of the civic registry.
type RegistryService interface {
	// Submit runs the admission pipeline for one form submission:
	// completeness, checksum, duplicate, corroboration, persistence. Each
	// stage short-circuits; the returned error is non-nil only for
	// persistence/internal failures, never for business rejections.
	Submit(ctx context.Context, input SubmitInput) (*AdmissionResult, error)

	// List returns records newest first using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*RecordListResult, error)

	// Export writes a CSV snapshot of the registry to archive storage and
	// returns a presigned download URL.
	Export(ctx context.Context) (*ExportResult, error)
}

// registryService is a concrete implementation of RegistryService.
type registryService struct {
	repo         repository.RecordRepository
	corroborator apify.Corroborator
	archive      storage.Storage
	hub          *live.Hub
	node         *snowflake.Node
	loc          *time.Location
	validate     *validator.Validate
	logger       *log.Logger
}

// NewRegistryService constructs a new RegistryService. archive may be nil
// when no object storage is configured; exports then fail with
// ErrExportUnavailable. hub may be nil to disable live publishing.
func NewRegistryService(
	repo repository.RecordRepository,
	corroborator apify.Corroborator,
	archive storage.Storage,
	hub *live.Hub,
	node *snowflake.Node,
	loc *time.Location,
	logger *log.Logger,
) RegistryService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	return &registryService{
		repo:         repo,
		corroborator: corroborator,
		archive:      archive,
		hub:          hub,
		node:         node,
		loc:          loc,
		validate:     validator.New(),
		logger:       logger,
	}
}

func (s *registryService) Submit(ctx context.Context, input SubmitInput) (*AdmissionResult, error) {
	// Stage 1: completeness. Rejecting here consumes no corroboration call.
	if err := s.validate.Struct(input); err != nil {
		return &AdmissionResult{
			Status:  StatusRejectedIncompleteInput,
			Message: "Por favor completa todos los campos.",
		}, nil
	}
	if !geo.Valid(input.Region, input.Comune) {
		return &AdmissionResult{
			Status:  StatusRejectedIncompleteInput,
			Message: "La comuna no corresponde a la región seleccionada.",
		}, nil
	}

	// Stage 2: checksum.
	if !rut.Validate(input.RUT) {
		return &AdmissionResult{
			Status:  StatusRejectedChecksum,
			Message: "RUT inválido: el dígito verificador no corresponde.",
		}, nil
	}
	canonical, err := rut.Canonical(input.RUT)
	if err != nil {
		return &AdmissionResult{
			Status:  StatusRejectedChecksum,
			Message: "RUT inválido: el dígito verificador no corresponde.",
		}, nil
	}

	// Stage 3: duplicate check against the current snapshot. Best-effort:
	// two concurrent submissions of the same RUT can both pass (see the
	// hardening notes in DESIGN.md).
	known, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load record snapshot: %w", err)
	}
	if isDuplicate(canonical, known) {
		return &AdmissionResult{
			Status:  StatusRejectedDuplicate,
			Message: "El RUT ya se encuentra registrado.",
		}, nil
	}

	// Stage 4: external corroboration. Only a full match advances.
	res := s.corroborator.Corroborate(ctx, canonical)
	if !res.Found() {
		if res.Err != nil {
			// Detail stays server-side; the user sees only the reason text.
			s.logger.Printf("corroboration %s for rut %s: %v", res.Outcome, canonical, res.Err)
		}
		return &AdmissionResult{
			Status:  StatusRejectedNotCorroborated,
			Message: ReasonMessage(res.Outcome),
		}, nil
	}

	// Stage 5: persist and publish.
	now := time.Now().In(s.loc)
	rec := &model.Record{
		ID:          uuid.New().String(),
		Name:        input.Name,
		LastName:    input.LastName,
		RUT:         canonical,
		Region:      input.Region,
		Comune:      input.Comune,
		VisibleDate: now.Format("02-01-2006"),
		SystemDate:  s.node.Generate().Int64(),
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(append([]model.Record{*stored}, known...))
	}

	return &AdmissionResult{
		Status:  StatusAccepted,
		Message: "RUT validado: existe en el registro público. Registro almacenado.",
		Record:  stored,
	}, nil
}

// List returns paginated records without exposing repository types.
func (s *registryService) List(ctx context.Context, limit, offset int) (*RecordListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RecordListResult{Items: res.Items, Total: res.Total}, nil
}

// Export snapshots the registry into a CSV object and presigns it for download.
func (s *registryService) Export(ctx context.Context) (*ExportResult, error) {
	if s.archive == nil {
		return nil, ErrExportUnavailable
	}

	records, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load record snapshot: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"fecha", "rut", "apellidos", "nombres", "region", "comuna", "fecha_sistema"})
	for _, rec := range records {
		_ = w.Write([]string{
			rec.VisibleDate,
			rut.Format(rec.RUT),
			rec.LastName,
			rec.Name,
			rec.Region,
			rec.Comune,
			strconv.FormatInt(rec.SystemDate, 10),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/registros-%s-%s.csv",
		time.Now().In(s.loc).Format("20060102-150405"), uuid.New().String()[:8])

	if _, err := s.archive.Put(ctx, key, &buf, storage.PutObjectOptions{
		Size:        int64(buf.Len()),
		ContentType: "text/csv",
		Metadata:    map[string]string{"records": strconv.Itoa(len(records))},
	}); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.archive.PresignGet(ctx, key, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ExportResult{Key: key, URL: url, Records: len(records)}, nil
}

// isDuplicate reports whether any known record normalizes to the candidate
// canonical RUT. Stored values may be in display form; both sides are
// compared in canonical form.
func isDuplicate(canonical string, known []model.Record) bool {
	for _, rec := range known {
		if c, err := rut.Canonical(rec.RUT); err == nil && c == canonical {
			return true
		}
	}
	return false
}

// ReasonMessage translates a corroboration outcome into the user-facing
// rejection text. Transport detail never appears here.
func ReasonMessage(outcome apify.Outcome) string {
	switch outcome {
	case apify.OutcomeNotFound:
		return "RUT no asociado a una persona en el registro público."
	case apify.OutcomeTimedOut:
		return "Tiempo de espera excedido. No se pudo verificar la existencia."
	case apify.OutcomeServiceFailed:
		return "La consulta al servicio de verificación falló."
	case apify.OutcomeConfigError:
		return "Error de configuración del servicio de verificación."
	case apify.OutcomeTransportError:
		return "No se pudo contactar al servicio de verificación."
	default:
		return "No fue posible verificar el RUT."
	}
}
