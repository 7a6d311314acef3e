package handlers

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fra-atlas/atlas-backend/internal/analysis"
	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/fra-atlas/atlas-backend/internal/tenant"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claimService *services.ClaimService
}

func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.Create(c.UserContext(), tenant.Actor(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

func (h *ClaimHandler) List(c *fiber.Ctx) error {
	claims, err := h.claimService.List(c.UserContext(), tenant.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(claims)
}

func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	id, err := claimID(c)
	if err != nil {
		return writeError(c, err)
	}

	claim, err := h.claimService.Get(c.UserContext(), tenant.Actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := claimID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.UpdateStatus(c.UserContext(), tenant.Actor(c), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Upload(c *fiber.Ctx) error {
	id, err := claimID(c)
	if err != nil {
		return writeError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "A file field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fmt.Errorf("read upload: %w", err))
	}

	doc := analysis.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}
	out, err := h.claimService.UploadDocument(c.UserContext(), tenant.Actor(c), id, doc)
	if err != nil {
		return writeError(c, err)
	}

	if out.Analysis.Degraded {
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("claim_id", id.String())
				scope.SetLevel(sentry.LevelWarning)
				hub.CaptureMessage(out.Analysis.Text)
			})
		}
		slog.Warn("document stored without analysis", "claim_id", id.String(), "request_id", requestID(c))
	}

	return c.JSON(dto.UploadResponse{
		Message:          "File uploaded successfully",
		FilePath:         out.Reference,
		AIAnalysis:       out.Analysis.Text,
		AnalysisDegraded: out.Analysis.Degraded,
	})
}

func claimID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid claim id %q", c.Params("id"))
	}
	return id, nil
}
