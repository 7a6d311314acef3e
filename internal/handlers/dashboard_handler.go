package handlers

import (
	"fmt"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/fra-atlas/atlas-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	reportService    *services.ReportService
}

func NewDashboardHandler(dashboardService *services.DashboardService, reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, reportService: reportService}
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.dashboardService.Stats(c.UserContext(), tenant.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *DashboardHandler) MapData(c *fiber.Ctx) error {
	points, err := h.dashboardService.MapData(c.UserContext(), tenant.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(points)
}

func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	report, err := h.reportService.Summary(c.UserContext(), tenant.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *DashboardHandler) ExportSummary(c *fiber.Ctx) error {
	data, err := h.reportService.ExportSummary(c.UserContext(), tenant.Actor(c))
	if err != nil {
		return writeError(c, err)
	}

	filename := fmt.Sprintf("regional-summary-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
