// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/signmark/niap-ui-base-sub002/app/dto"
	businessflow "github.com/signmark/niap-ui-base-sub002/business_flow"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// PublishHandlerInterface defines the contract for publication handlers
type PublishHandlerInterface interface {
	ListScheduled(c fiber.Ctx) error
	SchedulerStatus(c fiber.Ctx) error
	DownloadReport(c fiber.Ctx) error
}

// PublishHandler handles publication-related HTTP requests
type PublishHandler struct {
	publishFlow businessflow.PublishFlow
	validator   *validator.Validate
}

func (h *PublishHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PublishHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPublishHandler creates a new publication handler
func NewPublishHandler(publishFlow businessflow.PublishFlow) *PublishHandler {
	return &PublishHandler{
		publishFlow: publishFlow,
		validator:   validator.New(),
	}
}

// ListScheduled returns scheduled content for the given user
// @Summary List Scheduled Content
// @Description List scheduled content belonging to the user's campaigns
// @Tags Publish
// @Produce json
// @Param userId query string true "User ID"
// @Param campaignId query string false "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ScheduledContentItem} "Scheduled content"
// @Failure 400 {object} dto.APIResponse "userId missing"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/publish/scheduled [get]
func (h *PublishHandler) ListScheduled(c fiber.Ctx) error {
	req := dto.ListScheduledContentRequest{
		UserID:     c.Query("userId"),
		CampaignID: c.Query("campaignId"),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "userId query parameter is required", "VALIDATION_ERROR", err.Error())
	}

	result, err := h.publishFlow.ListScheduledContent(h.createRequestContext(c, "/api/publish/scheduled"), &req)
	if err != nil {
		if businessflow.IsUserIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "userId query parameter is required", "VALIDATION_ERROR", nil)
		}
		if businessflow.IsNoSystemToken(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Content store access unavailable", "NO_SYSTEM_TOKEN", nil)
		}

		log.Println("List scheduled content failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list scheduled content", "LIST_SCHEDULED_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Scheduled content retrieved successfully", result)
}

// SchedulerStatus reports the publish scheduler's runtime state
// @Summary Scheduler Status
// @Tags Publish
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SchedulerStatusResponse} "Scheduler state"
// @Router /api/test/scheduler-status [get]
func (h *PublishHandler) SchedulerStatus(c fiber.Ctx) error {
	result, err := h.publishFlow.SchedulerStatus(h.createRequestContext(c, "/api/test/scheduler-status"))
	if err != nil {
		log.Println("Scheduler status failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read scheduler status", "SCHEDULER_STATUS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Scheduler status retrieved successfully", result)
}

// DownloadReport returns an xlsx report of a campaign's publication attempts
// @Summary Download Publication Report
// @Tags Publish
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param campaignId query string true "Campaign ID"
// @Success 200 {string} string "xlsx file"
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/publish/report [get]
func (h *PublishHandler) DownloadReport(c fiber.Ctx) error {
	req := dto.PublicationReportRequest{
		CampaignID: c.Query("campaignId"),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "campaignId query parameter is required", "VALIDATION_ERROR", err.Error())
	}

	filename, data, err := h.publishFlow.DownloadPublicationReportExcel(h.createRequestContext(c, "/api/publish/report"), req.CampaignID)
	if err != nil {
		if businessflow.IsCampaignIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "campaignId query parameter is required", "VALIDATION_ERROR", nil)
		}
		log.Println("Publication report download failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate report", "DOWNLOAD_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *PublishHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PublishHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
