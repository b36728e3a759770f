package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/dto"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
)

type CampaignController struct {
	campaigns *service.CampaignService
	log       logrus.FieldLogger
}

// NewCampaignController constructs the HTTP campaign controller.
func NewCampaignController(campaigns *service.CampaignService, log logrus.FieldLogger) *CampaignController {
	return &CampaignController{campaigns: campaigns, log: log}
}

// UploadContacts replaces the contact list with the uploaded CSV.
func (c *CampaignController) UploadContacts(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "file is required", Field: "file"})
	}
	src, err := file.Open()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "failed to read upload", Field: "file"})
	}
	defer src.Close()

	total, err := c.campaigns.ImportContacts(requestContext(ctx), src)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{"message": "Contacts uploaded successfully!", "total": total})
}

// UploadAttachment stores a file attached to every campaign message.
func (c *CampaignController) UploadAttachment(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "file is required", Field: "file"})
	}
	src, err := file.Open()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "failed to read upload", Field: "file"})
	}
	defer src.Close()

	if err := c.campaigns.SaveAttachment(requestContext(ctx), file.Filename, file.Header.Get(echo.HeaderContentType), src); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Attachment uploaded successfully!"})
}

// SaveTemplates replaces the message templates.
func (c *CampaignController) SaveTemplates(ctx echo.Context) error {
	templates, err := dto.TemplatesFromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := c.campaigns.SaveTemplates(requestContext(ctx), templates); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Email templates saved successfully!"})
}

// SendEmails validates the settings and starts a campaign.
func (c *CampaignController) SendEmails(ctx echo.Context) error {
	req, err := dto.FromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.fail(ctx, err)
	}

	snap, err := c.campaigns.Start(requestContext(ctx), service.StartInput{Settings: req.Settings(), SMTP: req.SMTPConfig()})
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"message": "Email campaign started!",
		"run_id":  snap.RunID,
		"total":   snap.Total,
	})
}

// StopCampaign requests a graceful stop.
func (c *CampaignController) StopCampaign(ctx echo.Context) error {
	snap, err := c.campaigns.Stop(requestContext(ctx))
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.NewStatusResponse(snap))
}

// Status reports the current run.
func (c *CampaignController) Status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.NewStatusResponse(c.campaigns.Status()))
}

func (c *CampaignController) fail(ctx echo.Context, err error) error {
	switch {
	case campaign.IsInputError(err):
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
	case errors.Is(err, campaign.ErrConflict), errors.Is(err, campaign.ErrNotRunning):
		return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		c.log.WithError(err).WithField("path", ctx.Path()).Error("Request failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
