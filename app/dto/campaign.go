package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxPause bounds pauses so seconds convert safely to durations.
const maxPause = 24 * time.Hour

// StartCampaignRequest is the send-emails payload. Pauses are in seconds.
type StartCampaignRequest struct {
	SMTPHost             string  `json:"smtp_host"`
	Port                 int     `json:"port"`
	Username             string  `json:"username"`
	Password             string  `json:"password"`
	UseSSL               bool    `json:"use_ssl"`
	From                 string  `json:"from"`
	Subject              string  `json:"subject"`
	PauseBetweenMessages float64 `json:"pause_between_messages"`
	PauseBetweenBlocks   float64 `json:"pause_between_blocks"`
	MessagesPerBlock     int     `json:"messages_per_block"`
	MaxConnections       int     `json:"max_connections"`
	Retries              int     `json:"retries"`
}

// FromEchoContext binds and normalizes a request from Echo.
func FromEchoContext(ctx echo.Context) (StartCampaignRequest, error) {
	var req StartCampaignRequest
	if err := ctx.Bind(&req); err != nil {
		return StartCampaignRequest{}, err
	}
	req.normalize()
	return req, nil
}

// FromStruct converts and normalizes a gRPC Struct payload.
func FromStruct(s *structpb.Struct) (StartCampaignRequest, error) {
	var req StartCampaignRequest
	if s == nil {
		return req, nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return StartCampaignRequest{}, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return StartCampaignRequest{}, err
	}
	req.normalize()
	return req, nil
}

// Validate checks the fields that do not survive conversion to durations.
// Everything else is validated when the run starts.
func (r *StartCampaignRequest) Validate() error {
	if err := validatePause("pause_between_messages", r.PauseBetweenMessages); err != nil {
		return err
	}
	return validatePause("pause_between_blocks", r.PauseBetweenBlocks)
}

// Settings returns the pacing and retry settings of the request.
func (r *StartCampaignRequest) Settings() campaign.Settings {
	return campaign.Settings{
		Subject:              r.Subject,
		PauseBetweenMessages: seconds(r.PauseBetweenMessages),
		PauseBetweenBlocks:   seconds(r.PauseBetweenBlocks),
		MessagesPerBlock:     r.MessagesPerBlock,
		MaxConnections:       r.MaxConnections,
		Retries:              r.Retries,
	}
}

// SMTPConfig returns the outbound server credentials of the request.
func (r *StartCampaignRequest) SMTPConfig() campaign.SMTPConfig {
	return campaign.SMTPConfig{
		Host:     r.SMTPHost,
		Port:     r.Port,
		Username: r.Username,
		Password: r.Password,
		UseSSL:   r.UseSSL,
		From:     r.From,
	}
}

// normalize trims whitespace for identifying fields. The password is kept as sent.
func (r *StartCampaignRequest) normalize() {
	r.SMTPHost = strings.TrimSpace(r.SMTPHost)
	r.Username = strings.TrimSpace(r.Username)
	r.From = strings.TrimSpace(r.From)
	r.Subject = strings.TrimSpace(r.Subject)
}

func validatePause(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &campaign.ConfigError{Field: field, Reason: "must be a number of seconds"}
	}
	if value < 0 {
		return &campaign.ConfigError{Field: field, Reason: "must not be negative"}
	}
	if value > maxPause.Seconds() {
		return &campaign.ConfigError{Field: field, Reason: fmt.Sprintf("must not exceed %s", maxPause)}
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
