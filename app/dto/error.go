package dto

import "github.com/vibast-solutions/ms-go-campaigns/app/campaign"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewErrorResponse builds the body for err, naming the offending field of
// validation and configuration errors.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Field: campaign.FieldOf(err)}
}
