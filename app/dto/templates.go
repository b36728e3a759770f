package dto

import (
	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

// TemplatesFromEchoContext decodes the save-templates body, a JSON object
// mapping language codes to bodies.
func TemplatesFromEchoContext(ctx echo.Context) (entity.TemplateSet, error) {
	templates := entity.TemplateSet{}
	if err := (&echo.DefaultBinder{}).BindBody(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
