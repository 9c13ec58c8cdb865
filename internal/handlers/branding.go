package handlers

import (
	"github.com/gofiber/fiber/v3"

	"covidrisk/internal/config"
)

// LayoutData contains the values every full page needs.
type LayoutData struct {
	SiteTitle   string
	SiteTagline string
	Nav         []config.NavItem
	OIDCEnabled bool
}

// GetLayoutData returns layout data from config for template rendering.
func GetLayoutData(cfg *config.Config, ui *config.UIConfig) LayoutData {
	return LayoutData{
		SiteTitle:   cfg.SiteTitle,
		SiteTagline: cfg.SiteTagline,
		Nav:         ui.Nav,
		OIDCEnabled: cfg.OIDCEnabled(),
	}
}

// MergeLayout adds layout data, the active path and the signed-in user to a
// fiber.Map for template rendering.
func MergeLayout(c fiber.Ctx, data fiber.Map, cfg *config.Config, ui *config.UIConfig) fiber.Map {
	layout := GetLayoutData(cfg, ui)
	data["SiteTitle"] = layout.SiteTitle
	data["SiteTagline"] = layout.SiteTagline
	data["Nav"] = layout.Nav
	data["OIDCEnabled"] = layout.OIDCEnabled
	data["ActivePath"] = c.Path()
	data["User"] = c.Locals("user")
	return data
}
