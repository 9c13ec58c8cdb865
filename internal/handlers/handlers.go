package handlers

import (
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// TemplateFuncs returns the helpers available to every view.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// num prints a figure the way the user typed it: 450, 16.5
		"num": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
		"pct": func(f float64) string {
			return strconv.FormatFloat(f, 'f', 1, 64)
		},
	}
}
