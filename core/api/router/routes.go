// Package router đăng ký các route HTTP của data layer.
package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lovelidevs/HmisGo/core/api/handler"
)

// SetupRoutes đăng ký toàn bộ route dưới prefix /api/v1.
func SetupRoutes(app *fiber.App, h *handler.Handler) {
	v1 := app.Group("/api/v1")

	// Clients
	clients := v1.Group("/clients")
	clients.Post("/", h.CreateClient)
	clients.Get("/", h.ListClients)
	clients.Get("/contacted", h.ListClientsWithContactOnDate)
	clients.Get("/:id", h.GetClient)

	// Reference data
	v1.Get("/locations", h.GetLocations)
	v1.Get("/locations/strings", h.ListLocationStrings)
	v1.Get("/locations/options", h.ListLocationOptions)
	v1.Get("/services", h.GetServices)
	v1.Put("/location/current", h.SetCurrentLocation)

	// Daily lists
	dailyLists := v1.Group("/dailylists")
	dailyLists.Post("/", h.CreateDailyList)
	dailyLists.Get("/", h.ListDailyListKeys)
	dailyLists.Get("/selected", h.GetSelectedDailyList)
	dailyLists.Put("/selected", h.SelectDailyList)
	dailyLists.Delete("/selected", h.DeselectDailyList)
	dailyLists.Put("/selected/note", h.UpdateNote)
	dailyLists.Post("/selected/contacts/toggle", h.ToggleClient)
	dailyLists.Put("/selected/contacts/services", h.UpdateContactServices)
	dailyLists.Post("/selected/submit", h.SubmitDailyList)

	// Notes
	v1.Get("/notes", h.ListNotesOnDate)
}
