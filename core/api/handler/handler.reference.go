package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lovelidevs/HmisGo/core/common"
)

// GetLocations trả về cây locations của tổ chức.
// GET /api/v1/locations
func (h *Handler) GetLocations(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		locations, err := h.session.GetLocations()
		h.HandleResponse(c, locations, err)
		return nil
	})
}

// ListLocationStrings trả về danh sách phẳng mọi địa điểm, đã sắp xếp.
// GET /api/v1/locations/strings
func (h *Handler) ListLocationStrings(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		result, err := h.session.AllLocationStrings()
		h.HandleResponse(c, result, err)
		return nil
	})
}

// ListLocationOptions trả về tên các location thuộc một category, dùng cho
// picker địa điểm.
// GET /api/v1/locations/options?cityUUID=...&locationCategoryUUID=...
func (h *Handler) ListLocationOptions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		cityUUID := c.Query("cityUUID")
		categoryUUID := c.Query("locationCategoryUUID")
		if cityUUID == "" || categoryUUID == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu query parameter cityUUID hoặc locationCategoryUUID",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		result, err := h.session.LocationsByUUIDs(cityUUID, categoryUUID)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// GetServices trả về cây services của tổ chức.
// GET /api/v1/services
func (h *Handler) GetServices(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		services, err := h.session.GetServices()
		h.HandleResponse(c, services, err)
		return nil
	})
}

// ListNotesOnDate trả về các note đã submit vào một ngày.
// GET /api/v1/notes?date=YYYY-MM-DD
func (h *Handler) ListNotesOnDate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		date := c.Query("date")
		if date == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu query parameter date (YYYY-MM-DD)",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		notes, err := h.session.GetNotesOnDate(c.Context(), date)
		h.HandleResponse(c, notes, err)
		return nil
	})
}
