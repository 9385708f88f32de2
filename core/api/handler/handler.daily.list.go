package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lovelidevs/HmisGo/core/api/dto"
	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/api/services"
)

// CreateDailyList tạo daily list mới và chọn nó làm list hiện tại.
// POST /api/v1/dailylists
func (h *Handler) CreateDailyList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.DailyListCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		id, err := h.session.CreateDailyList(c.Context(), input.Email)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
		return nil
	})
}

// ListDailyListKeys trả về key các daily list đang mở, mới nhất trước.
// GET /api/v1/dailylists
func (h *Handler) ListDailyListKeys(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		keys, err := h.session.GetDailyListKeys()
		h.HandleResponse(c, keys, err)
		return nil
	})
}

// SelectDailyList chọn một daily list đang mở làm list hiện tại.
// PUT /api/v1/dailylists/selected
func (h *Handler) SelectDailyList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.DailyListSelectInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		id, err := parseObjectID(input.ID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.session.SelectDailyList(id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		list, err := h.session.DailyList()
		h.HandleResponse(c, list, err)
		return nil
	})
}

// GetSelectedDailyList trả về daily list đang chọn.
// GET /api/v1/dailylists/selected
func (h *Handler) GetSelectedDailyList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		list, err := h.session.DailyList()
		h.HandleResponse(c, list, err)
		return nil
	})
}

// DeselectDailyList bỏ chọn list hiện tại.
// DELETE /api/v1/dailylists/selected
func (h *Handler) DeselectDailyList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		h.session.DeselectDailyList()
		h.HandleResponse(c, nil, nil)
		return nil
	})
}

// UpdateNote ghi đè note của list đang chọn.
// PUT /api/v1/dailylists/selected/note
func (h *Handler) UpdateNote(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.NoteUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err := h.session.UpdateNote(c.Context(), input.Note)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// ToggleClient thêm/gỡ client khỏi list đang chọn.
// POST /api/v1/dailylists/selected/contacts/toggle
func (h *Handler) ToggleClient(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.ToggleClientInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := parseObjectID(input.ClientID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.session.ToggleClient(c.Context(), clientID); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		list, err := h.session.DailyList()
		h.HandleResponse(c, list, err)
		return nil
	})
}

// UpdateContactServices thay thế mảng services của contact một client.
// PUT /api/v1/dailylists/selected/contacts/services
func (h *Handler) UpdateContactServices(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.ContactServicesUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := parseObjectID(input.ClientID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		contactServices := make([]models.ContactService, 0, len(input.Services))
		for _, s := range input.Services {
			contactServices = append(contactServices, models.ContactService{
				UUID:    s.UUID,
				Service: s.Service,
				Text:    s.Text,
				Count:   s.Count,
				Units:   s.Units,
				List:    s.List,
			})
		}

		if err := h.session.UpdateContactServices(c.Context(), clientID, contactServices); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		list, err := h.session.DailyList()
		h.HandleResponse(c, list, err)
		return nil
	})
}

// SetCurrentLocation đặt địa điểm làm việc hiện tại của session.
// PUT /api/v1/location/current
func (h *Handler) SetCurrentLocation(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.CurrentLocationInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.session.SetCurrentLocation(&services.CurrentLocation{
			CityUUID:             input.CityUUID,
			LocationCategoryUUID: input.LocationCategoryUUID,
			Location:             input.Location,
		})
		h.HandleResponse(c, nil, nil)
		return nil
	})
}

// SubmitDailyList submit list đang chọn vào hồ sơ vĩnh viễn.
// POST /api/v1/dailylists/selected/submit
func (h *Handler) SubmitDailyList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		err := h.session.SubmitDailyList(c.Context())
		h.HandleResponse(c, nil, err)
		return nil
	})
}
