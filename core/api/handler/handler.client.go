package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lovelidevs/HmisGo/core/api/dto"
	"github.com/lovelidevs/HmisGo/core/common"
)

// parseObjectID đổi hex string thành ObjectID, trả về lỗi chuẩn hóa nếu sai format.
func parseObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID không hợp lệ: %q", value),
			common.StatusBadRequest,
			err,
		)
	}
	return id, nil
}

// CreateClient tạo client mới từ intake form.
// POST /api/v1/clients
func (h *Handler) CreateClient(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.ClientCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		id, err := h.session.CreateClient(c.Context(), input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
		return nil
	})
}

// ListClients trả về danh sách clients đã sắp xếp từ cache.
// GET /api/v1/clients
func (h *Handler) ListClients(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		clients, err := h.session.GetClients()
		h.HandleResponse(c, clients, err)
		return nil
	})
}

// GetClient trả về một client theo id.
// GET /api/v1/clients/:id
func (h *Handler) GetClient(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := parseObjectID(c.Params("id"))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		client, err := h.session.GetClient(id)
		h.HandleResponse(c, client, err)
		return nil
	})
}

// ListClientsWithContactOnDate trả về các client có contact vào một ngày.
// GET /api/v1/clients/contacted?date=YYYY-MM-DD
func (h *Handler) ListClientsWithContactOnDate(c fiber.Ctx) error {
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
		clients, err := h.session.GetClientsWithContactOnDate(date)
		h.HandleResponse(c, clients, err)
		return nil
	})
}
