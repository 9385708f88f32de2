package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lovelidevs/HmisGo/core/api/dto"
	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/store"
)

// CreateClient tạo client mới cho tổ chức của session từ intake form.
// Các field text được trim trước khi lưu; lastName là bắt buộc.
//
// Trả về ObjectID của client vừa tạo. Cache clients sẽ cập nhật qua
// subscription khi snapshot mới về.
func (s *Session) CreateClient(ctx context.Context, input dto.ClientCreateInput) (primitive.ObjectID, error) {
	input.LastName = strings.TrimSpace(input.LastName)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.DOB = strings.TrimSpace(input.DOB)
	input.Alias = strings.TrimSpace(input.Alias)
	input.HmisID = strings.TrimSpace(input.HmisID)

	if err := s.validate.Struct(input); err != nil {
		return primitive.NilObjectID, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}

	client := models.Client{
		Organization: s.organization,
		LastName:     input.LastName,
		FirstName:    input.FirstName,
		DOB:          input.DOB,
		Alias:        input.Alias,
		HmisID:       input.HmisID,
	}

	id, err := s.store.Insert(ctx, store.CollClients, client)
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.log.WithField("clientID", id.Hex()).Info("Đã tạo client mới")
	return id, nil
}

// GetClientsWithContactOnDate trả về các client có ít nhất một bản ghi
// serviceHistory vào ngày cho trước (date format YYYY-MM-DD), giữ nguyên
// thứ tự sắp xếp của cache.
func (s *Session) GetClientsWithContactOnDate(date string) ([]models.Client, error) {
	clients, err := s.GetClients()
	if err != nil {
		return nil, err
	}

	result := []models.Client{}
	for _, client := range clients {
		for _, contact := range client.ServiceHistory {
			if contact.Date == date {
				result = append(result, client)
				break
			}
		}
	}
	return result, nil
}
