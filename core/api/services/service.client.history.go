package services

import (
	"time"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
)

// ProjectContact chuyển một Contact đang dở thành bản ghi ClientContact
// denormalize để lưu vĩnh viễn trên serviceHistory của client:
//   - date lấy từ timestamp của contact, format YYYY-MM-DD.
//   - city/locationCategory resolve từ uuid sang display string tại thời
//     điểm submit; uuid không resolve được thì để rỗng (không fail submit).
//   - services bỏ uuid, chỉ giữ display payload.
//
// Hàm pure, không đụng vào input.
func ProjectContact(contact models.Contact, locations *models.LocationDocument) models.ClientContact {
	result := models.ClientContact{
		Date:     dateFromTimestamp(contact.Timestamp),
		Time:     contact.Timestamp,
		Location: contact.Location,
	}

	if city := locations.CityByUUID(contact.CityUUID); city != nil {
		result.City = city.City
	}
	if category := locations.CategoryByUUIDs(contact.CityUUID, contact.LocationCategoryUUID); category != nil {
		result.LocationCategory = category.Category
	}

	if len(contact.Services) > 0 {
		result.Services = make([]models.ClientService, len(contact.Services))
		for i, service := range contact.Services {
			result.Services[i] = models.ClientService{
				Service: service.Service,
				Text:    service.Text,
				Count:   service.Count,
				Units:   service.Units,
			}
			if service.List != nil {
				result.Services[i].List = append([]string(nil), service.List...)
			}
		}
	}

	return result
}

// dateFromTimestamp rút phần ngày (YYYY-MM-DD) từ một timestamp ISO 8601.
// Timestamp không parse được thì cắt 10 ký tự đầu (vẫn là YYYY-MM-DD với
// mọi chuỗi ISO hợp lệ).
func dateFromTimestamp(timestamp string) string {
	for _, layout := range []string{ISOTimestampLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}
