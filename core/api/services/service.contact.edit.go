package services

import (
	"strings"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
)

// Các hàm edit mảng services của một contact. Tất cả đều pure: nhận mảng
// hiện tại, trả về mảng mới, không đụng vào input. Bất biến chung: payload
// rỗng đồng nghĩa với service vắng mặt trong mảng — không bao giờ giữ entry
// với count 0, text rỗng hay list rỗng.

// findContactService tìm index của service theo uuid, -1 nếu không có.
func findContactService(services []models.ContactService, serviceUUID string) int {
	for i := range services {
		if services[i].UUID == serviceUUID {
			return i
		}
	}
	return -1
}

// cloneContactServices sao chép mảng services để edit không đụng input.
func cloneContactServices(services []models.ContactService) []models.ContactService {
	if services == nil {
		return nil
	}
	result := make([]models.ContactService, len(services))
	for i, s := range services {
		result[i] = s.Clone()
	}
	return result
}

// removeContactService trả về mảng đã loại bỏ service theo uuid.
// Mảng trở nên rỗng thì trả về nil (field vắng mặt trên wire).
func removeContactService(services []models.ContactService, serviceUUID string) []models.ContactService {
	idx := findContactService(services, serviceUUID)
	if idx < 0 {
		return cloneContactServices(services)
	}
	result := cloneContactServices(services)
	result = append(result[:idx], result[idx+1:]...)
	if len(result) == 0 {
		return nil
	}
	return result
}

// upsertContactService thay thế entry cùng uuid nếu có, ngược lại append.
func upsertContactService(services []models.ContactService, entry models.ContactService) []models.ContactService {
	result := cloneContactServices(services)
	if idx := findContactService(result, entry.UUID); idx >= 0 {
		result[idx] = entry
		return result
	}
	return append(result, entry)
}

// UpdateServiceToggle bật/tắt một service kiểu Toggle.
// Bật thì entry chỉ có uuid và tên; tắt thì entry bị loại khỏi mảng.
func UpdateServiceToggle(services []models.ContactService, service models.Service, active bool) []models.ContactService {
	if !active {
		return removeContactService(services, service.UUID)
	}
	return upsertContactService(services, models.ContactService{
		UUID:    service.UUID,
		Service: service.Service,
	})
}

// UpdateServiceCount đặt số lượng cho một service kiểu Counter.
// Count <= 0 thì entry bị loại khỏi mảng; đã có thì thay thế nguyên entry;
// chưa có thì append.
func UpdateServiceCount(services []models.ContactService, service models.Service, count int) []models.ContactService {
	if count <= 0 {
		return removeContactService(services, service.UUID)
	}
	return upsertContactService(services, models.ContactService{
		UUID:    service.UUID,
		Service: service.Service,
		Count:   count,
		Units:   service.Units,
	})
}

// UpdateServiceText đặt text cho một service kiểu Textbox.
// Text rỗng (sau trim) thì entry bị loại khỏi mảng.
func UpdateServiceText(services []models.ContactService, service models.Service, text string) []models.ContactService {
	text = strings.TrimSpace(text)
	if text == "" {
		return removeContactService(services, service.UUID)
	}
	return upsertContactService(services, models.ContactService{
		UUID:    service.UUID,
		Service: service.Service,
		Text:    text,
	})
}

// UpdateServiceList đặt danh sách lựa chọn cho service kiểu Locations hoặc
// Custom List. List rỗng thì entry bị loại khỏi mảng.
func UpdateServiceList(services []models.ContactService, service models.Service, list []string) []models.ContactService {
	if len(list) == 0 {
		return removeContactService(services, service.UUID)
	}
	return upsertContactService(services, models.ContactService{
		UUID:    service.UUID,
		Service: service.Service,
		List:    append([]string(nil), list...),
	})
}
