package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/store"
)

// Các accessor đọc cache reference của session. Mọi accessor trả về bản sao
// để caller không sửa được cache; trả về common.ErrNotLoaded khi snapshot
// đầu tiên của collection chưa về tới (phân biệt "đang tải" với "rỗng") và
// common.ErrSubscriptionFailure khi subscription của slot không mở được
// (snapshot sẽ không bao giờ về).

// slotErrLocked trả về lỗi trạng thái của một slot cache. Caller phải đang
// giữ s.mu.
func (s *Session) slotErrLocked(collection string, loaded bool) error {
	if s.subFailed[collection] {
		return common.ErrSubscriptionFailure
	}
	if !loaded {
		return common.ErrNotLoaded
	}
	return nil
}

// GetClients trả về danh sách clients đã sắp xếp (lastName, firstName, alias).
func (s *Session) GetClients() ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.slotErrLocked(store.CollClients, s.clientsLoaded); err != nil {
		return nil, err
	}
	result := make([]models.Client, len(s.clients))
	for i, c := range s.clients {
		result[i] = c.Clone()
	}
	return result, nil
}

// GetClient tìm client theo ID trong cache.
func (s *Session) GetClient(id primitive.ObjectID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.slotErrLocked(store.CollClients, s.clientsLoaded); err != nil {
		return nil, err
	}
	for i := range s.clients {
		if s.clients[i].ID == id {
			clone := s.clients[i].Clone()
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

// GetLocations trả về location document của tổ chức.
// Document có thể là nil nếu tổ chức chưa có cây locations.
func (s *Session) GetLocations() (*models.LocationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.slotErrLocked(store.CollLocations, s.locationsLoaded); err != nil {
		return nil, err
	}
	if s.locations == nil {
		return nil, nil
	}
	clone := s.locations.Clone()
	return &clone, nil
}

// GetServices trả về service document của tổ chức.
// Document có thể là nil nếu tổ chức chưa có cây services.
func (s *Session) GetServices() (*models.ServiceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.slotErrLocked(store.CollServices, s.servicesLoaded); err != nil {
		return nil, err
	}
	if s.services == nil {
		return nil, nil
	}
	clone := s.services.Clone()
	return &clone, nil
}

// GetDailyListKeys trả về danh sách key của các daily list đang mở,
// mới nhất trước.
func (s *Session) GetDailyListKeys() ([]models.DailyListKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.slotErrLocked(store.CollDailyLists, s.dailyListsLoaded); err != nil {
		return nil, err
	}
	return append([]models.DailyListKey(nil), s.dailyListKeys...), nil
}

// AllLocationStrings trả về danh sách phẳng mọi địa điểm của tổ chức,
// sắp xếp alphabet không phân biệt hoa thường.
func (s *Session) AllLocationStrings() ([]string, error) {
	locations, err := s.GetLocations()
	if err != nil {
		return nil, err
	}
	return locations.AllLocationStrings(), nil
}

// LocationsByUUIDs trả về danh sách tên location thuộc một category.
func (s *Session) LocationsByUUIDs(cityUUID, locationCategoryUUID string) ([]string, error) {
	locations, err := s.GetLocations()
	if err != nil {
		return nil, err
	}
	return locations.LocationsByUUIDs(cityUUID, locationCategoryUUID), nil
}
