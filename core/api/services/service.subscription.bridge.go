package services

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/store"
)

// applySnapshot apply một snapshot vào cache của session. Chỉ được gọi từ
// run loop nên các snapshot luôn được xử lý tuần tự; mỗi snapshot thay thế
// toàn bộ state trước đó của collection.
func (s *Session) applySnapshot(msg snapshotMsg) {
	if msg.selectedFor != nil {
		s.applySelectedDailyList(*msg.selectedFor, msg.docs)
		return
	}
	switch msg.collection {
	case store.CollClients:
		s.applyClients(msg.docs)
	case store.CollLocations:
		s.applyLocations(msg.docs)
	case store.CollServices:
		s.applyServices(msg.docs)
	case store.CollDailyLists:
		s.applyDailyLists(msg.docs)
	default:
		s.log.WithField("collection", msg.collection).Warn("Snapshot từ collection không xác định, bỏ qua")
	}
}

// applyClients thay thế cache clients, sắp xếp theo lastName, firstName,
// alias (không phân biệt hoa thường).
func (s *Session) applyClients(docs []bson.Raw) {
	clients := make([]models.Client, 0, len(docs))
	for _, doc := range docs {
		var client models.Client
		if err := bson.Unmarshal(doc, &client); err != nil {
			s.log.WithError(err).Warn("Không decode được client document, bỏ qua document")
			continue
		}
		clients = append(clients, client)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		li, lj := strings.ToLower(clients[i].LastName), strings.ToLower(clients[j].LastName)
		if li != lj {
			return li < lj
		}
		fi, fj := strings.ToLower(clients[i].FirstName), strings.ToLower(clients[j].FirstName)
		if fi != fj {
			return fi < fj
		}
		return strings.ToLower(clients[i].Alias) < strings.ToLower(clients[j].Alias)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = clients
	s.clientsLoaded = true
}

// applyLocations thay thế location document (singleton theo tổ chức).
func (s *Session) applyLocations(docs []bson.Raw) {
	var locations *models.LocationDocument
	if len(docs) > 0 {
		var doc models.LocationDocument
		if err := bson.Unmarshal(docs[0], &doc); err != nil {
			s.log.WithError(err).Warn("Không decode được location document, giữ state cũ")
			return
		}
		locations = &doc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = locations
	s.locationsLoaded = true
}

// applyServices thay thế service document (singleton theo tổ chức).
func (s *Session) applyServices(docs []bson.Raw) {
	var services *models.ServiceDocument
	if len(docs) > 0 {
		var doc models.ServiceDocument
		if err := bson.Unmarshal(docs[0], &doc); err != nil {
			s.log.WithError(err).Warn("Không decode được service document, giữ state cũ")
			return
		}
		services = &doc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = services
	s.servicesLoaded = true
}

// dailyListWire là DailyList trên wire: clientId của contact có thể là
// ObjectID hoặc hex string tùy client ghi, nên phải decode lỏng rồi hydrate.
type dailyListWire struct {
	ID           primitive.ObjectID `bson:"_id"`
	Organization string             `bson:"organization"`
	Creator      string             `bson:"creator"`
	Timestamp    string             `bson:"timestamp"`
	Note         []string           `bson:"note"`
	Contacts     []contactWire      `bson:"contacts"`
}

type contactWire struct {
	ClientID             interface{}             `bson:"clientId"`
	Timestamp            string                  `bson:"timestamp"`
	CityUUID             string                  `bson:"cityUUID"`
	LocationCategoryUUID string                  `bson:"locationCategoryUUID"`
	Location             string                  `bson:"location"`
	Services             []models.ContactService `bson:"services"`
}

// hydrateClientID chuyển clientId trên wire về ObjectID.
func hydrateClientID(raw interface{}) (primitive.ObjectID, bool) {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v, true
	case string:
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return primitive.NilObjectID, false
		}
		return id, true
	default:
		return primitive.NilObjectID, false
	}
}

// decodeDailyList decode một daily list document từ wire, hydrate clientId
// của từng contact. Contact có clientId không hợp lệ bị bỏ qua.
func (s *Session) decodeDailyList(doc bson.Raw) (models.DailyList, bool) {
	var wire dailyListWire
	if err := bson.Unmarshal(doc, &wire); err != nil {
		s.log.WithError(err).Warn("Không decode được daily list document, bỏ qua document")
		return models.DailyList{}, false
	}

	list := models.DailyList{
		ID:           wire.ID,
		Organization: wire.Organization,
		Creator:      wire.Creator,
		Timestamp:    wire.Timestamp,
		Note:         wire.Note,
	}
	for _, cw := range wire.Contacts {
		clientID, ok := hydrateClientID(cw.ClientID)
		if !ok {
			s.log.WithField("dailyListID", wire.ID.Hex()).
				Warn("Contact có clientId không hợp lệ, bỏ qua contact")
			continue
		}
		list.Contacts = append(list.Contacts, models.Contact{
			ClientID:             clientID,
			Timestamp:            cw.Timestamp,
			CityUUID:             cw.CityUUID,
			LocationCategoryUUID: cw.LocationCategoryUUID,
			Location:             cw.Location,
			Services:             cw.Services,
		})
	}
	return list, true
}

// applySelectedDailyList apply snapshot từ subscription riêng của list đang
// chọn. Snapshot rỗng nghĩa là list đã bị xóa từ xa: selection bị xóa và
// subscription được đóng.
func (s *Session) applySelectedDailyList(id primitive.ObjectID, docs []bson.Raw) {
	if len(docs) == 0 {
		s.mu.Lock()
		cleared := false
		if s.selectedID != nil && *s.selectedID == id {
			s.selectedID = nil
			s.selected = nil
			cleared = true
		}
		s.mu.Unlock()

		if cleared {
			s.log.WithField("dailyListID", id.Hex()).
				Info("Daily list đang chọn đã bị xóa từ xa, xóa selection")
			s.switchSelectedSubscription(nil)
		}
		return
	}

	list, ok := s.decodeDailyList(docs[0])
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Selection có thể đã đổi trong lúc event còn trong queue
	if s.selectedID != nil && *s.selectedID == id && list.ID == id {
		clone := list.Clone()
		s.selected = &clone
	}
}

// applyDailyLists thay thế cache daily lists, dựng lại keys (mới nhất trước)
// và re-resolve selection. Nếu list đang chọn biến mất khỏi snapshot
// (đã bị xóa hoặc submit bởi người khác), selection bị xóa.
func (s *Session) applyDailyLists(docs []bson.Raw) {
	lists := make([]models.DailyList, 0, len(docs))
	for _, doc := range docs {
		list, ok := s.decodeDailyList(doc)
		if !ok {
			continue
		}
		lists = append(lists, list)
	}

	// Timestamp ISO 8601 sắp xếp được theo thứ tự chuỗi, mới nhất trước
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].Timestamp > lists[j].Timestamp
	})

	keys := make([]models.DailyListKey, 0, len(lists))
	for _, list := range lists {
		keys = append(keys, models.DailyListKey{
			ID:        list.ID,
			Creator:   list.Creator,
			Timestamp: list.Timestamp,
		})
	}

	s.mu.Lock()
	s.dailyLists = lists
	s.dailyListKeys = keys
	s.dailyListsLoaded = true

	if s.selectedID == nil {
		s.mu.Unlock()
		return
	}
	for i := range lists {
		if lists[i].ID == *s.selectedID {
			clone := lists[i].Clone()
			s.selected = &clone
			s.mu.Unlock()
			return
		}
	}
	vanishedID := *s.selectedID
	s.selectedID = nil
	s.selected = nil
	s.mu.Unlock()

	s.log.WithField("dailyListID", vanishedID.Hex()).
		Info("Daily list đang chọn không còn trong snapshot, xóa selection")
	s.switchSelectedSubscription(nil)
}
