package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/store"
)

// CreateDailyList tạo daily list mới cho tổ chức của session và chọn nó làm
// list hiện tại. Creator là phần trước dấu @ của email người tạo.
//
// Tham số:
//   - ctx: context cho thao tác insert.
//   - email: email của người tạo, dùng để suy ra creator.
//
// Trả về:
//   - ObjectID của list vừa tạo.
//   - error: nếu email rỗng hoặc insert thất bại.
func (s *Session) CreateDailyList(ctx context.Context, email string) (primitive.ObjectID, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return primitive.NilObjectID, fmt.Errorf("email is required: %w", common.ErrRequiredField)
	}

	creator := email
	if at := strings.Index(email, "@"); at >= 0 {
		creator = email[:at]
	}

	list := models.DailyList{
		Organization: s.organization,
		Creator:      creator,
		Timestamp:    nowTimestamp(),
		Note:         []string{},
		Contacts:     []models.Contact{},
	}
	if err := s.validate.Struct(dailyListCreateInput{Creator: creator, Organization: s.organization}); err != nil {
		return primitive.NilObjectID, fmt.Errorf("%v: %w", err, common.ErrInvalidInput)
	}

	id, err := s.store.Insert(ctx, store.CollDailyLists, list)
	if err != nil {
		return primitive.NilObjectID, err
	}
	list.ID = id

	s.log.WithField("dailyListID", id.Hex()).WithField("creator", creator).Info("Đã tạo daily list mới")

	s.mu.Lock()
	s.selectedID = &id
	clone := list.Clone()
	s.selected = &clone
	s.mu.Unlock()

	s.switchSelectedSubscription(&id)
	return id, nil
}

// dailyListCreateInput là input validation cho CreateDailyList.
type dailyListCreateInput struct {
	Creator      string `validate:"required"`
	Organization string `validate:"required"`
}

// SelectDailyList chọn một daily list đang mở làm list hiện tại và chuyển
// subscription riêng sang list đó. List phải có trong cache (snapshot
// dailylists đã load).
func (s *Session) SelectDailyList(id primitive.ObjectID) error {
	s.mu.Lock()
	if err := s.slotErrLocked(store.CollDailyLists, s.dailyListsLoaded); err != nil {
		s.mu.Unlock()
		return err
	}
	found := false
	for i := range s.dailyLists {
		if s.dailyLists[i].ID == id {
			s.selectedID = &id
			clone := s.dailyLists[i].Clone()
			s.selected = &clone
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return common.ErrNotFound
	}
	s.switchSelectedSubscription(&id)
	return nil
}

// DeselectDailyList bỏ chọn list hiện tại (không xóa list trên store)
// và đóng subscription riêng của nó.
func (s *Session) DeselectDailyList() {
	s.mu.Lock()
	s.selectedID = nil
	s.selected = nil
	s.mu.Unlock()

	s.switchSelectedSubscription(nil)
}

// DailyList trả về bản sao của daily list đang chọn.
func (s *Session) DailyList() (*models.DailyList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil, common.ErrNoDailyListSelected
	}
	clone := s.selected.Clone()
	return &clone, nil
}

// selectedForWrite trả về id và bản sao list đang chọn để chuẩn bị một write.
func (s *Session) selectedForWrite() (primitive.ObjectID, models.DailyList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == nil || s.selected == nil {
		return primitive.NilObjectID, models.DailyList{}, common.ErrNoDailyListSelected
	}
	return *s.selectedID, s.selected.Clone(), nil
}

// UpdateNote ghi đè toàn bộ note của list đang chọn (last-write-wins:
// hai người cùng sửa note thì bản ghi sau thắng nguyên field).
func (s *Session) UpdateNote(ctx context.Context, note []string) error {
	id, _, err := s.selectedForWrite()
	if err != nil {
		return err
	}
	if note == nil {
		note = []string{}
	}

	if err := s.store.WriteField(ctx, store.CollDailyLists, id, "note", note); err != nil {
		return err
	}

	s.mu.Lock()
	if s.selectedID != nil && *s.selectedID == id && s.selected != nil {
		cloned := make([]string, len(note))
		copy(cloned, note)
		s.selected.Note = cloned
	}
	s.mu.Unlock()
	return nil
}

// UpdateContacts ghi đè toàn bộ mảng contacts của list đang chọn.
// Mỗi client chỉ được xuất hiện một lần trong mảng.
func (s *Session) UpdateContacts(ctx context.Context, contacts []models.Contact) error {
	id, _, err := s.selectedForWrite()
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	seen := map[primitive.ObjectID]bool{}
	for _, contact := range contacts {
		if contact.ClientID == primitive.NilObjectID {
			return fmt.Errorf("contact thiếu clientId: %w", common.ErrInvalidInput)
		}
		if seen[contact.ClientID] {
			return fmt.Errorf("client %s xuất hiện nhiều lần trong contacts: %w",
				contact.ClientID.Hex(), common.ErrInvalidInput)
		}
		seen[contact.ClientID] = true
	}

	if err := s.store.WriteField(ctx, store.CollDailyLists, id, "contacts", contacts); err != nil {
		return err
	}

	s.mu.Lock()
	if s.selectedID != nil && *s.selectedID == id && s.selected != nil {
		cloned := make([]models.Contact, len(contacts))
		for i, c := range contacts {
			cloned[i] = c.Clone()
		}
		s.selected.Contacts = cloned
	}
	s.mu.Unlock()
	return nil
}

// ToggleClient thêm hoặc gỡ một client khỏi list đang chọn.
// Thêm mới thì contact được seed bằng current location và timestamp hiện tại,
// services rỗng. Gỡ thì toàn bộ contact của client đó (kèm services đã nhập)
// bị loại khỏi mảng.
func (s *Session) ToggleClient(ctx context.Context, clientID primitive.ObjectID) error {
	if clientID == primitive.NilObjectID {
		return fmt.Errorf("clientID is required: %w", common.ErrRequiredField)
	}

	_, list, err := s.selectedForWrite()
	if err != nil {
		return err
	}

	contacts := list.Contacts
	if idx, _ := list.FindContact(clientID); idx >= 0 {
		contacts = append(contacts[:idx], contacts[idx+1:]...)
	} else {
		contact := models.Contact{
			ClientID:  clientID,
			Timestamp: nowTimestamp(),
		}
		s.mu.RLock()
		if s.currentLocation != nil {
			contact.CityUUID = s.currentLocation.CityUUID
			contact.LocationCategoryUUID = s.currentLocation.LocationCategoryUUID
			contact.Location = s.currentLocation.Location
		}
		s.mu.RUnlock()
		contacts = append(contacts, contact)
	}

	return s.UpdateContacts(ctx, contacts)
}

// UpdateContactServices thay thế mảng services của contact một client trong
// list đang chọn, rồi ghi đè toàn bộ mảng contacts.
func (s *Session) UpdateContactServices(ctx context.Context, clientID primitive.ObjectID, contactServices []models.ContactService) error {
	_, list, err := s.selectedForWrite()
	if err != nil {
		return err
	}

	idx, _ := list.FindContact(clientID)
	if idx < 0 {
		return fmt.Errorf("client %s không có trong list đang chọn: %w", clientID.Hex(), common.ErrNotFound)
	}
	list.Contacts[idx].Services = contactServices

	return s.UpdateContacts(ctx, list.Contacts)
}
