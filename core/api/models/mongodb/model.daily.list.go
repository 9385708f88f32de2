package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyList là worksheet cộng tác của một ngày làm việc: note chung và
// danh sách contacts đang dở. Document này sống trong collection dailylists
// cho tới khi submit thành công, sau đó bị xóa.
type DailyList struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Organization string             `json:"organization" bson:"organization" index:"single:1"`
	Creator      string             `json:"creator" bson:"creator"`
	Timestamp    string             `json:"timestamp" bson:"timestamp"` // ISO 8601 UTC
	Note         []string           `json:"note" bson:"note"`
	Contacts     []Contact          `json:"contacts" bson:"contacts"`
}

// DailyListKey là projection nhẹ của DailyList dùng cho màn hình chọn list:
// chỉ identity, không payload.
type DailyListKey struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Creator   string             `json:"creator" bson:"creator"`
	Timestamp string             `json:"timestamp" bson:"timestamp"`
}

// Contact là một visit đang dở trong daily list. Mỗi client xuất hiện tối đa
// một lần trong Contacts của một list. CityUUID/LocationCategoryUUID là
// reference vào cây locations; Location là display string.
type Contact struct {
	ClientID             primitive.ObjectID `json:"clientId" bson:"clientId"`
	Timestamp            string             `json:"timestamp" bson:"timestamp"` // ISO 8601 UTC
	CityUUID             string             `json:"cityUUID,omitempty" bson:"cityUUID,omitempty"`
	LocationCategoryUUID string             `json:"locationCategoryUUID,omitempty" bson:"locationCategoryUUID,omitempty"`
	Location             string             `json:"location,omitempty" bson:"location,omitempty"`
	Services             []ContactService   `json:"services,omitempty" bson:"services,omitempty"`
}

// ContactService là một dịch vụ đã chọn trên một contact. UUID trỏ về định
// nghĩa Service; các field còn lại là payload theo inputType.
type ContactService struct {
	UUID    string   `json:"uuid" bson:"uuid"`
	Service string   `json:"service" bson:"service"`
	Text    string   `json:"text,omitempty" bson:"text,omitempty"`
	Count   int      `json:"count,omitempty" bson:"count,omitempty"`
	Units   string   `json:"units,omitempty" bson:"units,omitempty"`
	List    []string `json:"list,omitempty" bson:"list,omitempty"`
}

// Clone trả về bản sao sâu của DailyList. Slice rỗng được giữ nguyên là
// rỗng chứ không sụp về nil: note/contacts của một list mới luôn là [].
func (dl DailyList) Clone() DailyList {
	clone := dl
	if dl.Note != nil {
		clone.Note = make([]string, len(dl.Note))
		copy(clone.Note, dl.Note)
	}
	if dl.Contacts != nil {
		clone.Contacts = make([]Contact, len(dl.Contacts))
		for i, c := range dl.Contacts {
			clone.Contacts[i] = c.Clone()
		}
	}
	return clone
}

// Clone trả về bản sao sâu của Contact
func (c Contact) Clone() Contact {
	clone := c
	if c.Services != nil {
		clone.Services = make([]ContactService, len(c.Services))
		for i, s := range c.Services {
			clone.Services[i] = s.Clone()
		}
	}
	return clone
}

// Clone trả về bản sao sâu của ContactService
func (s ContactService) Clone() ContactService {
	clone := s
	if s.List != nil {
		clone.List = make([]string, len(s.List))
		copy(clone.List, s.List)
	}
	return clone
}

// FindContact tìm contact của một client trong list.
// Trả về index và pointer, hoặc (-1, nil) nếu client chưa có trong list.
func (dl *DailyList) FindContact(clientID primitive.ObjectID) (int, *Contact) {
	for i := range dl.Contacts {
		if dl.Contacts[i].ClientID == clientID {
			return i, &dl.Contacts[i]
		}
	}
	return -1, nil
}
