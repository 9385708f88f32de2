package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDailyListClonePreservesEmptySlices(t *testing.T) {
	list := DailyList{
		ID:           primitive.NewObjectID(),
		Organization: "org-test",
		Creator:      "an.nguyen",
		Timestamp:    "2026-08-30T10:00:00.000Z",
		Note:         []string{},
		Contacts:     []Contact{},
	}

	clone := list.Clone()

	if clone.Note == nil || len(clone.Note) != 0 {
		t.Errorf("Note rỗng phải giữ nguyên là mảng rỗng, nhận được %#v", clone.Note)
	}
	if clone.Contacts == nil || len(clone.Contacts) != 0 {
		t.Errorf("Contacts rỗng phải giữ nguyên là mảng rỗng, nhận được %#v", clone.Contacts)
	}
}

func TestDailyListCloneIsDeep(t *testing.T) {
	clientID := primitive.NewObjectID()
	list := DailyList{
		Note: []string{"dòng 1"},
		Contacts: []Contact{
			{
				ClientID: clientID,
				Services: []ContactService{
					{UUID: "svc-1", Service: "Clothing", List: []string{"Socks"}},
				},
			},
		},
	}

	clone := list.Clone()
	clone.Note[0] = "đã sửa"
	clone.Contacts[0].Services[0].List[0] = "Jacket"
	clone.Contacts[0].Services[0].Count = 9

	if list.Note[0] != "dòng 1" {
		t.Errorf("Sửa clone không được lan sang Note gốc, nhận được %q", list.Note[0])
	}
	if list.Contacts[0].Services[0].List[0] != "Socks" {
		t.Errorf("Sửa clone không được lan sang Services gốc, nhận được %q", list.Contacts[0].Services[0].List[0])
	}
	if list.Contacts[0].Services[0].Count != 0 {
		t.Errorf("Count gốc phải giữ nguyên, nhận được %d", list.Contacts[0].Services[0].Count)
	}
}

func TestFindContact(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	list := DailyList{Contacts: []Contact{{ClientID: a}, {ClientID: b}}}

	idx, contact := list.FindContact(b)
	if idx != 1 || contact == nil || contact.ClientID != b {
		t.Errorf("Phải tìm thấy contact của client ở index 1, nhận được idx=%d contact=%v", idx, contact)
	}

	idx, contact = list.FindContact(primitive.NewObjectID())
	if idx != -1 || contact != nil {
		t.Errorf("Client không có trong list phải trả về (-1, nil), nhận được idx=%d", idx)
	}
}
