package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/store"
)

func TestCreateDailyList(t *testing.T) {
	mem := store.NewMemoryStore()
	session := newTestSession(t, mem)
	ctx := context.Background()

	id, err := session.CreateDailyList(ctx, "an.nguyen@example.org")
	if err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}

	// List mới được chọn ngay
	list, err := session.DailyList()
	if err != nil {
		t.Fatalf("DailyList trả về lỗi: %v", err)
	}
	if list.ID != id {
		t.Errorf("List đang chọn phải là list vừa tạo")
	}
	if list.Creator != "an.nguyen" {
		t.Errorf("Creator phải là phần trước @ của email, nhận được %q", list.Creator)
	}
	if list.Organization != testOrg {
		t.Errorf("Organization phải là %q, nhận được %q", testOrg, list.Organization)
	}
	if list.Timestamp == "" {
		t.Error("Timestamp không được rỗng")
	}
	if list.Note == nil || len(list.Note) != 0 {
		t.Errorf("Note phải là mảng rỗng, nhận được %v", list.Note)
	}
	if len(list.Contacts) != 0 {
		t.Errorf("Contacts phải rỗng, nhận được %v", list.Contacts)
	}

	// Document phải nằm trên store
	docs, err := mem.Query(ctx, store.CollDailyLists, bson.M{"_id": id})
	if err != nil || len(docs) != 1 {
		t.Errorf("Daily list phải tồn tại trên store: docs=%d err=%v", len(docs), err)
	}
}

func TestCreateDailyListRequiresEmail(t *testing.T) {
	session := newTestSession(t, store.NewMemoryStore())
	if _, err := session.CreateDailyList(context.Background(), "   "); !errors.Is(err, common.ErrRequiredField) {
		t.Errorf("Email rỗng phải trả về ErrRequiredField, nhận được %v", err)
	}
}

func TestSelectDailyList(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	id, err := mem.Insert(ctx, store.CollDailyLists, models.DailyList{
		Organization: testOrg,
		Creator:      "binh",
		Timestamp:    "2026-08-30T08:00:00.000Z",
		Note:         []string{},
	})
	if err != nil {
		t.Fatalf("Insert trả về lỗi: %v", err)
	}

	session := newTestSession(t, mem)

	waitFor(t, "daily list key xuất hiện trong cache", func() bool {
		keys, err := session.GetDailyListKeys()
		return err == nil && len(keys) == 1
	})

	if err := session.SelectDailyList(id); err != nil {
		t.Fatalf("SelectDailyList trả về lỗi: %v", err)
	}
	list, err := session.DailyList()
	if err != nil || list.Creator != "binh" {
		t.Errorf("List đang chọn không đúng: %+v err=%v", list, err)
	}

	// Chọn list không tồn tại
	if err := session.SelectDailyList(primitive.NewObjectID()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Chọn list không tồn tại phải trả về ErrNotFound, nhận được %v", err)
	}
}

func TestOperationsWithoutSelection(t *testing.T) {
	session := newTestSession(t, store.NewMemoryStore())
	ctx := context.Background()

	if err := session.UpdateNote(ctx, []string{"x"}); !errors.Is(err, common.ErrNoDailyListSelected) {
		t.Errorf("UpdateNote không có selection phải trả về ErrNoDailyListSelected, nhận được %v", err)
	}
	if err := session.ToggleClient(ctx, primitive.NewObjectID()); !errors.Is(err, common.ErrNoDailyListSelected) {
		t.Errorf("ToggleClient không có selection phải trả về ErrNoDailyListSelected, nhận được %v", err)
	}
	if err := session.SubmitDailyList(ctx); !errors.Is(err, common.ErrNoDailyListSelected) {
		t.Errorf("SubmitDailyList không có selection phải trả về ErrNoDailyListSelected, nhận được %v", err)
	}
}

func TestUpdateNoteLastWriteWins(t *testing.T) {
	mem := store.NewMemoryStore()
	session := newTestSession(t, mem)
	ctx := context.Background()

	id, err := session.CreateDailyList(ctx, "an@example.org")
	if err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}

	// Hai bản note nối tiếp: bản sau thắng nguyên field, không merge
	if err := session.UpdateNote(ctx, []string{"bản của an"}); err != nil {
		t.Fatalf("UpdateNote trả về lỗi: %v", err)
	}
	if err := session.UpdateNote(ctx, []string{"bản của binh", "dòng 2"}); err != nil {
		t.Fatalf("UpdateNote trả về lỗi: %v", err)
	}

	docs, err := mem.Query(ctx, store.CollDailyLists, bson.M{"_id": id})
	if err != nil || len(docs) != 1 {
		t.Fatalf("Query daily list thất bại: %v", err)
	}
	var doc struct {
		Note []string `bson:"note"`
	}
	if err := bson.Unmarshal(docs[0], &doc); err != nil {
		t.Fatalf("Không decode được document: %v", err)
	}
	if len(doc.Note) != 2 || doc.Note[0] != "bản của binh" {
		t.Errorf("Note phải là nguyên bản ghi sau: %v", doc.Note)
	}
}

func TestUpdateContactsFromStaleSnapshotLastWriteWins(t *testing.T) {
	mem := store.NewMemoryStore()
	session := newTestSession(t, mem)
	ctx := context.Background()

	id, err := session.CreateDailyList(ctx, "an@example.org")
	if err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}

	// Hai người cùng đọc một snapshot rồi mỗi người thêm client của mình.
	// Nguyên mảng contacts bị ghi đè: bản ghi sau thắng, client của người
	// ghi trước biến mất.
	snapshot, err := session.DailyList()
	if err != nil {
		t.Fatalf("DailyList trả về lỗi: %v", err)
	}

	clientA := primitive.NewObjectID()
	clientB := primitive.NewObjectID()

	contactsA := append(snapshot.Clone().Contacts, models.Contact{
		ClientID:  clientA,
		Timestamp: "2026-08-30T08:00:00.000Z",
	})
	contactsB := append(snapshot.Clone().Contacts, models.Contact{
		ClientID:  clientB,
		Timestamp: "2026-08-30T08:00:05.000Z",
	})

	if err := session.UpdateContacts(ctx, contactsA); err != nil {
		t.Fatalf("UpdateContacts bản A trả về lỗi: %v", err)
	}
	if err := session.UpdateContacts(ctx, contactsB); err != nil {
		t.Fatalf("UpdateContacts bản B trả về lỗi: %v", err)
	}

	docs, err := mem.Query(ctx, store.CollDailyLists, bson.M{"_id": id})
	if err != nil || len(docs) != 1 {
		t.Fatalf("Query daily list thất bại: %v", err)
	}
	var doc struct {
		Contacts []models.Contact `bson:"contacts"`
	}
	if err := bson.Unmarshal(docs[0], &doc); err != nil {
		t.Fatalf("Không decode được document: %v", err)
	}
	if len(doc.Contacts) != 1 || doc.Contacts[0].ClientID != clientB {
		t.Fatalf("Bản ghi sau phải thay thế nguyên mảng contacts, nhận được %+v", doc.Contacts)
	}
	for _, c := range doc.Contacts {
		if c.ClientID == clientA {
			t.Error("Contact của bản ghi trước không được còn lại sau khi bị ghi đè")
		}
	}
}

func TestToggleClientAddsAndRemoves(t *testing.T) {
	mem := store.NewMemoryStore()
	session := newTestSession(t, mem)
	ctx := context.Background()

	if _, err := session.CreateDailyList(ctx, "an@example.org"); err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}

	session.SetCurrentLocation(&CurrentLocation{
		CityUUID:             "city-1",
		LocationCategoryUUID: "cat-1",
		Location:             "Main Street Shelter",
	})

	clientID := primitive.NewObjectID()

	// Toggle lần 1: thêm contact với seed từ current location
	if err := session.ToggleClient(ctx, clientID); err != nil {
		t.Fatalf("ToggleClient trả về lỗi: %v", err)
	}
	var contact models.Contact
	waitFor(t, "contact xuất hiện trong list", func() bool {
		list, err := session.DailyList()
		if err != nil || len(list.Contacts) != 1 {
			return false
		}
		contact = list.Contacts[0]
		return true
	})
	if contact.ClientID != clientID {
		t.Error("Contact phải trỏ về client vừa toggle")
	}
	if contact.CityUUID != "city-1" || contact.Location != "Main Street Shelter" {
		t.Errorf("Contact phải được seed bằng current location: %+v", contact)
	}
	if contact.Timestamp == "" {
		t.Error("Contact phải có timestamp")
	}
	if contact.Services != nil {
		t.Errorf("Contact mới phải có services rỗng, nhận được %+v", contact.Services)
	}

	// Toggle lần 2: gỡ contact, kể cả khi đã có services nhập dở
	if err := session.UpdateContactServices(ctx, clientID, []models.ContactService{
		{UUID: "svc-meal", Service: "Meal", Count: 2},
	}); err != nil {
		t.Fatalf("UpdateContactServices trả về lỗi: %v", err)
	}
	if err := session.ToggleClient(ctx, clientID); err != nil {
		t.Fatalf("ToggleClient lần 2 trả về lỗi: %v", err)
	}
	waitFor(t, "contact bị gỡ khỏi list", func() bool {
		list, err := session.DailyList()
		return err == nil && len(list.Contacts) == 0
	})
}

func TestUpdateContactsRejectsDuplicateClient(t *testing.T) {
	session := newTestSession(t, store.NewMemoryStore())
	ctx := context.Background()

	if _, err := session.CreateDailyList(ctx, "an@example.org"); err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}

	clientID := primitive.NewObjectID()
	contacts := []models.Contact{
		{ClientID: clientID, Timestamp: "2026-08-30T08:00:00.000Z"},
		{ClientID: clientID, Timestamp: "2026-08-30T09:00:00.000Z"},
	}
	if err := session.UpdateContacts(ctx, contacts); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("Client trùng trong contacts phải bị từ chối, nhận được %v", err)
	}
}

func TestUpdateContactServicesUnknownClient(t *testing.T) {
	session := newTestSession(t, store.NewMemoryStore())
	ctx := context.Background()

	if _, err := session.CreateDailyList(ctx, "an@example.org"); err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}
	err := session.UpdateContactServices(ctx, primitive.NewObjectID(), nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Client không có trong list phải trả về ErrNotFound, nhận được %v", err)
	}
}
