package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/store"
)

// submissionFixture dựng sẵn store với cây locations, hai client và một daily
// list đang chọn có note và một contact cho mỗi client.
func submissionFixture(t *testing.T) (*store.MemoryStore, *Session, []primitive.ObjectID) {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := mem.Insert(ctx, store.CollLocations, models.LocationDocument{
		Organization: testOrg,
		Cities: []models.City{
			{
				UUID: "city-1",
				City: "Downtown",
				Categories: []models.LocationCategory{
					{UUID: "cat-1", Category: "Shelters"},
				},
			},
		},
	}); err != nil {
		t.Fatalf("Insert locations trả về lỗi: %v", err)
	}

	clientIDs := make([]primitive.ObjectID, 0, 2)
	for _, lastName := range []string{"Nguyen", "Tran"} {
		id, err := mem.Insert(ctx, store.CollClients, models.Client{
			Organization: testOrg,
			LastName:     lastName,
		})
		if err != nil {
			t.Fatalf("Insert client trả về lỗi: %v", err)
		}
		clientIDs = append(clientIDs, id)
	}

	session := newTestSession(t, mem)
	waitFor(t, "locations load xong", func() bool {
		loc, err := session.GetLocations()
		return err == nil && loc != nil
	})

	if _, err := session.CreateDailyList(ctx, "an@example.org"); err != nil {
		t.Fatalf("CreateDailyList trả về lỗi: %v", err)
	}
	if err := session.UpdateNote(ctx, []string{"gặp hai người ở shelter"}); err != nil {
		t.Fatalf("UpdateNote trả về lỗi: %v", err)
	}
	contacts := []models.Contact{
		{
			ClientID:             clientIDs[0],
			Timestamp:            "2026-08-30T21:15:00.000Z",
			CityUUID:             "city-1",
			LocationCategoryUUID: "cat-1",
			Location:             "Main Street Shelter",
			Services: []models.ContactService{
				{UUID: "svc-meal", Service: "Meal", Count: 2, Units: "meals"},
			},
		},
		{
			ClientID:  clientIDs[1],
			Timestamp: "2026-08-30T21:30:00.000Z",
		},
	}
	if err := session.UpdateContacts(ctx, contacts); err != nil {
		t.Fatalf("UpdateContacts trả về lỗi: %v", err)
	}
	waitFor(t, "list hội tụ đủ note và contacts", func() bool {
		list, err := session.DailyList()
		return err == nil && len(list.Note) == 1 && len(list.Contacts) == 2
	})
	return mem, session, clientIDs
}

func queryClient(t *testing.T, mem *store.MemoryStore, id primitive.ObjectID) models.Client {
	t.Helper()
	docs, err := mem.Query(context.Background(), store.CollClients, bson.M{"_id": id})
	if err != nil || len(docs) != 1 {
		t.Fatalf("Query client thất bại: docs=%d err=%v", len(docs), err)
	}
	var client models.Client
	if err := bson.Unmarshal(docs[0], &client); err != nil {
		t.Fatalf("Không decode được client: %v", err)
	}
	return client
}

func countDocs(t *testing.T, mem *store.MemoryStore, collection string) int {
	t.Helper()
	docs, err := mem.Query(context.Background(), collection, bson.M{"organization": testOrg})
	if err != nil {
		t.Fatalf("Query %s thất bại: %v", collection, err)
	}
	return len(docs)
}

func TestSubmitDailyListSuccess(t *testing.T) {
	mem, session, clientIDs := submissionFixture(t)
	ctx := context.Background()

	list, err := session.DailyList()
	if err != nil {
		t.Fatalf("DailyList trả về lỗi: %v", err)
	}

	if err := session.SubmitDailyList(ctx); err != nil {
		t.Fatalf("SubmitDailyList trả về lỗi: %v", err)
	}

	// Note được lưu thành document độc lập với datetime là thời điểm submit
	notes, err := mem.Query(ctx, store.CollNotes, bson.M{"organization": testOrg})
	if err != nil || len(notes) != 1 {
		t.Fatalf("Phải có đúng 1 note: docs=%d err=%v", len(notes), err)
	}
	var note models.Note
	if err := bson.Unmarshal(notes[0], &note); err != nil {
		t.Fatalf("Không decode được note: %v", err)
	}
	if _, err := time.Parse(ISOTimestampLayout, note.Datetime); err != nil {
		t.Errorf("Note datetime phải theo wire format, nhận được %q: %v", note.Datetime, err)
	}
	// Timestamp ISO UTC so sánh được theo thứ tự chuỗi: submit xảy ra sau khi tạo list
	if note.Datetime < list.Timestamp {
		t.Errorf("Note datetime phải là thời điểm submit, không sớm hơn lúc tạo list: %q < %q",
			note.Datetime, list.Timestamp)
	}
	if len(note.Content) != 1 || note.Content[0] != "gặp hai người ở shelter" {
		t.Errorf("Note content không đúng: %v", note.Content)
	}

	// Contact đầu: uuid được resolve sang display string trong history
	first := queryClient(t, mem, clientIDs[0])
	if len(first.ServiceHistory) != 1 {
		t.Fatalf("Client đầu phải có 1 entry history, nhận được %d", len(first.ServiceHistory))
	}
	entry := first.ServiceHistory[0]
	if entry.Date != "2026-08-30" || entry.Time != "2026-08-30T21:15:00.000Z" {
		t.Errorf("Date/Time không đúng: %q %q", entry.Date, entry.Time)
	}
	if entry.City != "Downtown" || entry.LocationCategory != "Shelters" || entry.Location != "Main Street Shelter" {
		t.Errorf("Location không được resolve: %+v", entry)
	}
	if len(entry.Services) != 1 || entry.Services[0].Service != "Meal" || entry.Services[0].Count != 2 {
		t.Errorf("Services trong history không đúng: %+v", entry.Services)
	}

	second := queryClient(t, mem, clientIDs[1])
	if len(second.ServiceHistory) != 1 {
		t.Errorf("Client thứ hai phải có 1 entry history, nhận được %d", len(second.ServiceHistory))
	}

	// List bị xóa và selection biến mất
	if countDocs(t, mem, store.CollDailyLists) != 0 {
		t.Error("Daily list phải bị xóa sau khi submit")
	}
	if _, err := session.DailyList(); !errors.Is(err, common.ErrNoDailyListSelected) {
		t.Errorf("Selection phải bị xóa sau submit, nhận được %v", err)
	}
}

func TestSubmitDailyListEmptyNoteSkipsInsert(t *testing.T) {
	mem, session, _ := submissionFixture(t)
	ctx := context.Background()

	if err := session.UpdateNote(ctx, nil); err != nil {
		t.Fatalf("UpdateNote trả về lỗi: %v", err)
	}
	if err := session.SubmitDailyList(ctx); err != nil {
		t.Fatalf("SubmitDailyList trả về lỗi: %v", err)
	}
	if countDocs(t, mem, store.CollNotes) != 0 {
		t.Error("Note rỗng thì không được tạo note document")
	}
}

func TestSubmitDailyListPartialFailure(t *testing.T) {
	mem, session, clientIDs := submissionFixture(t)
	ctx := context.Background()

	// Contact thứ hai (index 1) fail khi ghi serviceHistory
	injected := errors.New("mất kết nối giữa chừng")
	mem.WriteFieldHook = func(collection string, id primitive.ObjectID, field string, value interface{}) error {
		if collection == store.CollClients && field == "serviceHistory" && id == clientIDs[1] {
			return injected
		}
		return nil
	}

	err := session.SubmitDailyList(ctx)
	var partial *common.PartialSubmissionError
	if !errors.As(err, &partial) {
		t.Fatalf("Phải trả về PartialSubmissionError, nhận được %v", err)
	}
	if partial.Step != "contact" || partial.FailedIndex != 1 || !partial.NoteCreated {
		t.Errorf("Thông tin lỗi không đúng: step=%q index=%d noteCreated=%v",
			partial.Step, partial.FailedIndex, partial.NoteCreated)
	}

	// Write đã xong thì giữ nguyên: note và contact đầu còn đó, không rollback
	if countDocs(t, mem, store.CollNotes) != 1 {
		t.Error("Note đã insert phải được giữ lại")
	}
	if got := len(queryClient(t, mem, clientIDs[0]).ServiceHistory); got != 1 {
		t.Errorf("Contact đầu đã append phải được giữ lại, history=%d", got)
	}
	if got := len(queryClient(t, mem, clientIDs[1]).ServiceHistory); got != 0 {
		t.Errorf("Contact lỗi không được append, history=%d", got)
	}

	// List chưa bị xóa, selection vẫn còn để người dùng retry
	if countDocs(t, mem, store.CollDailyLists) != 1 {
		t.Error("Daily list phải còn nguyên sau lỗi giữa chừng")
	}
	if _, err := session.DailyList(); err != nil {
		t.Errorf("Selection phải được giữ sau lỗi, nhận được %v", err)
	}

	// Retry nguyên list sau khi lỗi qua đi: thành công nhưng KHÔNG idempotent,
	// note và contact đầu bị ghi trùng
	mem.WriteFieldHook = nil
	if err := session.SubmitDailyList(ctx); err != nil {
		t.Fatalf("Retry submit trả về lỗi: %v", err)
	}
	if countDocs(t, mem, store.CollNotes) != 2 {
		t.Error("Retry ghi trùng note (hệ thống không khử trùng lặp)")
	}
	if got := len(queryClient(t, mem, clientIDs[0]).ServiceHistory); got != 2 {
		t.Errorf("Retry ghi trùng contact đầu, history=%d", got)
	}
	if got := len(queryClient(t, mem, clientIDs[1]).ServiceHistory); got != 1 {
		t.Errorf("Contact thứ hai chỉ được append một lần, history=%d", got)
	}
	if countDocs(t, mem, store.CollDailyLists) != 0 {
		t.Error("Daily list phải bị xóa sau retry thành công")
	}
}

func TestSubmitDailyListNoteStepFailure(t *testing.T) {
	mem, session, clientIDs := submissionFixture(t)
	ctx := context.Background()

	injected := errors.New("notes collection không ghi được")
	mem.InsertHook = func(collection string, doc interface{}) error {
		if collection == store.CollNotes {
			return injected
		}
		return nil
	}

	err := session.SubmitDailyList(ctx)
	var partial *common.PartialSubmissionError
	if !errors.As(err, &partial) {
		t.Fatalf("Phải trả về PartialSubmissionError, nhận được %v", err)
	}
	if partial.Step != "note" || partial.FailedIndex != -1 || partial.NoteCreated {
		t.Errorf("Thông tin lỗi không đúng: step=%q index=%d noteCreated=%v",
			partial.Step, partial.FailedIndex, partial.NoteCreated)
	}
	if !errors.Is(err, injected) {
		t.Error("Lỗi gốc phải unwrap được từ PartialSubmissionError")
	}

	// Lỗi ở bước đầu tiên: chưa có gì thay đổi ngoài chính note
	if got := len(queryClient(t, mem, clientIDs[0]).ServiceHistory); got != 0 {
		t.Errorf("Chưa contact nào được append, history=%d", got)
	}
	if countDocs(t, mem, store.CollDailyLists) != 1 {
		t.Error("Daily list phải còn nguyên")
	}
}

func TestSubmitDailyListMissingClient(t *testing.T) {
	mem, session, _ := submissionFixture(t)
	ctx := context.Background()

	// Thêm contact trỏ về client không tồn tại vào cuối list
	list, err := session.DailyList()
	if err != nil {
		t.Fatalf("DailyList trả về lỗi: %v", err)
	}
	contacts := append(list.Contacts, models.Contact{
		ClientID:  primitive.NewObjectID(),
		Timestamp: "2026-08-30T22:00:00.000Z",
	})
	if err := session.UpdateContacts(ctx, contacts); err != nil {
		t.Fatalf("UpdateContacts trả về lỗi: %v", err)
	}

	submitErr := session.SubmitDailyList(ctx)
	var partial *common.PartialSubmissionError
	if !errors.As(submitErr, &partial) {
		t.Fatalf("Phải trả về PartialSubmissionError, nhận được %v", submitErr)
	}
	if partial.Step != "contact" || partial.FailedIndex != 2 {
		t.Errorf("Thông tin lỗi không đúng: step=%q index=%d", partial.Step, partial.FailedIndex)
	}
	if !errors.Is(submitErr, common.ErrNotFound) {
		t.Errorf("Lỗi gốc phải là ErrNotFound, nhận được %v", submitErr)
	}
	if countDocs(t, mem, store.CollDailyLists) != 1 {
		t.Error("Daily list phải còn nguyên")
	}
}
