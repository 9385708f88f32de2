package store

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lovelidevs/HmisGo/core/common"
)

// MemoryStore là implementation in-memory của Store, dùng cho test.
// Document được giữ theo thứ tự chèn. Các hook cho phép test tiêm lỗi vào
// từng operation để mô phỏng write bị reject giữa chừng.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]bson.M
	subs []*memorySubscription

	// Hooks tiêm lỗi cho test. Trả về error khác nil thì operation thất bại
	// trước khi chạm vào dữ liệu.
	InsertHook     func(collection string, doc interface{}) error
	WriteFieldHook func(collection string, id primitive.ObjectID, field string, value interface{}) error
	DeleteHook     func(collection string, id primitive.ObjectID) error
	SubscribeHook  func(collection string) error
}

// NewMemoryStore tạo MemoryStore rỗng.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]bson.M),
	}
}

type memorySubscription struct {
	store      *MemoryStore
	collection string
	filter     bson.M
	events     chan ChangeEvent

	// mu bảo vệ closed và việc close(events): deliver chạy sau khi store đã
	// nhả lock nên Close đồng thời không được đóng channel dưới chân một send.
	mu     sync.Mutex
	closed bool
}

func (sub *memorySubscription) Events() <-chan ChangeEvent {
	return sub.events
}

func (sub *memorySubscription) Close() {
	sub.store.removeSubscription(sub)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.events)
}

// send gửi event nếu subscription chưa đóng. Channel đầy thì bỏ event,
// snapshot kế tiếp sẽ bao trùm thay đổi này.
func (sub *memorySubscription) send(event ChangeEvent) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	select {
	case sub.events <- event:
	default:
	}
}

func (s *MemoryStore) removeSubscription(sub *memorySubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscribe đăng ký theo dõi collection; snapshot ban đầu nằm sẵn trong channel.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filter bson.M) (Subscription, error) {
	if s.SubscribeHook != nil {
		if err := s.SubscribeHook(collection); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &memorySubscription{
		store:      s,
		collection: collection,
		filter:     filter,
		// Buffer đủ lớn để test không cần consumer chạy song song
		events: make(chan ChangeEvent, 64),
	}
	sub.events <- ChangeEvent{Collection: collection, Docs: s.snapshotLocked(collection, filter)}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Insert chèn document mới. Doc được marshal qua bson để mô phỏng wire format.
func (s *MemoryStore) Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	if s.InsertHook != nil {
		if err := s.InsertHook(collection, doc); err != nil {
			return primitive.NilObjectID, err
		}
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidFormat
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return primitive.NilObjectID, common.ErrInvalidFormat
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id == primitive.NilObjectID {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	s.mu.Lock()
	s.docs[collection] = append(s.docs[collection], m)
	notifications := s.pendingNotificationsLocked(collection)
	s.mu.Unlock()

	s.deliver(notifications)
	return id, nil
}

// WriteField ghi đè nguyên field trên document theo _id (last-write-wins).
func (s *MemoryStore) WriteField(ctx context.Context, collection string, id primitive.ObjectID, field string, value interface{}) error {
	if s.WriteFieldHook != nil {
		if err := s.WriteFieldHook(collection, id, field, value); err != nil {
			return common.NewWriteRejected(collection, field, err)
		}
	}

	// Chuẩn hóa value qua bson round-trip để doc lưu cùng dạng với mongo
	wrapped, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		return common.ErrInvalidFormat
	}
	var unwrap bson.M
	if err := bson.Unmarshal(wrapped, &unwrap); err != nil {
		return common.ErrInvalidFormat
	}

	s.mu.Lock()
	doc := s.findLocked(collection, id)
	if doc == nil {
		s.mu.Unlock()
		return common.NewWriteRejected(collection, field, common.ErrNotFound)
	}
	doc[field] = unwrap["v"]
	notifications := s.pendingNotificationsLocked(collection)
	s.mu.Unlock()

	s.deliver(notifications)
	return nil
}

// DeleteDocument xóa document theo _id.
func (s *MemoryStore) DeleteDocument(ctx context.Context, collection string, id primitive.ObjectID) error {
	if s.DeleteHook != nil {
		if err := s.DeleteHook(collection, id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	docs := s.docs[collection]
	found := false
	for i, doc := range docs {
		if docID, ok := doc["_id"].(primitive.ObjectID); ok && docID == id {
			s.docs[collection] = append(docs[:i], docs[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	notifications := s.pendingNotificationsLocked(collection)
	s.mu.Unlock()

	s.deliver(notifications)
	return nil
}

// Query trả về các document khớp filter tại thời điểm gọi.
func (s *MemoryStore) Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection, filter), nil
}

func (s *MemoryStore) findLocked(collection string, id primitive.ObjectID) bson.M {
	for _, doc := range s.docs[collection] {
		if docID, ok := doc["_id"].(primitive.ObjectID); ok && docID == id {
			return doc
		}
	}
	return nil
}

func (s *MemoryStore) snapshotLocked(collection string, filter bson.M) []bson.Raw {
	result := []bson.Raw{}
	for _, doc := range s.docs[collection] {
		if !matchFilter(doc, filter) {
			continue
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			continue
		}
		result = append(result, raw)
	}
	return result
}

type pendingNotification struct {
	sub   *memorySubscription
	event ChangeEvent
}

// pendingNotificationsLocked tính snapshot mới cho mọi subscription trên
// collection. Gửi thực hiện sau khi nhả lock để consumer có thể gọi ngược
// vào store mà không deadlock.
func (s *MemoryStore) pendingNotificationsLocked(collection string) []pendingNotification {
	pending := []pendingNotification{}
	for _, sub := range s.subs {
		if sub.collection != collection {
			continue
		}
		pending = append(pending, pendingNotification{
			sub:   sub,
			event: ChangeEvent{Collection: collection, Docs: s.snapshotLocked(collection, sub.filter)},
		})
	}
	return pending
}

func (s *MemoryStore) deliver(pending []pendingNotification) {
	for _, p := range pending {
		p.sub.send(p.event)
	}
}

// matchFilter kiểm tra equality trên các field top-level của filter.
// Chỉ hỗ trợ equality match, đủ cho các filter của hệ thống.
func matchFilter(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		got, exists := doc[key]
		if !exists {
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
