package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/logger"
	"github.com/lovelidevs/HmisGo/core/registry"
)

// MongoStore là implementation của Store trên MongoDB, dùng change stream
// để theo dõi thay đổi. Collection handles được cache trong registry.
type MongoStore struct {
	db          *mongo.Database
	collections *registry.Registry[*mongo.Collection]
}

// NewMongoStore tạo MongoStore trên một database handle đã kết nối.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:          db,
		collections: registry.NewRegistry[*mongo.Collection](),
	}
}

// collection lấy collection handle từ registry, tạo mới nếu chưa có.
func (s *MongoStore) collection(name string) (*mongo.Collection, error) {
	return s.collections.GetOrCreate(name, func() (*mongo.Collection, error) {
		return s.db.Collection(name), nil
	})
}

// Close giải phóng các collection handle đã cache. Gọi sau khi mọi session
// trên store đã đóng.
func (s *MongoStore) Close() {
	_, _ = s.collections.ClearAll(nil)
}

// mongoSubscription theo dõi một change stream và phát snapshot đầy đủ sau
// mỗi thay đổi. Mongo chỉ báo "có thay đổi"; nội dung được re-query để mọi
// event luôn là một snapshot nhất quán.
type mongoSubscription struct {
	events    chan ChangeEvent
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

func (sub *mongoSubscription) Events() <-chan ChangeEvent {
	return sub.events
}

func (sub *mongoSubscription) Close() {
	sub.closeOnce.Do(func() {
		sub.cancel()
		<-sub.done
	})
}

// Subscribe đăng ký theo dõi các document khớp filter trong collection.
//
// Tham số:
//   - ctx: context bao trùm vòng đời subscription; cancel ctx cũng kết thúc subscription.
//   - collection: tên collection cần theo dõi.
//   - filter: filter áp cho cả query snapshot lẫn phạm vi theo dõi.
//
// Trả về:
//   - Subscription với snapshot ban đầu đã nằm sẵn trong channel.
//   - error: nếu query ban đầu hoặc mở change stream thất bại.
func (s *MongoStore) Subscribe(ctx context.Context, collection string, filter bson.M) (Subscription, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	// Snapshot ban đầu phải lấy được trước khi coi subscription là thành công
	initial, err := s.Query(ctx, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("initial query failed for %s: %w", collection, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := coll.Watch(streamCtx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, common.ConvertMongoError(fmt.Errorf("watch failed for %s: %w", collection, err))
	}

	sub := &mongoSubscription{
		// Buffer 1 để snapshot ban đầu nằm sẵn mà không cần consumer chạy trước
		events: make(chan ChangeEvent, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sub.events <- ChangeEvent{Collection: collection, Docs: initial}

	go func() {
		defer close(sub.done)
		defer close(sub.events)
		defer stream.Close(context.Background())

		log := logger.WithModule("store").WithField("collection", collection)
		for stream.Next(streamCtx) {
			docs, err := s.Query(streamCtx, collection, filter)
			if err != nil {
				if streamCtx.Err() != nil {
					return
				}
				log.WithError(err).Warn("re-query after change event failed, skipping event")
				continue
			}
			select {
			case sub.events <- ChangeEvent{Collection: collection, Docs: docs}:
			case <-streamCtx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			log.WithError(err).Error("change stream terminated")
		}
	}()

	return sub, nil
}

// Insert chèn một document mới và trả về _id được gán.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return primitive.NilObjectID, err
	}

	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, common.ConvertMongoError(err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, common.ErrInvalidFormat
	}
	return id, nil
}

// WriteField ghi đè nguyên một field top-level trên document có _id cho trước.
// Semantics là last-write-wins: không merge với giá trị hiện tại.
func (s *MongoStore) WriteField(ctx context.Context, collection string, id primitive.ObjectID, field string, value interface{}) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}

	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return common.NewWriteRejected(collection, field, common.ConvertMongoError(err))
	}
	if result.MatchedCount == 0 {
		return common.NewWriteRejected(collection, field, common.ErrNotFound)
	}
	return nil
}

// DeleteDocument xóa document theo _id. Xóa document không tồn tại là lỗi.
func (s *MongoStore) DeleteDocument(ctx context.Context, collection string, id primitive.ObjectID) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}

	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Query trả về các document khớp filter tại thời điểm gọi.
func (s *MongoStore) Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	docs := []bson.Raw{}
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return docs, nil
}
