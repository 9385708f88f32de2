// Package store định nghĩa giao diện thao tác với document store và các
// implementation của nó (MongoDB cho production, in-memory cho test).
// Mọi service phía trên chỉ nói chuyện qua interface Store, không chạm
// driver trực tiếp.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tên các collection của hệ thống
const (
	CollClients    = "clients"
	CollLocations  = "locations"
	CollServices   = "services"
	CollDailyLists = "dailylists"
	CollNotes      = "notes"
)

// ChangeEvent là một snapshot đầy đủ của tập document khớp filter tại một
// thời điểm. Store không gửi diff: mỗi event thay thế toàn bộ state trước đó.
type ChangeEvent struct {
	Collection string
	Docs       []bson.Raw
}

// Subscription đại diện một đăng ký theo dõi thay đổi trên một collection.
// Events() đóng lại khi subscription kết thúc (Close hoặc lỗi nguồn).
type Subscription interface {
	Events() <-chan ChangeEvent
	Close()
}

// Store là giao diện tối thiểu mà toàn bộ data layer cần từ document store.
//
// Ràng buộc quan trọng:
//   - Subscribe phát snapshot ban đầu ngay sau khi đăng ký, rồi một snapshot
//     mới sau mỗi thay đổi khớp filter.
//   - WriteField ghi đè nguyên một field top-level (last-write-wins), không
//     merge sâu.
//   - Không có transaction: caller tự chịu trách nhiệm với chuỗi nhiều write.
type Store interface {
	// Subscribe đăng ký theo dõi các document khớp filter trong collection.
	Subscribe(ctx context.Context, collection string, filter bson.M) (Subscription, error)

	// Insert chèn một document mới, trả về _id được gán.
	Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error)

	// WriteField ghi đè field trên document có _id cho trước.
	WriteField(ctx context.Context, collection string, id primitive.ObjectID, field string, value interface{}) error

	// DeleteDocument xóa document theo _id.
	DeleteDocument(ctx context.Context, collection string, id primitive.ObjectID) error

	// Query trả về các document khớp filter tại thời điểm gọi.
	Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error)
}
