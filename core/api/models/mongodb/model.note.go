package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note là note độc lập đã submit, tách khỏi daily list khi submit thành công.
// Content giữ nguyên từng dòng như người dùng nhập.
type Note struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Organization string             `json:"organization" bson:"organization" index:"single:1"`
	Datetime     string             `json:"datetime" bson:"datetime" index:"single:-1"` // ISO 8601 UTC
	Content      []string           `json:"content,omitempty" bson:"content,omitempty"`
}

// Clone trả về bản sao sâu của Note
func (n Note) Clone() Note {
	clone := n
	if n.Content != nil {
		clone.Content = make([]string, len(n.Content))
		copy(clone.Content, n.Content)
	}
	return clone
}
