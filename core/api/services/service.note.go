package services

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/store"
)

// GetNotesOnDate trả về các note đã submit của tổ chức vào ngày cho trước
// (date format YYYY-MM-DD), mới nhất trước. Note đọc trực tiếp từ store,
// không qua cache reactive: màn hình review note là on-demand.
func (s *Session) GetNotesOnDate(ctx context.Context, date string) ([]models.Note, error) {
	docs, err := s.store.Query(ctx, store.CollNotes, bson.M{"organization": s.organization})
	if err != nil {
		return nil, err
	}

	notes := []models.Note{}
	for _, doc := range docs {
		var note models.Note
		if err := bson.Unmarshal(doc, &note); err != nil {
			s.log.WithError(err).Warn("Không decode được note document, bỏ qua document")
			continue
		}
		if dateFromTimestamp(note.Datetime) != date {
			continue
		}
		notes = append(notes, note)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Datetime > notes[j].Datetime
	})
	return notes, nil
}
