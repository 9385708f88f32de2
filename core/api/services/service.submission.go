package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/logger"
	"github.com/lovelidevs/HmisGo/core/store"
)

// SubmitDailyList đẩy daily list đang chọn vào hồ sơ vĩnh viễn:
//
//  1. Note không rỗng thì insert thành Note document độc lập.
//  2. Từng contact được project thành ClientContact và append vào
//     serviceHistory của client tương ứng (mỗi client một write riêng).
//  3. Xóa daily list và bỏ selection.
//
// KHÔNG có transaction bao trùm: write nào đã xong thì giữ nguyên khi write
// sau thất bại. Lỗi giữa chừng trả về *common.PartialSubmissionError với đủ
// thông tin (bước lỗi, index contact, note đã ghi chưa) để caller quyết định
// retry. Retry nguyên list sau lỗi có thể ghi trùng note và trùng các contact
// đã append trước đó.
func (s *Session) SubmitDailyList(ctx context.Context) error {
	id, list, err := s.selectedForWrite()
	if err != nil {
		return err
	}

	// Cây locations dùng để resolve uuid sang display string; chưa load hoặc
	// không có thì projection để rỗng các field tương ứng thay vì chặn submit.
	s.mu.RLock()
	locations := s.locations
	s.mu.RUnlock()

	log := logger.WithModule("submission").
		WithField("dailyListID", id.Hex()).
		WithField("organization", s.organization)
	log.WithField("contacts", len(list.Contacts)).Info("Bắt đầu submit daily list")

	noteCreated := false
	if len(list.Note) > 0 {
		// Datetime là thời điểm submit, không phải thời điểm tạo list
		note := models.Note{
			Organization: s.organization,
			Datetime:     nowTimestamp(),
			Content:      list.Note,
		}
		if _, err := s.store.Insert(ctx, store.CollNotes, note); err != nil {
			log.WithError(err).Error("Insert note thất bại, submission dừng")
			return &common.PartialSubmissionError{
				FailedIndex: -1,
				NoteCreated: false,
				Step:        "note",
				Err:         err,
			}
		}
		noteCreated = true
		log.Info("Đã insert note")
	}

	for i, contact := range list.Contacts {
		if err := ctx.Err(); err != nil {
			return &common.PartialSubmissionError{
				FailedIndex: i,
				NoteCreated: noteCreated,
				Step:        "contact",
				Err:         err,
			}
		}
		if err := s.pushContactToClient(ctx, contact, locations); err != nil {
			log.WithError(err).
				WithField("contactIndex", i).
				WithField("clientID", contact.ClientID.Hex()).
				Error("Append contact vào client thất bại, submission dừng")
			return &common.PartialSubmissionError{
				FailedIndex: i,
				NoteCreated: noteCreated,
				Step:        "contact",
				Err:         err,
			}
		}
	}
	log.WithField("contacts", len(list.Contacts)).Info("Đã append toàn bộ contacts")

	if err := s.store.DeleteDocument(ctx, store.CollDailyLists, id); err != nil {
		log.WithError(err).Error("Xóa daily list thất bại sau khi mọi write đã xong")
		return &common.PartialSubmissionError{
			FailedIndex: -1,
			NoteCreated: noteCreated,
			Step:        "delete",
			Err:         err,
		}
	}

	s.mu.Lock()
	cleared := false
	if s.selectedID != nil && *s.selectedID == id {
		s.selectedID = nil
		s.selected = nil
		cleared = true
	}
	s.mu.Unlock()
	if cleared {
		s.switchSelectedSubscription(nil)
	}

	log.Info("Submit daily list hoàn tất")
	return nil
}

// pushContactToClient project contact và append vào serviceHistory của client.
// Client được đọc lại từ store ngay trước khi ghi để append trên bản mới nhất;
// bản thân write vẫn là ghi đè nguyên field (last-write-wins).
func (s *Session) pushContactToClient(ctx context.Context, contact models.Contact, locations *models.LocationDocument) error {
	docs, err := s.store.Query(ctx, store.CollClients, bson.M{"_id": contact.ClientID})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("client %s không tồn tại: %w", contact.ClientID.Hex(), common.ErrNotFound)
	}

	var client models.Client
	if err := bson.Unmarshal(docs[0], &client); err != nil {
		return fmt.Errorf("không decode được client %s: %w", contact.ClientID.Hex(), common.ErrInvalidFormat)
	}

	history := append(client.ServiceHistory, ProjectContact(contact, locations))
	return s.store.WriteField(ctx, store.CollClients, contact.ClientID, "serviceHistory", history)
}
