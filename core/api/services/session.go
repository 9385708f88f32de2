// Package services chứa business logic của data layer: session quản lý
// cache reactive từ document store, chỉnh sửa daily list và submission.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/logger"
	"github.com/lovelidevs/HmisGo/core/store"
)

// ISOTimestampLayout là định dạng timestamp lưu trên wire (ISO 8601 UTC,
// độ chính xác millisecond).
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z"

// CurrentLocation là địa điểm làm việc hiện tại của người dùng, dùng làm
// seed cho contact mới khi toggle client.
type CurrentLocation struct {
	CityUUID             string
	LocationCategoryUUID string
	Location             string
}

// snapshotMsg là một snapshot đã nhận từ store, chờ được apply vào cache.
// selectedFor khác nil nghĩa là snapshot đến từ subscription riêng của daily
// list đang chọn, gắn với đúng list id đó.
type snapshotMsg struct {
	collection  string
	docs        []bson.Raw
	selectedFor *primitive.ObjectID
}

// Session là handle trung tâm của data layer cho một tổ chức: giữ cache
// reactive của các collection, selection daily list hiện tại và current
// location. Mọi state nhận qua một consumer goroutine duy nhất nên các
// snapshot được apply tuần tự theo thứ tự đến.
//
// Session được tạo bằng NewSession và phải được Close khi không dùng nữa.
type Session struct {
	store        store.Store
	validate     *validator.Validate
	organization string
	log          *logrus.Entry

	ctx     context.Context
	applyCh chan snapshotMsg
	subs    []store.Subscription
	wg      sync.WaitGroup
	runDone chan struct{}
	cancel  context.CancelFunc

	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool

	// subFailed đánh dấu các collection mở subscription thất bại lúc tạo
	// session; accessor của slot đó trả về ErrSubscriptionFailure thay vì
	// ErrNotLoaded. Chỉ ghi trong NewSession.
	subFailed map[string]bool

	// selectedSub là subscription riêng của list đang chọn, mở/đóng theo
	// selection (độc lập với subscription của cả collection dailylists).
	selectedSub store.Subscription

	clients       []models.Client
	clientsLoaded bool

	locations       *models.LocationDocument
	locationsLoaded bool

	services       *models.ServiceDocument
	servicesLoaded bool

	dailyLists       []models.DailyList
	dailyListsLoaded bool
	dailyListKeys    []models.DailyListKey

	selectedID *primitive.ObjectID
	selected   *models.DailyList

	currentLocation *CurrentLocation
}

// NewSession tạo session cho một tổ chức và mở subscription cho cả bốn
// collection reference (clients, locations, services, dailylists).
//
// Subscription mở thất bại được log và slot tương ứng bị đánh dấu lỗi:
// accessor của slot đó trả về ErrSubscriptionFailure thay vì ErrNotLoaded.
// Session không tự retry; caller quyết định có tạo lại session hay không.
func NewSession(ctx context.Context, st store.Store, validate *validator.Validate, organization string) (*Session, error) {
	if organization == "" {
		return nil, fmt.Errorf("organization is required: %w", common.ErrRequiredField)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		store:        st,
		validate:     validate,
		organization: organization,
		log:          logger.WithModule("session").WithField("organization", organization),
		ctx:          sessionCtx,
		applyCh:      make(chan snapshotMsg, 16),
		runDone:      make(chan struct{}),
		cancel:       cancel,
		subFailed:    make(map[string]bool),
	}

	filter := bson.M{"organization": organization}
	for _, collection := range []string{
		store.CollClients,
		store.CollLocations,
		store.CollServices,
		store.CollDailyLists,
	} {
		sub, err := st.Subscribe(sessionCtx, collection, filter)
		if err != nil {
			s.subFailed[collection] = true
			s.log.WithError(err).WithField("collection", collection).
				Error("Không mở được subscription, slot bị đánh dấu lỗi")
			continue
		}
		s.subs = append(s.subs, sub)
		s.wg.Add(1)
		go s.forward(sessionCtx, sub, nil)
	}

	go s.run()
	return s, nil
}

// forward chuyển event của một subscription vào apply channel chung.
// selectedFor khác nil đánh dấu event thuộc subscription của list đang chọn.
func (s *Session) forward(ctx context.Context, sub store.Subscription, selectedFor *primitive.ObjectID) {
	defer s.wg.Done()
	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			select {
			case s.applyCh <- snapshotMsg{collection: event.Collection, docs: event.Docs, selectedFor: selectedFor}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// switchSelectedSubscription đóng subscription của list đang chọn trước đó và
// mở subscription mới cho id (nil = chỉ đóng). Mở thất bại chỉ được log:
// selection vẫn hoạt động nhờ snapshot của cả collection.
func (s *Session) switchSelectedSubscription(id *primitive.ObjectID) {
	s.mu.Lock()
	old := s.selectedSub
	s.selectedSub = nil
	closed := s.closed
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if id == nil || closed {
		return
	}

	sub, err := s.store.Subscribe(s.ctx, store.CollDailyLists, bson.M{
		"_id":          *id,
		"organization": s.organization,
	})
	if err != nil {
		s.log.WithError(err).WithField("dailyListID", id.Hex()).
			Error("Không mở được subscription cho list đang chọn")
		return
	}

	s.mu.Lock()
	// Selection có thể đã đổi hoặc session đã đóng trong lúc Subscribe chạy
	if s.closed || s.selectedID == nil || *s.selectedID != *id {
		s.mu.Unlock()
		sub.Close()
		return
	}
	s.selectedSub = sub
	s.wg.Add(1)
	s.mu.Unlock()

	go s.forward(s.ctx, sub, id)
}

// run là consumer goroutine duy nhất apply snapshot vào cache.
func (s *Session) run() {
	defer close(s.runDone)
	for msg := range s.applyCh {
		s.applySnapshot(msg)
	}
}

// Close đóng mọi subscription và chờ các goroutine kết thúc.
// Sau Close, mọi accessor trả về trạng thái cuối cùng đã cache.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		selectedSub := s.selectedSub
		s.selectedSub = nil
		s.mu.Unlock()

		s.cancel()
		for _, sub := range s.subs {
			sub.Close()
		}
		if selectedSub != nil {
			selectedSub.Close()
		}
		s.wg.Wait()
		close(s.applyCh)
		<-s.runDone
	})
}

// Organization trả về tổ chức của session.
func (s *Session) Organization() string {
	return s.organization
}

// SetCurrentLocation đặt địa điểm làm việc hiện tại.
// Truyền nil để xóa current location.
func (s *Session) SetCurrentLocation(loc *CurrentLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc == nil {
		s.currentLocation = nil
		return
	}
	clone := *loc
	s.currentLocation = &clone
}

// CurrentLocation trả về bản sao của địa điểm làm việc hiện tại, nil nếu chưa đặt.
func (s *Session) CurrentLocation() *CurrentLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentLocation == nil {
		return nil
	}
	clone := *s.currentLocation
	return &clone
}

// nowTimestamp trả về timestamp hiện tại theo wire format.
func nowTimestamp() string {
	return time.Now().UTC().Format(ISOTimestampLayout)
}
