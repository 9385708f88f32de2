package common

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest = 400 // Yêu cầu không hợp lệ
	StatusForbidden  = 403 // Không có quyền truy cập
	StatusNotFound   = 404 // Không tìm thấy tài nguyên
	StatusConflict   = 409 // Xung đột dữ liệu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: SUB_001)
	Category    string // Phân loại lỗi (ví dụ: Subscription)
	SubCategory string // Phân loại con (ví dụ: Setup)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// State Errors (STATE_xxx) - trạng thái local chưa sẵn sàng
	ErrCodeStateNotLoaded = ErrorCode{
		Code:        "STATE_001",
		Category:    "State",
		SubCategory: "NotLoaded",
		Description: "Snapshot đầu tiên của collection chưa về tới cache",
	}

	// Subscription Errors (SUB_xxx)
	ErrCodeSubscription = ErrorCode{
		Code:        "SUB_001",
		Category:    "Subscription",
		SubCategory: "Setup",
		Description: "Không mở được subscription tới document store",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	ErrCodeDatabaseWrite = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "Write",
		Description: "Ghi dữ liệu bị từ chối",
	}

	// Submission Errors (SUBMIT_xxx)
	ErrCodeSubmission = ErrorCode{
		Code:        "SUBMIT_001",
		Category:    "Submission",
		SubCategory: "Partial",
		Description: "Submission dừng giữa chừng, các bước đã ghi không được rollback",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	targetErr, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
}

// Unwrap trả về lỗi gốc nếu Details là một error, để errors.Is/As đi tiếp
// được xuống chuỗi lỗi bên dưới.
func (e *Error) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// State Errors - NotLoaded không phải lỗi nghiệp vụ: caller phải coi đây là
	// trạng thái "đang tải" thay vì lỗi, nhưng vẫn cần phân biệt được với success.
	ErrNotLoaded = NewError(ErrCodeStateNotLoaded, "Dữ liệu chưa được tải từ document store", StatusServiceUnavailable, nil)

	// Subscription Errors - surfaced, không tự retry
	ErrSubscriptionFailure = NewError(ErrCodeSubscription, "Không mở được subscription", StatusServiceUnavailable, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)

	// Session Errors
	ErrNoDailyListSelected = NewError(ErrCodeValidationInput, "Chưa chọn daily list nào", StatusBadRequest, nil)
)

// PartialSubmissionError mô tả một submission dừng giữa chừng.
// Các bước đã thực hiện (note, các client append trước đó) KHÔNG được rollback;
// FailedIndex là chỉ số contact bị lỗi để caller xây dựng retry strategy.
type PartialSubmissionError struct {
	FailedIndex int   // Chỉ số contact bị lỗi trong mảng contacts (-1 nếu lỗi ở bước note/delete)
	NoteCreated bool  // Note đã được ghi trước khi lỗi xảy ra hay chưa
	Step        string // Bước bị lỗi: "note", "contact", "delete"
	Err         error // Lỗi gốc
}

// Error trả về message của lỗi
func (e *PartialSubmissionError) Error() string {
	if e.Step == "contact" {
		return fmt.Sprintf("submission dừng tại contact index %d: %v", e.FailedIndex, e.Err)
	}
	return fmt.Sprintf("submission dừng tại bước %s: %v", e.Step, e.Err)
}

// Unwrap trả về lỗi gốc (hỗ trợ errors.Is/As)
func (e *PartialSubmissionError) Unwrap() error {
	return e.Err
}

// NewWriteRejected tạo lỗi WriteRejected với đủ ngữ cảnh để nhận diện
// collection/field nào bị từ chối ghi.
func NewWriteRejected(collection string, field string, err error) error {
	return NewError(
		ErrCodeDatabaseWrite,
		fmt.Sprintf("Ghi field %q vào collection %q bị từ chối", field, collection),
		StatusInternalServerError,
		err,
	)
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert các lỗi đã thuộc taxonomy nội bộ
	var internalErr *Error
	if errors.As(err, &internalErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return NewError(ErrCodeDatabaseConnection, "Lỗi kết nối MongoDB", StatusServiceUnavailable, err)
		case mongoErr.Code >= 400 && mongoErr.Code < 500:
			return NewError(ErrCodeDatabaseWrite, "Lỗi ghi dữ liệu MongoDB", StatusInternalServerError, err)
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return NewError(ErrCodeDatabaseWrite, "Dữ liệu trùng lặp trong MongoDB", StatusConflict, err)
	}
	if mongo.IsNetworkError(err) {
		return NewError(ErrCodeDatabaseConnection, "Lỗi mạng khi kết nối MongoDB", StatusServiceUnavailable, err)
	}
	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable, err)
	}

	return NewError(ErrCodeDatabase, "Lỗi tương tác với cơ sở dữ liệu", StatusInternalServerError, err)
}
