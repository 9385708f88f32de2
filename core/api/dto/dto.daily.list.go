package dto

// DailyListCreateInput là input để tạo daily list mới
type DailyListCreateInput struct {
	Email string `json:"email" validate:"required,email"` // Email người tạo, creator lấy phần trước @
}

// DailyListSelectInput là input để chọn daily list hiện tại
type DailyListSelectInput struct {
	ID string `json:"id" validate:"required"` // ObjectID hex của daily list
}

// NoteUpdateInput là input để ghi đè note của daily list đang chọn
type NoteUpdateInput struct {
	Note []string `json:"note"` // Toàn bộ nội dung note, từng dòng một
}

// ToggleClientInput là input để thêm/gỡ client khỏi daily list đang chọn
type ToggleClientInput struct {
	ClientID string `json:"clientId" validate:"required"` // ObjectID hex của client
}

// CurrentLocationInput là input để đặt địa điểm làm việc hiện tại
type CurrentLocationInput struct {
	CityUUID             string `json:"cityUUID,omitempty"`
	LocationCategoryUUID string `json:"locationCategoryUUID,omitempty"`
	Location             string `json:"location,omitempty"`
}

// ContactServiceInput là một entry service trên contact
type ContactServiceInput struct {
	UUID    string   `json:"uuid" validate:"required"`
	Service string   `json:"service" validate:"required"`
	Text    string   `json:"text,omitempty"`
	Count   int      `json:"count,omitempty"`
	Units   string   `json:"units,omitempty"`
	List    []string `json:"list,omitempty"`
}

// ContactServicesUpdateInput là input để thay thế mảng services của một contact
type ContactServicesUpdateInput struct {
	ClientID string                `json:"clientId" validate:"required"` // ObjectID hex của client
	Services []ContactServiceInput `json:"services"`                     // Mảng services mới, rỗng = xóa hết
}
