package dto

// ClientCreateInput là input để tạo client mới từ intake form
type ClientCreateInput struct {
	LastName  string `json:"lastName" validate:"required"`                // Họ (bắt buộc)
	FirstName string `json:"firstName,omitempty"`                        // Tên
	DOB       string `json:"DOB,omitempty" validate:"omitempty,datetime=2006-01-02"` // Ngày sinh YYYY-MM-DD
	Alias     string `json:"alias,omitempty"`                            // Biệt danh
	HmisID    string `json:"hmisID,omitempty"`                           // Mã HMIS bên ngoài
}
