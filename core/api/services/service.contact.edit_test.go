package services

import (
	"testing"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
)

var (
	mealService = models.Service{UUID: "svc-meal", Service: "Meal", InputType: models.InputTypeCounter, Units: "meals"}
	kitService  = models.Service{UUID: "svc-kit", Service: "Hygiene Kit", InputType: models.InputTypeToggle}
	noteService = models.Service{UUID: "svc-other", Service: "Other", InputType: models.InputTypeTextbox}
	listService = models.Service{UUID: "svc-clothing", Service: "Clothing", InputType: models.InputTypeCustomList}
)

func TestUpdateServiceCount(t *testing.T) {
	// Append khi chưa có
	services := UpdateServiceCount(nil, mealService, 3)
	if len(services) != 1 {
		t.Fatalf("Phải có 1 entry sau khi đặt count, nhận được %d", len(services))
	}
	if services[0].Count != 3 || services[0].Units != "meals" || services[0].Service != "Meal" {
		t.Errorf("Entry không đúng: %+v", services[0])
	}

	// Thay thế khi đã có
	services = UpdateServiceCount(services, mealService, 5)
	if len(services) != 1 || services[0].Count != 5 {
		t.Errorf("Đặt lại count phải thay thế entry, nhận được %+v", services)
	}

	// Count về 0 thì entry biến mất
	services = UpdateServiceCount(services, mealService, 0)
	if len(services) != 0 {
		t.Errorf("Count 0 phải loại entry khỏi mảng, nhận được %+v", services)
	}

	// Count âm cũng vậy
	services = UpdateServiceCount([]models.ContactService{{UUID: "svc-meal", Service: "Meal", Count: 2}}, mealService, -1)
	if len(services) != 0 {
		t.Errorf("Count âm phải loại entry khỏi mảng, nhận được %+v", services)
	}
}

func TestUpdateServiceToggle(t *testing.T) {
	services := UpdateServiceToggle(nil, kitService, true)
	if len(services) != 1 || services[0].UUID != "svc-kit" {
		t.Fatalf("Bật toggle phải thêm entry, nhận được %+v", services)
	}

	// Bật lần nữa không tạo entry trùng
	services = UpdateServiceToggle(services, kitService, true)
	if len(services) != 1 {
		t.Errorf("Bật toggle hai lần không được tạo entry trùng, nhận được %+v", services)
	}

	services = UpdateServiceToggle(services, kitService, false)
	if len(services) != 0 {
		t.Errorf("Tắt toggle phải loại entry, nhận được %+v", services)
	}
}

func TestUpdateServiceText(t *testing.T) {
	services := UpdateServiceText(nil, noteService, "  cần giày cỡ 42  ")
	if len(services) != 1 || services[0].Text != "cần giày cỡ 42" {
		t.Fatalf("Text phải được trim và lưu, nhận được %+v", services)
	}

	// Text rỗng (kể cả toàn whitespace) thì entry biến mất
	services = UpdateServiceText(services, noteService, "   ")
	if len(services) != 0 {
		t.Errorf("Text rỗng phải loại entry, nhận được %+v", services)
	}
}

func TestUpdateServiceList(t *testing.T) {
	services := UpdateServiceList(nil, listService, []string{"Socks", "Jacket"})
	if len(services) != 1 || len(services[0].List) != 2 {
		t.Fatalf("List phải được lưu, nhận được %+v", services)
	}

	services = UpdateServiceList(services, listService, []string{})
	if len(services) != 0 {
		t.Errorf("List rỗng phải loại entry, nhận được %+v", services)
	}
}

func TestContactServiceEditsDoNotMutateInput(t *testing.T) {
	original := []models.ContactService{
		{UUID: "svc-meal", Service: "Meal", Count: 2, Units: "meals"},
		{UUID: "svc-kit", Service: "Hygiene Kit"},
	}

	_ = UpdateServiceCount(original, mealService, 9)
	_ = UpdateServiceToggle(original, kitService, false)

	if original[0].Count != 2 {
		t.Errorf("Input không được bị mutate, count = %d", original[0].Count)
	}
	if len(original) != 2 {
		t.Errorf("Input không được bị mutate, len = %d", len(original))
	}
}

func TestRemoveLastServiceReturnsNil(t *testing.T) {
	services := []models.ContactService{{UUID: "svc-kit", Service: "Hygiene Kit"}}
	result := UpdateServiceToggle(services, kitService, false)
	if result != nil {
		t.Errorf("Gỡ entry cuối cùng phải trả về nil (field vắng mặt trên wire), nhận được %+v", result)
	}
}
