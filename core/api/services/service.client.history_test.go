package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
)

func historyTestLocations() *models.LocationDocument {
	return &models.LocationDocument{
		Organization: "org-a",
		Cities: []models.City{
			{
				UUID: "city-1",
				City: "Downtown",
				Categories: []models.LocationCategory{
					{UUID: "cat-1", Category: "Shelters"},
				},
			},
		},
	}
}

func TestProjectContactResolvesUUIDs(t *testing.T) {
	contact := models.Contact{
		ClientID:             primitive.NewObjectID(),
		Timestamp:            "2026-08-30T21:15:00.000Z",
		CityUUID:             "city-1",
		LocationCategoryUUID: "cat-1",
		Location:             "Main Street Shelter",
		Services: []models.ContactService{
			{UUID: "svc-meal", Service: "Meal", Count: 2, Units: "meals"},
		},
	}

	result := ProjectContact(contact, historyTestLocations())

	if result.Date != "2026-08-30" {
		t.Errorf("Date phải là 2026-08-30, nhận được %q", result.Date)
	}
	if result.Time != "2026-08-30T21:15:00.000Z" {
		t.Errorf("Time phải giữ nguyên timestamp, nhận được %q", result.Time)
	}
	if result.City != "Downtown" {
		t.Errorf("City phải resolve từ uuid, nhận được %q", result.City)
	}
	if result.LocationCategory != "Shelters" {
		t.Errorf("LocationCategory phải resolve từ uuid, nhận được %q", result.LocationCategory)
	}
	if result.Location != "Main Street Shelter" {
		t.Errorf("Location giữ nguyên display string, nhận được %q", result.Location)
	}
	if len(result.Services) != 1 {
		t.Fatalf("Services phải có 1 entry, nhận được %d", len(result.Services))
	}
	if result.Services[0].Service != "Meal" || result.Services[0].Count != 2 {
		t.Errorf("Service payload không đúng: %+v", result.Services[0])
	}
}

func TestProjectContactUnresolvedUUIDs(t *testing.T) {
	contact := models.Contact{
		ClientID:             primitive.NewObjectID(),
		Timestamp:            "2026-08-30T21:15:00.000Z",
		CityUUID:             "city-khong-ton-tai",
		LocationCategoryUUID: "cat-khong-ton-tai",
	}

	result := ProjectContact(contact, historyTestLocations())
	if result.City != "" || result.LocationCategory != "" {
		t.Errorf("UUID không resolve được phải cho string rỗng, nhận được city=%q category=%q",
			result.City, result.LocationCategory)
	}
}

func TestProjectContactNilLocations(t *testing.T) {
	contact := models.Contact{
		ClientID:  primitive.NewObjectID(),
		Timestamp: "2026-08-30T21:15:00.000Z",
		CityUUID:  "city-1",
	}

	// Cây locations chưa load thì projection vẫn chạy, field resolve để rỗng
	result := ProjectContact(contact, nil)
	if result.City != "" {
		t.Errorf("Không có cây locations thì city phải rỗng, nhận được %q", result.City)
	}
	if result.Date != "2026-08-30" {
		t.Errorf("Date vẫn phải tính được, nhận được %q", result.Date)
	}
}

func TestProjectContactEmptyServices(t *testing.T) {
	contact := models.Contact{
		ClientID:  primitive.NewObjectID(),
		Timestamp: "2026-08-30T21:15:00.000Z",
	}
	result := ProjectContact(contact, nil)
	if result.Services != nil {
		t.Errorf("Contact không có services thì Services phải nil, nhận được %+v", result.Services)
	}
}

func TestDateFromTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"ISO millisecond", "2026-08-30T21:15:00.000Z", "2026-08-30"},
		{"RFC3339", "2026-08-30T21:15:00Z", "2026-08-30"},
		{"RFC3339 với offset", "2026-08-31T01:15:00+04:00", "2026-08-30"},
		{"Chuỗi không parse được nhưng đủ dài", "2026-08-30Txxxxx", "2026-08-30"},
		{"Chuỗi ngắn", "xin chào", "xin chào"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dateFromTimestamp(tc.in); got != tc.want {
				t.Errorf("dateFromTimestamp(%q) = %q, muốn %q", tc.in, got, tc.want)
			}
		})
	}
}
