package models

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationDocument là singleton theo tổ chức: cây City → Category → Location → Place.
// Mỗi node mang uuid ổn định dùng để reference thay cho display text (display
// text có thể đổi tên mà không làm hỏng các edit đang dở). Document này
// read-only đối với core; tooling quản trị bên ngoài sở hữu nó.
type LocationDocument struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Organization string             `json:"organization" bson:"organization" index:"single:1"`
	Cities       []City             `json:"cities,omitempty" bson:"cities,omitempty"`
}

// City là một node thành phố trong cây locations
type City struct {
	UUID       string             `json:"uuid" bson:"uuid"`
	City       string             `json:"city" bson:"city"`
	Categories []LocationCategory `json:"categories,omitempty" bson:"categories,omitempty"`
}

// LocationCategory là một node phân loại địa điểm trong một city
type LocationCategory struct {
	UUID      string     `json:"uuid" bson:"uuid"`
	Category  string     `json:"category" bson:"category"`
	Locations []Location `json:"locations,omitempty" bson:"locations,omitempty"`
}

// Location là một địa điểm cụ thể, có thể chứa các places con
type Location struct {
	UUID     string   `json:"uuid" bson:"uuid"`
	Location string   `json:"location" bson:"location"`
	Places   []string `json:"places,omitempty" bson:"places,omitempty"`
}

// Clone trả về bản sao sâu của LocationDocument
func (d LocationDocument) Clone() LocationDocument {
	clone := d
	if d.Cities != nil {
		clone.Cities = make([]City, len(d.Cities))
		for i, city := range d.Cities {
			clone.Cities[i] = city
			if city.Categories == nil {
				continue
			}
			clone.Cities[i].Categories = make([]LocationCategory, len(city.Categories))
			for j, category := range city.Categories {
				clone.Cities[i].Categories[j] = category
				if category.Locations == nil {
					continue
				}
				locations := make([]Location, len(category.Locations))
				for k, location := range category.Locations {
					locations[k] = location
					if location.Places != nil {
						locations[k].Places = make([]string, len(location.Places))
						copy(locations[k].Places, location.Places)
					}
				}
				clone.Cities[i].Categories[j].Locations = locations
			}
		}
	}
	return clone
}

// CityByUUID tìm city theo uuid. Trả về nil nếu không tìm thấy.
func (d *LocationDocument) CityByUUID(cityUUID string) *City {
	if d == nil {
		return nil
	}
	for i := range d.Cities {
		if d.Cities[i].UUID == cityUUID {
			return &d.Cities[i]
		}
	}
	return nil
}

// CategoryByUUIDs tìm location category theo cặp uuid (city, category).
// Trả về nil nếu không tìm thấy.
func (d *LocationDocument) CategoryByUUIDs(cityUUID, locationCategoryUUID string) *LocationCategory {
	city := d.CityByUUID(cityUUID)
	if city == nil {
		return nil
	}
	for i := range city.Categories {
		if city.Categories[i].UUID == locationCategoryUUID {
			return &city.Categories[i]
		}
	}
	return nil
}

// LocationsByUUIDs trả về danh sách tên location (kèm tên place) thuộc một
// category, theo thứ tự xuất hiện trong cây.
func (d *LocationDocument) LocationsByUUIDs(cityUUID, locationCategoryUUID string) []string {
	category := d.CategoryByUUIDs(cityUUID, locationCategoryUUID)
	if category == nil {
		return []string{}
	}

	result := []string{}
	for _, location := range category.Locations {
		result = append(result, location.Location)
		result = append(result, location.Places...)
	}
	return result
}

// AllLocationStrings trả về danh sách phẳng mọi địa điểm cụ thể trong cây:
// một entry cho mỗi Location cộng một entry cho mỗi Place dưới dạng
// "<location>: <place>", sắp xếp alphabet không phân biệt hoa thường.
func (d *LocationDocument) AllLocationStrings() []string {
	if d == nil {
		return []string{}
	}

	result := []string{}
	for _, city := range d.Cities {
		for _, category := range city.Categories {
			for _, location := range category.Locations {
				result = append(result, location.Location)
				for _, place := range location.Places {
					result = append(result, location.Location+": "+place)
				}
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i]) < strings.ToLower(result[j])
	})
	return result
}
