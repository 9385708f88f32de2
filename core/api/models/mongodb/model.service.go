package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InputType của một service node quyết định payload shape của ContactService
const (
	InputTypeToggle     = "Toggle"
	InputTypeCounter    = "Counter"
	InputTypeTextbox    = "Textbox"
	InputTypeLocations  = "Locations"
	InputTypeCustomList = "Custom List"
)

// ServiceDocument là singleton theo tổ chức: cây Category → Service.
// Read-only đối với core, giống LocationDocument.
type ServiceDocument struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Organization string             `json:"organization" bson:"organization" index:"single:1"`
	Categories   []ServiceCategory  `json:"categories,omitempty" bson:"categories,omitempty"`
}

// ServiceCategory là một node phân loại dịch vụ
type ServiceCategory struct {
	UUID     string    `json:"uuid" bson:"uuid"`
	Category string    `json:"category" bson:"category"`
	Services []Service `json:"services,omitempty" bson:"services,omitempty"`
}

// Service là định nghĩa một dịch vụ: inputType quyết định cách nhập liệu
// (toggle/counter/textbox/locations/custom list), units và customList là
// metadata cho counter và custom list.
type Service struct {
	UUID       string   `json:"uuid" bson:"uuid"`
	Service    string   `json:"service" bson:"service"`
	InputType  string   `json:"inputType" bson:"inputType"`
	Units      string   `json:"units,omitempty" bson:"units,omitempty"`
	CustomList []string `json:"customList,omitempty" bson:"customList,omitempty"`
}

// Clone trả về bản sao sâu của ServiceDocument
func (d ServiceDocument) Clone() ServiceDocument {
	clone := d
	if d.Categories != nil {
		clone.Categories = make([]ServiceCategory, len(d.Categories))
		for i, category := range d.Categories {
			clone.Categories[i] = category
			if category.Services == nil {
				continue
			}
			services := make([]Service, len(category.Services))
			for j, service := range category.Services {
				services[j] = service
				if service.CustomList != nil {
					services[j].CustomList = make([]string, len(service.CustomList))
					copy(services[j].CustomList, service.CustomList)
				}
			}
			clone.Categories[i].Services = services
		}
	}
	return clone
}

// CategoryByUUID tìm service category theo uuid. Trả về nil nếu không tìm thấy.
func (d *ServiceDocument) CategoryByUUID(categoryUUID string) *ServiceCategory {
	if d == nil {
		return nil
	}
	for i := range d.Categories {
		if d.Categories[i].UUID == categoryUUID {
			return &d.Categories[i]
		}
	}
	return nil
}

// ServiceByUUIDs tìm service theo cặp uuid (category, service).
// Trả về nil nếu không tìm thấy.
func (d *ServiceDocument) ServiceByUUIDs(categoryUUID, serviceUUID string) *Service {
	category := d.CategoryByUUID(categoryUUID)
	if category == nil {
		return nil
	}
	for i := range category.Services {
		if category.Services[i].UUID == serviceUUID {
			return &category.Services[i]
		}
	}
	return nil
}
