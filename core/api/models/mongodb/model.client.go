// Package models - các model ánh xạ 1-1 với document trong document store.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client đại diện một khách hàng của tổ chức.
// Client được tạo từ intake form; serviceHistory chỉ được ghi bởi
// Submission Coordinator, không bao giờ bởi UI trực tiếp.
type Client struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Organization   string             `json:"organization" bson:"organization" index:"single:1"`
	LastName       string             `json:"lastName" bson:"lastName" index:"single:1"`
	FirstName      string             `json:"firstName" bson:"firstName"`
	DOB            string             `json:"DOB,omitempty" bson:"DOB,omitempty"` // YYYY-MM-DD
	Alias          string             `json:"alias,omitempty" bson:"alias,omitempty"`
	HmisID         string             `json:"hmisID,omitempty" bson:"hmisID,omitempty"`
	ServiceHistory []ClientContact    `json:"serviceHistory,omitempty" bson:"serviceHistory,omitempty"`
}

// ClientContact là bản ghi visit đã denormalize, lưu vĩnh viễn trên Client
// sau khi submit. City/LocationCategory là display string đã resolve từ UUID
// tại thời điểm submit, không lưu theo reference.
type ClientContact struct {
	Date             string          `json:"date" bson:"date"` // YYYY-MM-DD, từ timestamp của Contact
	Time             string          `json:"time,omitempty" bson:"time,omitempty"`
	City             string          `json:"city,omitempty" bson:"city,omitempty"`
	LocationCategory string          `json:"locationCategory,omitempty" bson:"locationCategory,omitempty"`
	Location         string          `json:"location,omitempty" bson:"location,omitempty"`
	Services         []ClientService `json:"services,omitempty" bson:"services,omitempty"`
}

// ClientService là ContactService đã bỏ uuid (display name là đủ cho lịch sử).
type ClientService struct {
	Service string   `json:"service" bson:"service"`
	Text    string   `json:"text,omitempty" bson:"text,omitempty"`
	Count   int      `json:"count,omitempty" bson:"count,omitempty"`
	Units   string   `json:"units,omitempty" bson:"units,omitempty"`
	List    []string `json:"list,omitempty" bson:"list,omitempty"`
}

// DisplayName trả về tên hiển thị của client: "First Last (alias)"
func (c *Client) DisplayName() string {
	text := c.FirstName + " " + c.LastName
	if c.Alias != "" {
		text += " (" + c.Alias + ")"
	}
	return text
}

// Clone trả về bản sao sâu của Client
func (c Client) Clone() Client {
	clone := c
	if c.ServiceHistory != nil {
		clone.ServiceHistory = make([]ClientContact, len(c.ServiceHistory))
		for i, cc := range c.ServiceHistory {
			clone.ServiceHistory[i] = cc.Clone()
		}
	}
	return clone
}

// Clone trả về bản sao sâu của ClientContact
func (cc ClientContact) Clone() ClientContact {
	clone := cc
	if cc.Services != nil {
		clone.Services = make([]ClientService, len(cc.Services))
		for i, s := range cc.Services {
			clone.Services[i] = s
			if s.List != nil {
				clone.Services[i].List = make([]string, len(s.List))
				copy(clone.Services[i].List, s.List)
			}
		}
	}
	return clone
}
