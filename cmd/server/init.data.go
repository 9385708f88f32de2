package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/logger"
	"github.com/lovelidevs/HmisGo/core/store"
)

// InitDefaultData seed cây locations và services mặc định cho tổ chức nếu
// collection tương ứng còn trống. Cho phép instance mới dùng được ngay;
// tooling quản trị sẽ thay thế cây mặc định sau.
func InitDefaultData(app *App) {
	if !app.Config.SeedReferenceData {
		logger.GetAppLogger().Info("SEED_REFERENCE_DATA tắt, bỏ qua seed dữ liệu tham chiếu")
		return
	}

	log := logger.GetAppLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	org := app.Config.Organization
	orgFilter := bson.M{"organization": org}

	// Locations
	docs, err := app.Store.Query(ctx, store.CollLocations, orgFilter)
	if err != nil {
		log.WithError(err).Warn("Không kiểm tra được collection locations, bỏ qua seed")
	} else if len(docs) == 0 {
		seed := defaultLocationDocument(org)
		if _, err := app.Store.Insert(ctx, store.CollLocations, seed); err != nil {
			log.WithError(err).Warn("Seed location document thất bại")
		} else {
			log.Info("Đã seed location document mặc định")
		}
	}

	// Services
	docs, err = app.Store.Query(ctx, store.CollServices, orgFilter)
	if err != nil {
		log.WithError(err).Warn("Không kiểm tra được collection services, bỏ qua seed")
	} else if len(docs) == 0 {
		seed := defaultServiceDocument(org)
		if _, err := app.Store.Insert(ctx, store.CollServices, seed); err != nil {
			log.WithError(err).Warn("Seed service document thất bại")
		} else {
			log.Info("Đã seed service document mặc định")
		}
	}
}

// defaultLocationDocument dựng cây locations tối thiểu để instance mới
// dùng được ngay.
func defaultLocationDocument(organization string) models.LocationDocument {
	return models.LocationDocument{
		Organization: organization,
		Cities: []models.City{
			{
				UUID: uuid.NewString(),
				City: "Downtown",
				Categories: []models.LocationCategory{
					{
						UUID:     uuid.NewString(),
						Category: "Shelters",
						Locations: []models.Location{
							{UUID: uuid.NewString(), Location: "Main Street Shelter"},
						},
					},
					{
						UUID:     uuid.NewString(),
						Category: "Outreach",
						Locations: []models.Location{
							{
								UUID:     uuid.NewString(),
								Location: "Central Park",
								Places:   []string{"North Entrance", "South Entrance"},
							},
						},
					},
				},
			},
		},
	}
}

// defaultServiceDocument dựng cây services với đủ các inputType để màn hình
// nhập liệu hoạt động được ngay.
func defaultServiceDocument(organization string) models.ServiceDocument {
	return models.ServiceDocument{
		Organization: organization,
		Categories: []models.ServiceCategory{
			{
				UUID:     uuid.NewString(),
				Category: "Basic Needs",
				Services: []models.Service{
					{UUID: uuid.NewString(), Service: "Meal", InputType: models.InputTypeCounter, Units: "meals"},
					{UUID: uuid.NewString(), Service: "Water", InputType: models.InputTypeCounter, Units: "bottles"},
					{UUID: uuid.NewString(), Service: "Hygiene Kit", InputType: models.InputTypeToggle},
				},
			},
			{
				UUID:     uuid.NewString(),
				Category: "Referrals",
				Services: []models.Service{
					{UUID: uuid.NewString(), Service: "Shelter Referral", InputType: models.InputTypeLocations},
					{UUID: uuid.NewString(), Service: "Other", InputType: models.InputTypeTextbox},
					{
						UUID:       uuid.NewString(),
						Service:    "Clothing",
						InputType:  models.InputTypeCustomList,
						CustomList: []string{"Socks", "Jacket", "Blanket"},
					},
				},
			},
		},
	}
}
