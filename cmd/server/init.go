package main

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lovelidevs/HmisGo/config"
	"github.com/lovelidevs/HmisGo/core/api/handler"
	models "github.com/lovelidevs/HmisGo/core/api/models/mongodb"
	"github.com/lovelidevs/HmisGo/core/api/services"
	"github.com/lovelidevs/HmisGo/core/database"
	"github.com/lovelidevs/HmisGo/core/store"
)

// App gom mọi dependency của server: config, kết nối MongoDB, store,
// session và handler. Không có biến toàn cục; mọi thành phần nhận
// dependency qua constructor.
type App struct {
	Config   *config.Configuration
	Client   *mongo.Client
	Store    store.Store
	Session  *services.Session
	Validate *validator.Validate
	Handler  *handler.Handler

	cancel context.CancelFunc
}

// InitApp khởi tạo toàn bộ dependency theo thứ tự:
// config → validator → mongo → schema → store → session → handler.
func InitApp() *App {
	app := &App{}

	// Cấu hình server
	app.Config = config.NewConfig()
	if app.Config == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")

	// Validator
	app.Validate = validator.New()
	logrus.Info("Initialized validator")

	// Kết nối MongoDB
	var err error
	app.Client, err = database.GetInstance(app.Config)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Đảm bảo database, collections và indexes.
	// Change stream yêu cầu collection tồn tại trước khi Watch.
	collections := []string{
		store.CollClients,
		store.CollLocations,
		store.CollServices,
		store.CollDailyLists,
		store.CollNotes,
	}
	if err := database.EnsureDatabaseAndCollections(app.Client, app.Config.MongoDB_DBName, collections); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	db := app.Client.Database(app.Config.MongoDB_DBName)
	indexModels := map[string]interface{}{
		store.CollClients:    models.Client{},
		store.CollLocations:  models.LocationDocument{},
		store.CollServices:   models.ServiceDocument{},
		store.CollDailyLists: models.DailyList{},
		store.CollNotes:      models.Note{},
	}
	for collName, model := range indexModels {
		if err := database.CreateIndexes(context.TODO(), db.Collection(collName), model); err != nil {
			logrus.Fatalf("Failed to create indexes for %s: %v", collName, err)
		}
	}
	logrus.Info("Created indexes")

	// Store và session
	app.Store = store.NewMongoStore(db)

	sessionCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.Session, err = services.NewSession(sessionCtx, app.Store, app.Validate, app.Config.Organization)
	if err != nil {
		logrus.Fatalf("Failed to create session: %v", err)
	}
	logrus.Infof("Session opened for organization %q", app.Config.Organization)

	app.Handler = handler.NewHandler(app.Session)
	return app
}

// Shutdown đóng session, giải phóng store và ngắt kết nối MongoDB.
func (app *App) Shutdown() {
	if app.Session != nil {
		app.Session.Close()
	}
	if app.cancel != nil {
		app.cancel()
	}
	if mongoStore, ok := app.Store.(*store.MongoStore); ok {
		mongoStore.Close()
	}
	if app.Client != nil {
		_ = database.CloseInstance(app.Client)
	}
}
