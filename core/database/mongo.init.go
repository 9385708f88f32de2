package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lovelidevs/HmisGo/core/logger"
)

// EnsureDatabaseAndCollections đảm bảo database và các collection cần thiết
// tồn tại. Collection chưa có sẽ được tạo mới; change stream yêu cầu
// collection tồn tại trước khi Watch nên bước này chạy trước khi mở session.
//
// Tham số:
// - client: Client MongoDB đã kết nối.
// - dbName: Tên database.
// - collections: Danh sách tên collection cần đảm bảo.
func EnsureDatabaseAndCollections(client *mongo.Client, dbName string, collections []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(dbName)
	collList, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	existing := map[string]bool{}
	for _, name := range collList {
		existing[name] = true
	}

	for _, collectionName := range collections {
		if existing[collectionName] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", collectionName)
		if err := db.CreateCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
		}
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", dbName)
	return nil
}

// parseOrder trích xuất thứ tự sắp xếp từ tag (1 hoặc -1)
func parseOrder(tag string) int {
	if strings.Contains(tag, ":-1") {
		return -1
	}
	return 1
}

// CreateIndexes tạo index cho collection dựa trên tag `index` của model.
// Hỗ trợ hai dạng tag:
//   - index:"single:1" hoặc index:"single:-1"  → single-field index
//   - index:"unique"                            → unique index
//
// Index đã tồn tại với đúng tên thì bỏ qua.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bool{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existing[name] = true
		}
	}

	log := logger.WithCollection(collection.Name())
	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}

		bsonField := field.Tag.Get("bson")
		if bsonField == "" || bsonField == "-" {
			continue
		}
		if comma := strings.Index(bsonField, ","); comma >= 0 {
			bsonField = bsonField[:comma]
		}

		var keys bson.D
		var opts *options.IndexOptions
		var indexName string

		switch {
		case strings.HasPrefix(tag, "single"):
			indexName = bsonField + "_single"
			keys = bson.D{{Key: bsonField, Value: parseOrder(tag)}}
			opts = options.Index().SetName(indexName)
		case strings.HasPrefix(tag, "unique"):
			indexName = bsonField + "_unique"
			keys = bson.D{{Key: bsonField, Value: 1}}
			opts = options.Index().SetName(indexName).SetUnique(true)
		default:
			log.Warnf("Tag index không hỗ trợ trên field %s: %q", field.Name, tag)
			continue
		}

		if existing[indexName] {
			continue
		}
		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", indexName, err)
		}
		log.Infof("Đã tạo index: %s", indexName)
	}

	return nil
}
