// mongodb.go - MongoDB connection and medicine catalog loading

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/snapmed/medicine_id_gemini/configs"
)

var mongoClient *mongo.Client

const catalogCollection = "medicine_catalog"

// CatalogEntry is one medicine in the local fallback catalog
type CatalogEntry struct {
	BrandName         string   `json:"brandName" bson:"brand_name"`
	GenericName       string   `json:"genericName" bson:"generic_name"`
	ActiveIngredients []string `json:"activeIngredients" bson:"active_ingredients"`
	MedicineType      string   `json:"medicineType" bson:"medicine_type"`
	Manufacturer      string   `json:"manufacturer" bson:"manufacturer"`
	CommonUses        []string `json:"commonUses" bson:"common_uses"`
	Warnings          []string `json:"warnings" bson:"warnings"`
}

// InitMongoDB connects to MongoDB. A missing MONGO_URI is not an error:
// the fallback catalog then serves only the static seed.
func InitMongoDB() error {
	if configs.MONGO_URI == "" {
		log.Println("MONGO_URI not set - fallback catalog will use the static seed only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(configs.MONGO_URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoClient = client
	log.Printf("✓ Connected to MongoDB (%s)", configs.MONGO_DB_NAME)
	return nil
}

// CloseMongoDB disconnects the client
func CloseMongoDB() {
	if mongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mongoClient.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting MongoDB: %v", err)
	}
}

// LoadCatalogEntries reads the medicine catalog collection
func LoadCatalogEntries(ctx context.Context) ([]CatalogEntry, error) {
	if mongoClient == nil {
		return nil, fmt.Errorf("mongo not configured")
	}

	coll := mongoClient.Database(configs.MONGO_DB_NAME).Collection(catalogCollection)
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", catalogCollection, err)
	}
	defer cursor.Close(ctx)

	var entries []CatalogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", catalogCollection, err)
	}
	return entries, nil
}
