package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shirtcatalog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// shirtDocument is the stored form of a shirt.
type shirtDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Brand     string             `bson:"brand"`
	Size      string             `bson:"size"`
	Price     float64            `bson:"price"`
	PhotoRef  string             `bson:"photo_ref"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d shirtDocument) toModel() *models.Shirt {
	return &models.Shirt{
		ID:        d.ID.Hex(),
		Brand:     d.Brand,
		Size:      d.Size,
		Price:     d.Price,
		PhotoRef:  d.PhotoRef,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoShirtRepository stores shirts as documents in a MongoDB collection.
type MongoShirtRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoShirtRepository creates a repository over database.collection.
func NewMongoShirtRepository(client *mongo.Client, database, collection string) *MongoShirtRepository {
	return &MongoShirtRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// List returns a window of shirts in _id order.
func (r *MongoShirtRepository) List(ctx context.Context, offset, limit int) ([]models.Shirt, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count shirts: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetSkip(int64(max(offset, 0))).SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shirts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []shirtDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode shirts: %w", err)
	}

	shirts := make([]models.Shirt, 0, len(docs))
	for _, doc := range docs {
		shirts = append(shirts, *doc.toModel())
	}
	return shirts, total, nil
}

// GetByID retrieves a single shirt by its ObjectID hex string.
func (r *MongoShirtRepository) GetByID(ctx context.Context, id string) (*models.Shirt, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc shirtDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shirt by ID %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// Create inserts a new document and sets shirt.ID to its ObjectID.
func (r *MongoShirtRepository) Create(ctx context.Context, shirt *models.Shirt) error {
	now := time.Now().UTC()
	doc := shirtDocument{
		ID:        primitive.NewObjectID(),
		Brand:     shirt.Brand,
		Size:      shirt.Size,
		Price:     shirt.Price,
		PhotoRef:  shirt.PhotoRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create shirt: %w", err)
	}
	shirt.ID = doc.ID.Hex()
	shirt.CreatedAt = now
	shirt.UpdatedAt = now
	return nil
}

// Update sets only the fields present in changes and returns the updated shirt.
func (r *MongoShirtRepository) Update(ctx context.Context, id string, changes models.ShirtChanges) (*models.Shirt, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for column, value := range changes.Columns() {
		set[column] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc shirtDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update shirt %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// Delete removes the document and returns it.
func (r *MongoShirtRepository) Delete(ctx context.Context, id string) (*models.Shirt, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc shirtDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete shirt %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// Migrate creates the collection when it does not exist yet.
func (r *MongoShirtRepository) Migrate(ctx context.Context) error {
	db := r.collection.Database()
	names, err := db.ListCollectionNames(ctx, bson.M{"name": r.collection.Name()})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, r.collection.Name()); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", r.collection.Name(), err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoShirtRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
