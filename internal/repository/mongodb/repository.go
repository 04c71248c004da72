package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

// Repository defines the interface for dashboard snapshot storage.
type Repository interface {
	SaveDashboardSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
	RecentSnapshots(ctx context.Context, farmerID int, limit int64) ([]models.DashboardSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "dashboard_snapshots",
	}, nil
}

// SaveDashboardSnapshot stores the snapshot, replacing any earlier one for the same farmer and day.
func (r *MongoDBRepository) SaveDashboardSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	snapshot.Date = SnapshotDay(snapshot.Date)
	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, snapshotKey(snapshot.Summary.FarmerID, snapshot.Date), snapshot, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert dashboard snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots of the farmer, newest first.
func (r *MongoDBRepository) RecentSnapshots(ctx context.Context, farmerID int, limit int64) ([]models.DashboardSnapshot, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	cursor, err := collection.Find(ctx, bson.D{{Key: "summary.farmer_id", Value: farmerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []models.DashboardSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func snapshotKey(farmerID int, date time.Time) bson.D {
	return bson.D{
		{Key: "summary.farmer_id", Value: farmerID},
		{Key: "date", Value: SnapshotDay(date)},
	}
}

// SnapshotDay truncates t to midnight UTC so one snapshot is kept per calendar day.
func SnapshotDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
