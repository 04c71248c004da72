package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSnapshotDay(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	evening := time.Date(2024, 5, 3, 20, 0, 0, 0, nairobi)

	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), SnapshotDay(evening))
	assert.Equal(t, SnapshotDay(evening), SnapshotDay(evening.Add(2*time.Hour)))
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 5, 3, 17, 30, 0, 0, time.UTC)
	key := snapshotKey(7, at)

	assert.Equal(t, bson.D{
		{Key: "summary.farmer_id", Value: 7},
		{Key: "date", Value: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
	}, key)
}
