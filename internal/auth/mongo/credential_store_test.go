package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestPasswordUpdateIsOneDocumentWrite(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	update := passwordUpdate("h6", 5, now)

	assert.Equal(t, bson.M{"password_hash": "h6", "updated_at": now}, update["$set"])
	assert.Equal(t, bson.M{"token_version": 1}, update["$inc"])
	assert.Equal(t, bson.M{"password_history": bson.M{"$each": bson.A{"h6"}, "$slice": -5}}, update["$push"])
	assert.Len(t, update, 3)
}

func TestPasswordUpdateKeepsAtLeastTheNewHash(t *testing.T) {
	push := passwordUpdate("h1", 0, time.Now())["$push"].(bson.M)
	assert.Equal(t, -1, push["password_history"].(bson.M)["$slice"])
}

func TestNewestFirst(t *testing.T) {
	tests := []struct {
		name    string
		history []string
		limit   int
		want    []string
	}{
		{name: "empty", history: nil, limit: 5, want: []string{}},
		{name: "under limit", history: []string{"h1", "h2"}, limit: 5, want: []string{"h2", "h1"}},
		{name: "over limit", history: []string{"h1", "h2", "h3", "h4"}, limit: 2, want: []string{"h4", "h3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newestFirst(tt.history, tt.limit))
		})
	}
}

func TestLiveResetTokenFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"token_hash": "abc", "expires_at": bson.M{"$gt": now}}, liveResetToken("abc", now))
}
