package mongo

import (
	"testing"

	"github.com/frahmantamala/hrms/internal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestLinkedUserMatched(t *testing.T) {
	tests := []struct {
		name string
		res  *mongo.UpdateResult
		want error
	}{
		{name: "user updated", res: &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}},
		{name: "role unchanged still matches", res: &mongo.UpdateResult{MatchedCount: 1}},
		{name: "dangling user_id", res: &mongo.UpdateResult{}, want: internal.ErrUserNotFound},
		{name: "no result", res: nil, want: internal.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := linkedUserMatched(tt.res)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
