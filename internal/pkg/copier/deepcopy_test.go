package copier_test

import (
	"testing"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/pkg/copier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopy(t *testing.T) {
	src := domain.Record{
		"id":   1,
		"tags": []any{"a", map[string]any{"k": "v"}},
		"address": map[string]any{
			"city": "Lisbon",
		},
	}

	dst, err := copier.DeepCopy(src)
	require.NoError(t, err)
	assert.Equal(t, src, dst)

	dst["address"].(map[string]any)["city"] = "Porto"
	dst["tags"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, "Lisbon", src["address"].(map[string]any)["city"])
	assert.Equal(t, "v", src["tags"].([]any)[1].(map[string]any)["k"])
}

func TestRecords(t *testing.T) {
	src := []domain.Record{{"id": 1}, {"id": 2}}
	dst := copier.Records(src)

	dst[0]["id"] = 99
	assert.Equal(t, 1, src[0]["id"])

	assert.NotNil(t, copier.Records(nil))
	assert.Empty(t, copier.Records(nil))
	assert.Nil(t, copier.Record(nil))
}
