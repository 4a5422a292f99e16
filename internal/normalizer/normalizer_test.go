package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Paths(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		strategy string
		ids      []string
	}{
		{
			name:     "result.predictions",
			body:     `{"result":{"predictions":[{"product_id":"A","current_stock":10}]}}`,
			strategy: "result.predictions",
			ids:      []string{"A"},
		},
		{
			name:     "result.response_body.predictions",
			body:     `{"result":{"response_body":{"predictions":[{"product_id":"B"},{"product_id":"C"}]}}}`,
			strategy: "result.response_body.predictions",
			ids:      []string{"B", "C"},
		},
		{
			name:     "top-level predictions",
			body:     `{"predictions":[{"product_id":"D"}]}`,
			strategy: "predictions",
			ids:      []string{"D"},
		},
		{
			name:     "first path wins over later paths",
			body:     `{"result":{"predictions":[{"product_id":"first"}],"response_body":{"predictions":[{"product_id":"second"}]}},"predictions":[{"product_id":"third"}]}`,
			strategy: "result.predictions",
			ids:      []string{"first"},
		},
		{
			name:     "empty list falls through to next path",
			body:     `{"result":{"predictions":[],"response_body":{"predictions":[{"product_id":"nested"}]}}}`,
			strategy: "result.response_body.predictions",
			ids:      []string{"nested"},
		},
		{
			name:     "wrong type falls through",
			body:     `{"result":"pending","predictions":[{"product_id":"top"}]}`,
			strategy: "predictions",
			ids:      []string{"top"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, res.Strategy)

			ids := make([]string, len(res.Records))
			for i, r := range res.Records {
				ids[i] = r.ProductID
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestExtract_NoMatch(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `null`, `{"predictions":[]}`, `{"result":{"predictions":null}}`, `not json`} {
		res, err := Extract([]byte(body))
		require.NoError(t, err, body)
		assert.Empty(t, res.Records, body)
		assert.Empty(t, res.Strategy, body)
	}
}

func TestExtract_MalformedRecord(t *testing.T) {
	_, err := Extract([]byte(`{"predictions":[{"product_id":"A"},"oops"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predictions[1]")
}

func TestStrategiesOrder(t *testing.T) {
	assert.Equal(t, "result.predictions, result.response_body.predictions, predictions", Describe())
}
