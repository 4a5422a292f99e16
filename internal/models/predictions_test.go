package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRecord_UnmarshalOptionalFields(t *testing.T) {
	var rec PredictionRecord
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":"SKU-1","current_stock":42}`), &rec))

	assert.Equal(t, "SKU-1", rec.ProductID)
	assert.Equal(t, 42.0, rec.CurrentStock)
	assert.Zero(t, rec.PredictedDemand)
	assert.Zero(t, rec.TotalSales)
	assert.Zero(t, rec.RecommendedRestock)
}

func TestPredictionRecord_UnmarshalLooseTypes(t *testing.T) {
	var rec PredictionRecord
	data := `{"product_id":1001,"current_stock":"17","predicted_demand":"12.5","total_sales":null,"recommended_restock":""}`
	require.NoError(t, json.Unmarshal([]byte(data), &rec))

	assert.Equal(t, "1001", rec.ProductID)
	assert.Equal(t, 17.0, rec.CurrentStock)
	assert.Equal(t, 12.5, rec.PredictedDemand)
	assert.Zero(t, rec.TotalSales)
	assert.Zero(t, rec.RecommendedRestock)
}

func TestPredictionRecord_UnmarshalRejectsGarbage(t *testing.T) {
	var rec PredictionRecord
	assert.Error(t, json.Unmarshal([]byte(`{"product_id":"A","current_stock":"lots"}`), &rec))
	assert.Error(t, json.Unmarshal([]byte(`{"product_id":true}`), &rec))
	assert.Error(t, json.Unmarshal([]byte(`42`), &rec))
}

func TestPredictionRecord_MarshalKeepsUpstreamFields(t *testing.T) {
	src := `{"product_id":"SKU-9","current_stock":5,"product_name":"Oat milk","confidence":0.83}`

	var rec PredictionRecord
	require.NoError(t, json.Unmarshal([]byte(src), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}

func TestPredictionRecord_MarshalWithoutSource(t *testing.T) {
	rec := PredictionRecord{ProductID: "X", CurrentStock: 3, PredictedDemand: 7}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":"X","current_stock":3,"predicted_demand":7,"total_sales":0,"recommended_restock":0}`, string(out))
}
