package api

import (
	"math"
	"testing"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PredictionRequest
		wantErr string
	}{
		{
			name: "complete",
			req:  PredictionRequest{ModelType: ModelRegression, Features: map[string]float64{"feature1": 0, "feature2": -3}},
		},
		{
			name:    "missing model type",
			req:     PredictionRequest{Features: map[string]float64{"feature1": 1, "feature2": 2}},
			wantErr: "model type",
		},
		{
			name:    "missing feature2",
			req:     PredictionRequest{ModelType: ModelClustering, Features: map[string]float64{"feature1": 1}},
			wantErr: "Please fill in all feature values",
		},
		{
			name:    "nil features",
			req:     PredictionRequest{ModelType: ModelClustering},
			wantErr: "Please fill in all feature values",
		},
		{
			name:    "NaN feature",
			req:     PredictionRequest{ModelType: ModelRegression, Features: map[string]float64{"feature1": math.NaN(), "feature2": 1}},
			wantErr: "feature1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrediction_Label(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"regression", `42.4567`, "42.46"},
		{"classification", `{"predicted_class":"Class A"}`, "Class A"},
		{"clustering", `{"cluster_id":2}`, "Cluster 2"},
		{"cluster zero", `{"cluster_id":0}`, "Cluster 0"},
		{"null", `null`, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Prediction
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.Equal(t, tt.want, p.Label())
		})
	}
}

func TestPrediction_RejectsStrings(t *testing.T) {
	var p Prediction
	err := json.Unmarshal([]byte(`"high"`), &p)
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{`"2024-03-01T12:00:00Z"`, false},
		{`"2024-03-01T12:00:00.5+02:00"`, false},
		{`"2024-03-01T12:00:00.123456"`, false},
		{`"2024-03-01 12:00:00"`, false},
		{`""`, false},
		{`"yesterday"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.raw), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSortedImportance_Ties(t *testing.T) {
	res := PredictionResult{FeatureImportance: map[string]float64{"b": 0.5, "a": 0.5, "c": 0.9}}
	imp := res.SortedImportance()

	require.Len(t, imp, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{imp[0].Feature, imp[1].Feature, imp[2].Feature})
}
