package api

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// Model types accepted by the prediction endpoint.
const (
	ModelRegression     = "regression"
	ModelClassification = "classification"
	ModelClustering     = "clustering"
)

// ModelTypes lists the model types in the order the form offers them.
var ModelTypes = []string{ModelRegression, ModelClassification, ModelClustering}

// RequiredFeatures must be present and finite in every request.
var RequiredFeatures = []string{"feature1", "feature2"}

// PredictionRequest is a one-shot prediction input.
type PredictionRequest struct {
	ModelType string             `json:"model_type"`
	Features  map[string]float64 `json:"features"`
}

// Validate returns a VALIDATION error when the model type or a required
// feature is missing.
func (r PredictionRequest) Validate() error {
	if strings.TrimSpace(r.ModelType) == "" {
		return errors.New(errors.ErrValidation,
			"Pick a model type",
			"One of: "+strings.Join(ModelTypes, ", "))
	}
	for _, name := range RequiredFeatures {
		v, ok := r.Features[name]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrValidation,
				"Please fill in all feature values",
				fmt.Sprintf("'%s' needs a number", name))
		}
	}
	return nil
}

// Prediction holds either a numeric regression output or a
// classification/clustering object.
type Prediction struct {
	Value          *float64
	PredictedClass string
	ClusterID      *int
}

type predictionObject struct {
	PredictedClass string `json:"predicted_class,omitempty"`
	ClusterID      *int   `json:"cluster_id,omitempty"`
}

func (p *Prediction) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*p = Prediction{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '{' {
		var obj predictionObject
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		p.PredictedClass = obj.PredictedClass
		p.ClusterID = obj.ClusterID
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("prediction is neither a number nor an object: %w", err)
	}
	p.Value = &v
	return nil
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	if p.Value != nil {
		return json.Marshal(*p.Value)
	}
	return json.Marshal(predictionObject{PredictedClass: p.PredictedClass, ClusterID: p.ClusterID})
}

// Label renders the prediction the way the dashboard shows it.
func (p Prediction) Label() string {
	switch {
	case p.Value != nil:
		return fmt.Sprintf("%.2f", *p.Value)
	case p.PredictedClass != "":
		return p.PredictedClass
	case p.ClusterID != nil:
		return fmt.Sprintf("Cluster %d", *p.ClusterID)
	default:
		return "-"
	}
}

// PredictionResult is the prediction endpoint's response.
type PredictionResult struct {
	Prediction        Prediction         `json:"prediction"`
	Confidence        float64            `json:"confidence"`
	ModelType         string             `json:"model_type"`
	Timestamp         Timestamp          `json:"timestamp"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Label is shorthand for r.Prediction.Label().
func (r PredictionResult) Label() string {
	return r.Prediction.Label()
}

// ConfidencePercent formats confidence in [0,1] as a percentage.
func (r PredictionResult) ConfidencePercent() string {
	return fmt.Sprintf("%.1f%%", r.Confidence*100)
}

// Importance is one feature's weight.
type Importance struct {
	Feature string
	Weight  float64
}

// Percent formats the weight as a percentage.
func (i Importance) Percent() string {
	return fmt.Sprintf("%.1f%%", i.Weight*100)
}

// SortedImportance returns feature weights, heaviest first. Ties sort by name.
func (r PredictionResult) SortedImportance() []Importance {
	out := make([]Importance, 0, len(r.FeatureImportance))
	for name, w := range r.FeatureImportance {
		out = append(out, Importance{Feature: name, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
