package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/pulse/internal/api"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"golang.org/x/term"
)

// predictFlags are the non-interactive prediction inputs.
type predictFlags struct {
	Model    string
	Feature1 string
	Feature2 string
}

func (f predictFlags) empty() bool {
	return f.Model == "" && f.Feature1 == "" && f.Feature2 == ""
}

// predictCommand runs one prediction, prompting with a form when no flags
// are given and stdin is a terminal.
func predictCommand(ctx context.Context, out io.Writer, flags predictFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := monitor.PredictionInput{ModelType: flags.Model, Feature1: flags.Feature1, Feature2: flags.Feature2}
	if flags.empty() {
		if machineMode || !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New(errors.ErrValidation,
				"No prediction inputs given",
				"Pass --model, --feature1 and --feature2")
		}
		if err := monitor.NewPredictionForm(&in).RunWithContext(ctx); err != nil {
			return errors.WrapWithCode(err, errors.ErrValidation, "Prediction cancelled", "")
		}
	}

	req := in.Request()
	if err := req.Validate(); err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg, logger.NewEnvLogger("[pulse]"))
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.client.Predict(ctx, req)
	if err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(out, predictionPayload(res))
	}
	fmt.Fprintln(out, monitor.RenderPrediction(res, 60))
	return nil
}

// PredictionPayload is the --json payload of `pulse predict`.
type PredictionPayload struct {
	Label             string             `json:"label"`
	Prediction        api.Prediction     `json:"prediction"`
	Confidence        float64            `json:"confidence"`
	ModelType         string             `json:"model_type"`
	Timestamp         string             `json:"timestamp,omitempty"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

func predictionPayload(r api.PredictionResult) PredictionPayload {
	p := PredictionPayload{
		Label:             r.Label(),
		Prediction:        r.Prediction,
		Confidence:        r.Confidence,
		ModelType:         r.ModelType,
		FeatureImportance: r.FeatureImportance,
	}
	if !r.Timestamp.IsZero() {
		p.Timestamp = r.Timestamp.Format(time.RFC3339)
	}
	return p
}
