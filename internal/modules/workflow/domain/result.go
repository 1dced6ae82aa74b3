package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"habitwatch/internal/platform/habits"
)

// Detection is one bounding box from the workflow's object-detection stage.
type Detection struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Class      string
	Confidence float64
}

// Result is one classified camera frame as delivered by the hosted
// workflow.
type Result struct {
	TopClass    string
	Confidence  float64
	Detections  []Detection
	InferenceID string
	ObservedAt  time.Time
}

// Qualifies reports whether this frame counts as a habit detection: the
// top class must be a tracked habit and the confidence must reach the
// threshold.
func (r Result) Qualifies(threshold float64, catalog habits.Catalog) bool {
	return catalog.Tracked(r.TopClass) && r.Confidence >= threshold
}

// HasDetections reports whether the workflow attached bounding boxes.
func (r Result) HasDetections() bool {
	return len(r.Detections) > 0
}

// Wire shapes for the hosted workflow response. A response carries one
// output object per submitted image.
type wireResponse struct {
	Outputs []wireOutput `json:"outputs"`
}

type wireOutput struct {
	TopClass                  string              `json:"top_class"`
	ClassificationPredictions *wireClassification `json:"classification_predictions"`
	DetectionPredictions      *wireDetections     `json:"detection_predictions"`
}

type wireClassification struct {
	InferenceID string  `json:"inference_id"`
	Top         string  `json:"top"`
	Confidence  float64 `json:"confidence"`
}

type wireDetections struct {
	Predictions []wireBox `json:"predictions"`
}

type wireBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// DecodeResult parses a hosted workflow response body into a Result,
// stamping it with the observation time.
func DecodeResult(data []byte, observedAt time.Time) (Result, error) {
	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Result{}, fmt.Errorf("decode workflow response: %w", err)
	}
	if len(resp.Outputs) == 0 {
		return Result{}, fmt.Errorf("workflow response has no outputs")
	}
	out := resp.Outputs[0]
	if out.ClassificationPredictions == nil {
		return Result{}, fmt.Errorf("workflow response has no classification predictions")
	}
	cls := out.ClassificationPredictions
	if cls.Confidence < 0 || cls.Confidence > 1 {
		return Result{}, fmt.Errorf("confidence %v outside [0,1]", cls.Confidence)
	}

	top := out.TopClass
	if top == "" {
		top = cls.Top
	}
	result := Result{
		TopClass:    top,
		Confidence:  cls.Confidence,
		InferenceID: cls.InferenceID,
		ObservedAt:  observedAt,
	}
	if out.DetectionPredictions != nil {
		for _, box := range out.DetectionPredictions.Predictions {
			if box.Confidence < 0 || box.Confidence > 1 {
				return Result{}, fmt.Errorf("detection confidence %v outside [0,1]", box.Confidence)
			}
			result.Detections = append(result.Detections, Detection(box))
		}
	}
	return result, nil
}
