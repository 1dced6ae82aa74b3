package domain_test

import (
	"testing"
	"time"

	"habitwatch/internal/modules/workflow/domain"
	"habitwatch/internal/platform/habits"
)

const sampleResponse = `{
  "outputs": [
    {
      "top_class": "chomping",
      "classification_predictions": {
        "inference_id": "inf-1",
        "top": "chomping",
        "confidence": 0.93,
        "predictions": [{"class": "chomping", "class_id": 1, "confidence": 0.93}]
      },
      "detection_predictions": {
        "predictions": [
          {"x": 320, "y": 240, "width": 200, "height": 300, "class": "chomping", "confidence": 0.88}
        ]
      }
    }
  ]
}`

func TestDecodeResult(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	res, err := domain.DecodeResult([]byte(sampleResponse), at)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TopClass != "chomping" {
		t.Errorf("top class = %q", res.TopClass)
	}
	if res.Confidence != 0.93 {
		t.Errorf("confidence = %v", res.Confidence)
	}
	if res.InferenceID != "inf-1" {
		t.Errorf("inference id = %q", res.InferenceID)
	}
	if !res.ObservedAt.Equal(at) {
		t.Errorf("observed at = %v", res.ObservedAt)
	}
	if !res.HasDetections() || len(res.Detections) != 1 {
		t.Fatalf("detections = %v", res.Detections)
	}
	if box := res.Detections[0]; box.Class != "chomping" || box.Width != 200 {
		t.Errorf("box = %+v", box)
	}
}

func TestDecodeResultTopClassFallsBackToClassification(t *testing.T) {
	t.Parallel()
	body := `{"outputs":[{"classification_predictions":{"top":"pondering","confidence":0.4}}]}`
	res, err := domain.DecodeResult([]byte(body), time.Now())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TopClass != "pondering" {
		t.Errorf("top class = %q, want pondering", res.TopClass)
	}
}

func TestDecodeResultErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no outputs", `{"outputs":[]}`},
		{"no classification", `{"outputs":[{"top_class":"chomping"}]}`},
		{"confidence above one", `{"outputs":[{"classification_predictions":{"top":"chomping","confidence":1.2}}]}`},
		{"negative box confidence", `{"outputs":[{"classification_predictions":{"top":"chomping","confidence":0.9},"detection_predictions":{"predictions":[{"class":"chomping","confidence":-0.1}]}}]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := domain.DecodeResult([]byte(tc.body), time.Now()); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestQualifies(t *testing.T) {
	t.Parallel()
	catalog := habits.Default()

	cases := []struct {
		name      string
		class     string
		conf      float64
		threshold float64
		want      bool
	}{
		{"above threshold", "chomping", 0.95, 0.5, true},
		{"at threshold", "chomping", 0.5, 0.5, true},
		{"below threshold", "chomping", 0.4, 0.5, false},
		{"untracked class", "pondering", 0.99, 0.5, false},
		{"unknown class", "juggling", 0.99, 0.5, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := domain.Result{TopClass: tc.class, Confidence: tc.conf}
			if got := res.Qualifies(tc.threshold, catalog); got != tc.want {
				t.Errorf("qualifies = %v, want %v", got, tc.want)
			}
		})
	}
}
