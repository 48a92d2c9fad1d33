package numeric

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVWAP_WeightsByVolume(t *testing.T) {
	// (10*100 + 20*300) / 400 = 17.5
	got, err := VWAP([]float64{10, 20}, []float64{100, 300})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 17.5) {
		t.Errorf("expected 17.5, got %f", got)
	}
}

func TestVWAP_ZeroVolumeFallsBackToMean(t *testing.T) {
	got, err := VWAP([]float64{10, 20}, []float64{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 15) {
		t.Errorf("expected 15, got %f", got)
	}
}

func TestVWAP_EmptyInput(t *testing.T) {
	if _, err := VWAP(nil, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestVWAP_SingleVenue(t *testing.T) {
	got, err := VWAP([]float64{42.5}, []float64{1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 42.5) {
		t.Errorf("expected 42.5, got %f", got)
	}
}

func TestWeightedMean_SkipsZeroWeightEntries(t *testing.T) {
	// The zero-weight entry must not drag the result down.
	got, err := WeightedMean([]float64{100, 999}, []float64{50, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 100) {
		t.Errorf("expected 100, got %f", got)
	}
}

func TestWeightedMean_AllZeroWeightsFallsBackToMean(t *testing.T) {
	got, err := WeightedMean([]float64{10, 30}, []float64{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 20) {
		t.Errorf("expected 20, got %f", got)
	}
}
