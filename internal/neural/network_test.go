package neural

import (
	"math/rand"
	"testing"

	"boidrace/internal/model"
)

func TestNewFeedforwardValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewFeedforward(rng, 5); err == nil {
		t.Fatal("expected error for single-layer network")
	}
	if _, err := NewFeedforward(rng, 5, 0, 2); err == nil {
		t.Fatal("expected error for zero-size layer")
	}
}

func TestRunOutputsInUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net, err := NewFeedforward(rng, 5, 6, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}

	out, err := net.Run([]float64{0.1, 0.5, 0.9, 0.3, 0.7})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(out))
	}
	for i, v := range out {
		if v <= 0 || v >= 1 {
			t.Fatalf("output %d out of (0,1): %v", i, v)
		}
	}
}

func TestRunInputSizeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net, err := NewFeedforward(rng, 5, 6, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	if _, err := net.Run([]float64{1, 2}); err == nil {
		t.Fatal("expected input size mismatch error")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	source, err := NewFeedforward(rng, 5, 6, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	target, err := NewFeedforward(rng, 5, 6, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}

	state := source.Snapshot()
	if len(state.Layers) != 3 {
		t.Fatalf("expected placeholder plus two weighted layers, got %d", len(state.Layers))
	}
	if len(state.Layers[0].Weights) != 0 {
		t.Fatal("leading layer must be a weightless placeholder")
	}

	if err := target.Restore(state); err != nil {
		t.Fatalf("restore: %v", err)
	}

	inputs := []float64{0.2, 0.4, 0.6, 0.8, 1.0}
	wantOut, err := source.Run(inputs)
	if err != nil {
		t.Fatalf("source run: %v", err)
	}
	gotOut, err := target.Run(inputs)
	if err != nil {
		t.Fatalf("target run: %v", err)
	}
	for i := range wantOut {
		if wantOut[i] != gotOut[i] {
			t.Fatalf("output %d mismatch after restore: want %v got %v", i, wantOut[i], gotOut[i])
		}
	}
}

func TestRestoreWithoutPlaceholder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net, err := NewFeedforward(rng, 2, 3, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}

	state := net.Snapshot()
	// Strip the placeholder; the other layer-list convention from the
	// external bindings omits it entirely.
	state = model.NetworkState{Layers: state.Layers[1:]}
	if err := net.Restore(state); err != nil {
		t.Fatalf("restore without placeholder: %v", err)
	}
}

func TestRestoreShapeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net, err := NewFeedforward(rng, 2, 3, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	other, err := NewFeedforward(rng, 4, 3, 2)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	if err := net.Restore(other.Snapshot()); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
