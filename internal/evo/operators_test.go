package evo

import (
	"math"
	"math/rand"
	"testing"

	"boidrace/internal/model"
)

func testState(fill float64) model.NetworkState {
	return model.NetworkState{Layers: []model.NetworkLayer{
		{},
		{
			Weights: [][]float64{{fill, fill}, {fill, fill}},
			Biases:  []float64{fill, fill},
		},
		{
			Weights: [][]float64{{fill, fill}},
			Biases:  []float64{fill},
		},
	}}
}

func TestMutateRateZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := testState(0.5)
	out := Mutate(rng, in, 0)

	for li, layer := range out.Layers {
		for ri, row := range layer.Weights {
			for wi, w := range row {
				if w != in.Layers[li].Weights[ri][wi] {
					t.Fatalf("weight [%d][%d][%d] changed at rate 0", li, ri, wi)
				}
			}
		}
		for bi, b := range layer.Biases {
			if b != in.Layers[li].Biases[bi] {
				t.Fatalf("bias [%d][%d] changed at rate 0", li, bi)
			}
		}
	}
}

func TestMutateRateOneTouchesEveryParameter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := testState(0.5)
	out := Mutate(rng, in, 1)

	for li, layer := range out.Layers {
		for ri, row := range layer.Weights {
			for wi, w := range row {
				if w == in.Layers[li].Weights[ri][wi] {
					t.Fatalf("weight [%d][%d][%d] unchanged at rate 1", li, ri, wi)
				}
			}
		}
		for bi, b := range layer.Biases {
			if b == in.Layers[li].Biases[bi] {
				t.Fatalf("bias [%d][%d] unchanged at rate 1", li, bi)
			}
		}
	}
}

func TestMutateDoesNotAliasInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := testState(0.5)
	Mutate(rng, in, 1)

	if in.Layers[1].Weights[0][0] != 0.5 {
		t.Fatalf("mutate modified its input")
	}
}

func TestCrossoverIdenticalParents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := testState(0.25)
	child := Crossover(rng, p, p)

	for li, layer := range child.Layers {
		for ri, row := range layer.Weights {
			for wi, w := range row {
				if w != 0.25 {
					t.Fatalf("weight [%d][%d][%d] = %v, want 0.25", li, ri, wi, w)
				}
			}
		}
		for bi, b := range layer.Biases {
			if b != 0.25 {
				t.Fatalf("bias [%d][%d] = %v, want 0.25", li, bi, b)
			}
		}
	}
}

func TestCrossoverBlendsWithinParentRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p1 := testState(0)
	p2 := testState(1)
	child := Crossover(rng, p1, p2)

	for li, layer := range child.Layers {
		for ri, row := range layer.Weights {
			for wi, w := range row {
				if w < 0 || w > 1 {
					t.Fatalf("weight [%d][%d][%d] = %v outside parent range", li, ri, wi, w)
				}
			}
		}
	}
}

func TestCrossoverAlignsAcrossLayerConventions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	withPlaceholder := testState(0.25)
	bare := model.NetworkState{Layers: []model.NetworkLayer{
		{
			Weights: [][]float64{{0.25, 0.25}, {0.25, 0.25}},
			Biases:  []float64{0.25, 0.25},
		},
		{
			Weights: [][]float64{{0.25, 0.25}},
			Biases:  []float64{0.25},
		},
	}}

	for _, pair := range [][2]model.NetworkState{
		{withPlaceholder, bare},
		{bare, withPlaceholder},
	} {
		child := Crossover(rng, pair[0], pair[1])
		if d := ParameterDistance(child, pair[0]); d != 0 {
			t.Fatalf("child distance from identical parents = %v, want 0", d)
		}
	}
}

func TestFlattenSkipsWeightlessLayers(t *testing.T) {
	flat := Flatten(testState(0.5))
	// 2x2 + 2 biases, then 1x2 + 1 bias.
	if len(flat) != 9 {
		t.Fatalf("flatten length = %d, want 9", len(flat))
	}
}

func TestParameterDistance(t *testing.T) {
	a := testState(0)
	b := testState(0)
	if d := ParameterDistance(a, b); d != 0 {
		t.Fatalf("distance between identical states = %v, want 0", d)
	}

	b = testState(1)
	got := ParameterDistance(a, b)
	want := math.Sqrt(9)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("distance = %v, want %v", got, want)
	}
}
