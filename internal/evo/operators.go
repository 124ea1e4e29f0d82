package evo

import (
	"math"
	"math/rand"

	"boidrace/internal/model"
)

// The operators work on serialized network states and tolerate either
// layer-list convention: layers without a weight matrix are placeholders and
// are skipped, never treated as errors.

// Crossover blends two parent states elementwise. Every weight and bias
// draws an independent blend factor b in [0,1) and becomes p1*b + p2*(1-b),
// so identical parents produce a numerically identical child.
func Crossover(rng *rand.Rand, p1, p2 model.NetworkState) model.NetworkState {
	child := p1.Clone()
	weighted := weightedLayers(p2)
	next := 0
	for l := range child.Layers {
		if len(child.Layers[l].Weights) == 0 {
			continue
		}
		if next >= len(weighted) {
			break
		}
		other := weighted[next]
		next++
		for r, row := range child.Layers[l].Weights {
			for c := range row {
				if r >= len(other.Weights) || c >= len(other.Weights[r]) {
					continue
				}
				b := rng.Float64()
				row[c] = row[c]*b + other.Weights[r][c]*(1-b)
			}
		}
		for i := range child.Layers[l].Biases {
			if i >= len(other.Biases) {
				continue
			}
			b := rng.Float64()
			child.Layers[l].Biases[i] = child.Layers[l].Biases[i]*b + other.Biases[i]*(1-b)
		}
	}
	return child
}

// weightedLayers filters out placeholder layers so parents written under
// either convention align by weighted position.
func weightedLayers(state model.NetworkState) []model.NetworkLayer {
	var out []model.NetworkLayer
	for _, layer := range state.Layers {
		if len(layer.Weights) == 0 {
			continue
		}
		out = append(out, layer)
	}
	return out
}

// Mutate perturbs each weight and bias with the given per-element
// probability, adding an independent uniform draw from [-1, 1). Rate 0 is an
// identity; rate 1 perturbs every element.
func Mutate(rng *rand.Rand, state model.NetworkState, rate float64) model.NetworkState {
	out := state.Clone()
	for l := range out.Layers {
		if len(out.Layers[l].Weights) == 0 {
			continue
		}
		for _, row := range out.Layers[l].Weights {
			for c := range row {
				if rng.Float64() < rate {
					row[c] += rng.Float64()*2 - 1
				}
			}
		}
		for i := range out.Layers[l].Biases {
			if rng.Float64() < rate {
				out.Layers[l].Biases[i] += rng.Float64()*2 - 1
			}
		}
	}
	return out
}

// Flatten lays out every weight and bias of the weighted layers into one
// parameter vector, in layer order.
func Flatten(state model.NetworkState) []float64 {
	var out []float64
	for _, layer := range state.Layers {
		if len(layer.Weights) == 0 {
			continue
		}
		for _, row := range layer.Weights {
			out = append(out, row...)
		}
		out = append(out, layer.Biases...)
	}
	return out
}

// ParameterDistance is the Euclidean distance between two flattened states.
// Vectors of unequal length treat the missing tail entries as zero.
func ParameterDistance(a, b model.NetworkState) float64 {
	va, vb := Flatten(a), Flatten(b)
	n := len(va)
	if len(vb) > n {
		n = len(vb)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(va) {
			x = va[i]
		}
		if i < len(vb) {
			y = vb[i]
		}
		d := x - y
		total += d * d
	}
	return math.Sqrt(total)
}
