package neural

import (
	"fmt"
	"math"
	"math/rand"

	"boidrace/internal/model"
)

// Network is the trainable capability the simulation consumes. The genetic
// operators never touch a Network directly; they work on the serialized
// model.NetworkState obtained from Snapshot and fed back through Restore.
type Network interface {
	Run(inputs []float64) ([]float64, error)
	Snapshot() model.NetworkState
	Restore(state model.NetworkState) error
}

// Feedforward is a fixed-shape fully connected network with sigmoid
// activations on every non-input layer.
type Feedforward struct {
	sizes   []int
	weights [][][]float64 // per non-input layer: outputs x inputs
	biases  [][]float64   // per non-input layer: outputs
}

// NewFeedforward builds a network with the given layer sizes (inputs first)
// and weights drawn uniformly from [-1, 1).
func NewFeedforward(rng *rand.Rand, sizes ...int) (*Feedforward, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("network requires at least input and output layers, got %d", len(sizes))
	}
	for i, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("layer %d size must be > 0, got %d", i, size)
		}
	}

	net := &Feedforward{sizes: append([]int(nil), sizes...)}
	for l := 1; l < len(sizes); l++ {
		outputs, inputs := sizes[l], sizes[l-1]
		weights := make([][]float64, outputs)
		biases := make([]float64, outputs)
		for o := 0; o < outputs; o++ {
			row := make([]float64, inputs)
			for i := range row {
				row[i] = rng.Float64()*2 - 1
			}
			weights[o] = row
			biases[o] = rng.Float64()*2 - 1
		}
		net.weights = append(net.weights, weights)
		net.biases = append(net.biases, biases)
	}
	return net, nil
}

// Run evaluates the forward pass. Outputs are sigmoid-squashed into (0, 1).
func (n *Feedforward) Run(inputs []float64) ([]float64, error) {
	if len(inputs) != n.sizes[0] {
		return nil, fmt.Errorf("input size mismatch: got=%d want=%d", len(inputs), n.sizes[0])
	}

	values := append([]float64(nil), inputs...)
	for l := range n.weights {
		next := make([]float64, len(n.weights[l]))
		for o, row := range n.weights[l] {
			total := n.biases[l][o]
			for i, w := range row {
				total += values[i] * w
			}
			next[o] = sigmoid(total)
		}
		values = next
	}
	return values, nil
}

// Snapshot serializes the network. The leading layer is a weightless input
// placeholder so restored states line up with layer counts from other
// producers of the same contract; consumers skip layers without weights.
func (n *Feedforward) Snapshot() model.NetworkState {
	state := model.NetworkState{Layers: []model.NetworkLayer{{}}}
	for l := range n.weights {
		layer := model.NetworkLayer{
			Weights: make([][]float64, len(n.weights[l])),
			Biases:  append([]float64(nil), n.biases[l]...),
		}
		for o, row := range n.weights[l] {
			layer.Weights[o] = append([]float64(nil), row...)
		}
		state.Layers = append(state.Layers, layer)
	}
	return state
}

// Restore loads a serialized state. Placeholder layers are tolerated in any
// position; the weighted layers must match the network shape in order.
func (n *Feedforward) Restore(state model.NetworkState) error {
	weighted := make([]model.NetworkLayer, 0, len(state.Layers))
	for _, layer := range state.Layers {
		if len(layer.Weights) == 0 {
			continue
		}
		weighted = append(weighted, layer)
	}
	if len(weighted) != len(n.weights) {
		return fmt.Errorf("layer count mismatch: got=%d want=%d", len(weighted), len(n.weights))
	}

	for l, layer := range weighted {
		outputs, inputs := n.sizes[l+1], n.sizes[l]
		if len(layer.Weights) != outputs {
			return fmt.Errorf("layer %d output mismatch: got=%d want=%d", l, len(layer.Weights), outputs)
		}
		if len(layer.Biases) != outputs {
			return fmt.Errorf("layer %d bias mismatch: got=%d want=%d", l, len(layer.Biases), outputs)
		}
		for o, row := range layer.Weights {
			if len(row) != inputs {
				return fmt.Errorf("layer %d row %d input mismatch: got=%d want=%d", l, o, len(row), inputs)
			}
		}
	}

	for l, layer := range weighted {
		for o, row := range layer.Weights {
			copy(n.weights[l][o], row)
		}
		copy(n.biases[l], layer.Biases)
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
