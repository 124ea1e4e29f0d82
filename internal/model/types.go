package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NetworkLayer is one layer of a serialized network. A layer without a weight
// matrix is an input placeholder and is skipped by the genetic operators.
type NetworkLayer struct {
	Weights [][]float64 `json:"weights,omitempty"`
	Biases  []float64   `json:"biases,omitempty"`
}

// NetworkState is the serialized form of a feed-forward network: an ordered
// list of layers, each optionally carrying an outputs-by-inputs weight matrix
// and an outputs-length bias vector.
type NetworkState struct {
	Layers []NetworkLayer `json:"layers"`
}

// Clone returns a deep copy of the state.
func (s NetworkState) Clone() NetworkState {
	out := NetworkState{Layers: make([]NetworkLayer, len(s.Layers))}
	for i, layer := range s.Layers {
		copied := NetworkLayer{}
		if layer.Weights != nil {
			copied.Weights = make([][]float64, len(layer.Weights))
			for r, row := range layer.Weights {
				copied.Weights[r] = append([]float64(nil), row...)
			}
		}
		if layer.Biases != nil {
			copied.Biases = append([]float64(nil), layer.Biases...)
		}
		out.Layers[i] = copied
	}
	return out
}

// Champion is the durable best-performer snapshot written after each
// generation transition.
type Champion struct {
	VersionedRecord
	Generation int          `json:"generation"`
	Fitness    float64      `json:"fitness"`
	Network    NetworkState `json:"network"`
}

// GenerationStats is the end-of-generation snapshot taken just before the
// population is replaced.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	Survivors   int     `json:"survivors"`
	BestFitness float64 `json:"best_fitness"`
	Diversity   float64 `json:"diversity"`
	Ticks       int     `json:"ticks"`
}

// Session is a reconstructible export of a run: re-seeding the track
// generator and restoring the champion network reproduces the setup. Field
// names are the established export contract.
type Session struct {
	VersionedRecord
	Generation    int    `json:"generation"`
	TrackSeed     int64  `json:"trackSeed"`
	BestBrainJSON string `json:"bestBrainJSON"`
}
