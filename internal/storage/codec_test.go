package storage

import (
	"errors"
	"testing"

	"boidrace/internal/model"
)

func TestChampionCodecRoundTrip(t *testing.T) {
	input := model.Champion{
		VersionedRecord: versioned(),
		Generation:      7,
		Fitness:         42000,
		Network: model.NetworkState{Layers: []model.NetworkLayer{
			{},
			{Weights: [][]float64{{1, 2}, {3, 4}}, Biases: []float64{0.5, -0.5}},
		}},
	}

	payload, err := EncodeChampion(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeChampion(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.Generation != 7 || output.Network.Layers[1].Weights[1][0] != 3 {
		t.Fatalf("unexpected decode result: %+v", output)
	}
}

func TestDecodeChampionVersionMismatch(t *testing.T) {
	input := model.Champion{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 99, CodecVersion: CurrentCodecVersion},
	}
	payload, err := EncodeChampion(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeChampion(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeChampionMalformed(t *testing.T) {
	if _, err := DecodeChampion([]byte("{not json")); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
}

func TestSessionCodecRoundTrip(t *testing.T) {
	input := model.Session{
		VersionedRecord: versioned(),
		Generation:      2,
		TrackSeed:       1234,
		BestBrainJSON:   `{"layers":[{}]}`,
	}
	payload, err := EncodeSession(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeSession(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.TrackSeed != 1234 || output.BestBrainJSON != input.BestBrainJSON {
		t.Fatalf("unexpected decode result: %+v", output)
	}
}

func TestPlaceholderLayerSurvivesCodec(t *testing.T) {
	input := model.Champion{
		VersionedRecord: versioned(),
		Network: model.NetworkState{Layers: []model.NetworkLayer{
			{},
			{Weights: [][]float64{{1}}, Biases: []float64{0}},
		}},
	}
	payload, err := EncodeChampion(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeChampion(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(output.Network.Layers) != 2 {
		t.Fatalf("placeholder layer dropped: %+v", output.Network)
	}
	if len(output.Network.Layers[0].Weights) != 0 {
		t.Fatal("placeholder layer gained weights")
	}
}
