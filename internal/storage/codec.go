package storage

import (
	"encoding/json"
	"errors"

	"boidrace/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeChampion(c model.Champion) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeChampion(data []byte) (model.Champion, error) {
	var champion model.Champion
	if err := json.Unmarshal(data, &champion); err != nil {
		return model.Champion{}, err
	}
	if err := checkVersion(champion.VersionedRecord); err != nil {
		return model.Champion{}, err
	}
	return champion, nil
}

func EncodeSession(s model.Session) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSession(data []byte) (model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return model.Session{}, err
	}
	if err := checkVersion(session.VersionedRecord); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationStats(stats []model.GenerationStats) ([]byte, error) {
	return json.Marshal(stats)
}

func DecodeGenerationStats(data []byte) ([]model.GenerationStats, error) {
	var stats []model.GenerationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
