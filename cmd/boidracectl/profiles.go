package main

import (
	"fmt"

	"gopkg.in/ini.v1"

	"boidrace/pkg/boidrace"
)

type simulationProfile struct {
	RunID       string  `ini:"run_id"`
	Generations int     `ini:"generations"`
	Seed        int64   `ini:"seed"`
	Width       float64 `ini:"width"`
	Height      float64 `ini:"height"`
}

type evolutionProfile struct {
	Population int `ini:"population"`
	// Pointers distinguish an absent key from an explicit zero, which
	// disables mutation or elitism.
	MutationRate   *float64 `ini:"mutation_rate"`
	EliteCount     *int     `ini:"elite_count"`
	TournamentSize int      `ini:"tournament_size"`
	MaxLifespan    int      `ini:"max_lifespan"`
}

type trackProfile struct {
	Seed             int64   `ini:"seed"`
	TrackWidth       float64 `ini:"track_width"`
	ControlPoints    int     `ini:"control_points"`
	SegmentsPerCurve int     `ini:"segments_per_curve"`
	RadiusVariance   float64 `ini:"radius_variance"`
	CornerTightness  float64 `ini:"corner_tightness"`
}

// runProfile is an INI-backed parameter set. Only keys present in the file
// override the request; everything else keeps its flag or default value.
type runProfile struct {
	Simulation simulationProfile
	Evolution  evolutionProfile
	Track      trackProfile
}

func loadRunProfile(path string) (runProfile, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return runProfile{}, fmt.Errorf("load run profile %s: %w", path, err)
	}

	var profile runProfile
	if err := cfg.Section("simulation").MapTo(&profile.Simulation); err != nil {
		return runProfile{}, fmt.Errorf("map [simulation] section: %w", err)
	}
	if err := cfg.Section("evolution").MapTo(&profile.Evolution); err != nil {
		return runProfile{}, fmt.Errorf("map [evolution] section: %w", err)
	}
	if err := cfg.Section("track").MapTo(&profile.Track); err != nil {
		return runProfile{}, fmt.Errorf("map [track] section: %w", err)
	}
	return profile, nil
}

func (p runProfile) apply(req boidrace.RunRequest) boidrace.RunRequest {
	if p.Simulation.RunID != "" {
		req.RunID = p.Simulation.RunID
	}
	if p.Simulation.Generations > 0 {
		req.Generations = p.Simulation.Generations
	}
	if p.Simulation.Seed != 0 {
		req.Seed = p.Simulation.Seed
	}
	if p.Simulation.Width > 0 {
		req.Width = p.Simulation.Width
	}
	if p.Simulation.Height > 0 {
		req.Height = p.Simulation.Height
	}

	if p.Evolution.Population > 0 {
		req.Population = p.Evolution.Population
	}
	if p.Evolution.MutationRate != nil {
		req.MutationRate = p.Evolution.MutationRate
	}
	if p.Evolution.EliteCount != nil {
		req.EliteCount = p.Evolution.EliteCount
	}
	if p.Evolution.TournamentSize > 0 {
		req.TournamentSize = p.Evolution.TournamentSize
	}
	if p.Evolution.MaxLifespan > 0 {
		req.MaxLifespan = p.Evolution.MaxLifespan
	}

	if p.Track.Seed != 0 {
		req.TrackSeed = p.Track.Seed
	}
	if p.Track.TrackWidth > 0 {
		req.TrackParams.TrackWidth = p.Track.TrackWidth
	}
	if p.Track.ControlPoints > 0 {
		req.TrackParams.NumControlPoints = p.Track.ControlPoints
	}
	if p.Track.SegmentsPerCurve > 0 {
		req.TrackParams.SegmentsPerCurve = p.Track.SegmentsPerCurve
	}
	if p.Track.RadiusVariance > 0 {
		req.TrackParams.RadiusVariance = p.Track.RadiusVariance
	}
	if p.Track.CornerTightness > 0 {
		req.TrackParams.CornerTightness = p.Track.CornerTightness
	}
	return req
}
