package service

import (
	"fmt"
	"math/rand"

	"github.com/healthsurge/backend/internal/config"
	"github.com/healthsurge/backend/internal/domain"
	"github.com/healthsurge/backend/internal/observability"
	"github.com/healthsurge/backend/pkg/utils"
)

const basePatients = 850

const nominalReason = "Normal environmental conditions. Standard patient load expected."

// Noise supplies the random term added to every prediction.
type Noise interface {
	Sample() float64
}

// NoiseFunc adapts a function to Noise.
type NoiseFunc func() float64

// Sample calls f.
func (f NoiseFunc) Sample() float64 { return f() }

// UniformNoise returns integers drawn uniformly from [-bound, bound].
func UniformNoise(bound int) Noise {
	return NoiseFunc(func() float64 {
		return float64(rand.Intn(2*bound+1) - bound)
	})
}

// GaussianNoise returns samples from N(0, stdDev²).
func GaussianNoise(stdDev float64) Noise {
	return NoiseFunc(func() float64 {
		return rand.NormFloat64() * stdDev
	})
}

// Strategy turns conditions plus a noise sample into a patient count and its
// explanation.
type Strategy interface {
	Name() string
	Score(c domain.Conditions, noise float64) (patients int, reasoning, actions []string)
}

// Scorer computes surge predictions with a fixed strategy and noise source.
type Scorer struct {
	strategy Strategy
	noise    Noise
	metrics  *observability.Metrics
}

// NewScorer creates a scorer. metrics may be nil.
func NewScorer(strategy Strategy, noise Noise, metrics *observability.Metrics) *Scorer {
	return &Scorer{strategy: strategy, noise: noise, metrics: metrics}
}

// NewScorerFromConfig picks the strategy named by SCORER_VARIANT together with
// its matching noise distribution.
func NewScorerFromConfig(cfg *config.Config, metrics *observability.Metrics) *Scorer {
	if cfg.ScorerVariant == config.ScorerWeighted {
		return NewScorer(WeightedStrategy{}, GaussianNoise(15), metrics)
	}
	return NewScorer(LinearStrategy{}, UniformNoise(20), metrics)
}

// Model names the active strategy
func (s *Scorer) Model() string {
	return s.strategy.Name()
}

// Predict scores the conditions
func (s *Scorer) Predict(c domain.Conditions) domain.PredictionResult {
	patients, reasoning, actions := s.strategy.Score(c, s.noise.Sample())
	if reasoning == nil {
		reasoning = []string{}
	}
	if actions == nil {
		actions = []string{}
	}

	result := domain.PredictionResult{
		PredictedPatients:     patients,
		PredictedBedOccupancy: BedOccupancy(patients),
		Reasoning:             reasoning,
		Actions:               actions,
		Model:                 s.strategy.Name(),
	}

	if s.metrics != nil {
		s.metrics.Predictions.WithLabelValues(result.Model).Inc()
		s.metrics.PredictedPatients.Observe(float64(patients))
	}
	return result
}

// Bounds applied before converting float scores to patient counts.
const (
	maxImpact   = 100_000
	maxPatients = 1_000_000
)

func capImpact(v float64) float64 {
	return utils.Clamp(v, 0, maxImpact)
}

// toPatients truncates toward zero after clamping into [0, maxPatients].
func toPatients(v float64) int {
	return int(utils.Clamp(v, 0, maxPatients))
}

// BedOccupancy converts a patient count into a percentage of BedCapacity,
// clamped to [0, 100] and rounded to one decimal.
func BedOccupancy(patients int) float64 {
	pct := float64(patients) / domain.BedCapacity * 100
	return utils.RoundTo(utils.Clamp(pct, 0, 100), 1)
}

// LinearStrategy adds fixed per-unit contributions and flags anything above
// 880 patients as critical.
type LinearStrategy struct{}

const linearCritical = 880

var linearCriticalActions = []string{
	"Trigger emergency staff reallocation from nearby departments.",
	"Open overflow beds and notify charge nurse by SMS/alert.",
	"Delay non-urgent admissions and reroute ambulances if needed.",
}

func (LinearStrategy) Name() string { return config.ScorerLinear }

func (LinearStrategy) Score(c domain.Conditions, noise float64) (int, []string, []string) {
	aqiImpact := max(0, (c.AQI-100)*0.5)

	var tempImpact float64
	switch {
	case c.Temp > 35:
		tempImpact = (c.Temp - 35) * 10
	case c.Temp < 15:
		tempImpact = (15 - c.Temp) * 10
	}

	var festivalImpact float64
	if c.Festival {
		festivalImpact = 150
	}

	aqiImpact, tempImpact = capImpact(aqiImpact), capImpact(tempImpact)
	patients := toPatients(basePatients + aqiImpact + tempImpact + festivalImpact + noise)

	if patients > linearCritical {
		actions := make([]string, len(linearCriticalActions))
		copy(actions, linearCriticalActions)
		return patients, []string{"Automated analysis indicates staffing is CRITICAL."}, actions
	}

	var reasons []string
	if aqiImpact > 0 {
		reasons = append(reasons, fmt.Sprintf("High AQI (%s) contributing to respiratory strain (+%d patients).",
			utils.FormatNumber(c.AQI), int(aqiImpact)))
	}
	if tempImpact > 0 {
		if c.Temp > 35 {
			reasons = append(reasons, fmt.Sprintf("Heatwave conditions (%s°C) increasing heatstroke risk (+%d patients).",
				utils.FormatNumber(c.Temp), int(tempImpact)))
		} else {
			reasons = append(reasons, fmt.Sprintf("Cold wave (%s°C) increasing viral susceptibility (+%d patients).",
				utils.FormatNumber(c.Temp), int(tempImpact)))
		}
	}
	if festivalImpact > 0 {
		reasons = append(reasons, "Festival season typically sees 20% increase in trauma/burn cases.")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, nominalReason)
	}
	return patients, reasons, []string{}
}

// WeightedStrategy uses steeper weights, explains every contributing factor and
// appends a capacity assessment above 900 and 1000 patients.
type WeightedStrategy struct{}

// Weighted strategy thresholds.
const (
	weightedElevated = 900
	weightedCritical = 1000
	severeAQI        = 200
)

func (WeightedStrategy) Name() string { return config.ScorerWeighted }

func (WeightedStrategy) Score(c domain.Conditions, noise float64) (int, []string, []string) {
	var aqiImpact, tempImpact, festivalImpact float64
	if c.AQI > 100 {
		aqiImpact = (c.AQI - 100) * 0.65
	}
	switch {
	case c.Temp > 35:
		tempImpact = (c.Temp - 35) * 12.5
	case c.Temp < 15:
		tempImpact = (15 - c.Temp) * 12.5
	}
	if c.Festival {
		festivalImpact = 180
	}

	aqiImpact, tempImpact = capImpact(aqiImpact), capImpact(tempImpact)
	patients := toPatients(basePatients + aqiImpact + tempImpact + festivalImpact + noise)

	var reasons, actions []string

	switch {
	case c.AQI > severeAQI:
		reasons = append(reasons, fmt.Sprintf("Severe air pollution (AQI %s) driving a respiratory surge (+%d patients).",
			utils.FormatNumber(c.AQI), int(aqiImpact)))
	case c.AQI > 100:
		reasons = append(reasons, fmt.Sprintf("Elevated AQI (%s) adding respiratory admissions (+%d patients).",
			utils.FormatNumber(c.AQI), int(aqiImpact)))
	}
	if aqiImpact > 0 {
		actions = append(actions, "Alert pulmonology and stock nebulizers and oxygen for respiratory cases.")
	}

	switch {
	case c.Temp > 35:
		reasons = append(reasons, fmt.Sprintf("Heatwave conditions (%s°C) raising heatstroke and dehydration cases (+%d patients).",
			utils.FormatNumber(c.Temp), int(tempImpact)))
		actions = append(actions, "Set up cooling and hydration stations in the emergency department.")
	case c.Temp < 15:
		reasons = append(reasons, fmt.Sprintf("Cold wave (%s°C) increasing viral and cardiac presentations (+%d patients).",
			utils.FormatNumber(c.Temp), int(tempImpact)))
		actions = append(actions, "Prepare viral screening and isolation capacity for cold-related illness.")
	}

	if c.Festival {
		reasons = append(reasons, fmt.Sprintf("Festival period expected to add trauma and burn cases (+%d patients).",
			int(festivalImpact)))
		actions = append(actions, "Put trauma and burn units on standby for festival injuries.")
	}

	switch {
	case patients > weightedCritical:
		reasons = append(reasons, fmt.Sprintf("Projected load of %d patients exceeds safe capacity; staffing is CRITICAL.", patients))
		actions = append(actions,
			"Trigger emergency staffing: recall off-duty staff and reallocate from nearby departments.",
			"Open overflow beds and notify charge nurse by SMS/alert.",
		)
	case patients > weightedElevated:
		reasons = append(reasons, fmt.Sprintf("Projected load of %d patients is above the normal band; capacity is strained.", patients))
		actions = append(actions, "Alert on-call staff to be ready for increased admissions.")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, nominalReason)
	}
	if len(actions) == 0 {
		actions = append(actions, "Maintain standard staffing levels and continue routine monitoring.")
	}
	return patients, reasons, actions
}
