package domain

import (
	"context"
	"fmt"
	"math"
)

// populationGrowthRate is the linear yearly growth applied from a city's census year.
const populationGrowthRate = 0.01

// PredictionFeatures is the feature vector of the crime-rate model.
type PredictionFeatures struct {
	Year          int     `json:"year"`
	CityCode      int     `json:"city_code"`
	Population    float64 `json:"population"` // lakhs
	CrimeTypeCode int     `json:"crime_type_code"`
}

// Predictor returns the expected crime rate per lakh of population.
type Predictor interface {
	Predict(ctx context.Context, features PredictionFeatures) (float64, error)
}

// RateBand classifies a predicted crime rate.
type RateBand string

const (
	RateVeryLow  RateBand = "very_low"
	RateLow      RateBand = "low"
	RateHigh     RateBand = "high"
	RateVeryHigh RateBand = "very_high"
)

// ClassifyRate buckets a rate: ≤1 very low, ≤5 low, ≤15 high, else very high.
func ClassifyRate(rate float64) RateBand {
	switch {
	case rate <= 1:
		return RateVeryLow
	case rate <= 5:
		return RateLow
	case rate <= 15:
		return RateHigh
	default:
		return RateVeryHigh
	}
}

// ProjectPopulation grows a base population linearly by 1% per year since
// baseYear. Years before baseYear shrink it by the same rule.
func ProjectPopulation(base float64, baseYear, year int) float64 {
	return base + populationGrowthRate*float64(year-baseYear)*base
}

// CityPrediction is the outcome of one city prediction request.
type CityPrediction struct {
	City           string   `json:"city"`
	CityCode       int      `json:"city_code"`
	CrimeType      string   `json:"crime_type"`
	CrimeTypeCode  int      `json:"crime_type_code"`
	Year           int      `json:"year"`
	Population     float64  `json:"population_lakhs"`
	RatePerCapita  float64  `json:"rate_per_lakh"`
	EstimatedCases int      `json:"estimated_cases"`
	Band           RateBand `json:"band"`
}

// PredictCityCrime projects the city's population to year, asks the model
// for a rate, and derives the expected case count and band. Model failures
// and negative rates are returned as *PredictionError.
func PredictCityCrime(ctx context.Context, p Predictor, city City, category CrimeCategory, year int) (CityPrediction, error) {
	if p == nil {
		return CityPrediction{}, ErrPredictionDisabled
	}
	if year <= 0 {
		return CityPrediction{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	population := math.Round(ProjectPopulation(city.Population, city.BaseYear, year)*100) / 100
	if population <= 0 {
		return CityPrediction{}, fmt.Errorf("%w: %d projects a non-positive population for %s", ErrInvalidYear, year, city.Name)
	}
	features := PredictionFeatures{
		Year:          year,
		CityCode:      city.Code,
		Population:    population,
		CrimeTypeCode: category.Code,
	}

	rate, err := p.Predict(ctx, features)
	if err != nil {
		return CityPrediction{}, &PredictionError{Features: features, Cause: err}
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return CityPrediction{}, &PredictionError{Features: features, Cause: ErrNegativeRate}
	}

	return CityPrediction{
		City:           city.Name,
		CityCode:       city.Code,
		CrimeType:      category.Name,
		CrimeTypeCode:  category.Code,
		Year:           year,
		Population:     population,
		RatePerCapita:  math.Round(rate*100) / 100,
		EstimatedCases: int(math.Ceil(rate * population)),
		Band:           ClassifyRate(rate),
	}, nil
}
