package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is returned for latitudes outside [-90, 90],
	// longitudes outside [-180, 180], and non-finite values.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidRadius is returned for negative or non-finite search radii.
	ErrInvalidRadius = errors.New("invalid radius")

	// ErrInvalidClusterParams is returned when epsilon is not positive or
	// minPoints is below 1.
	ErrInvalidClusterParams = errors.New("invalid cluster parameters")

	// ErrInvalidWeights is returned by SeverityWeights.Validate.
	ErrInvalidWeights = errors.New("invalid severity weights")

	// ErrLocationNotFound means no coordinates exist for a (state, district) pair.
	ErrLocationNotFound = errors.New("location not found")

	// ErrInvalidYear is returned for prediction years that are not positive.
	ErrInvalidYear = errors.New("invalid year")

	ErrUnknownCity          = errors.New("unknown city")
	ErrUnknownCrimeCategory = errors.New("unknown crime category")

	// ErrPredictionDisabled is returned when no Predictor is configured.
	ErrPredictionDisabled = errors.New("prediction disabled")

	// ErrNegativeRate marks a predictor response outside the model's contract.
	ErrNegativeRate = errors.New("predicted rate is negative or not finite")
)

// PredictionError wraps a failure of the crime-rate model for one request.
type PredictionError struct {
	Features PredictionFeatures
	Cause    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("predict crime rate (city %d, crime type %d, year %d): %v",
		e.Features.CityCode, e.Features.CrimeTypeCode, e.Features.Year, e.Cause)
}

func (e *PredictionError) Unwrap() error {
	return e.Cause
}
