// Package domain models crime records and the spatial analyses run over them.
//
// # Data Source
//
// Records come from two flat tables prepared upstream: the district-wise
// IPC crime table (one row per district per year, with per-crime-type
// counts) and an area table of geocoded incident sites carrying a severity
// label. Both are merged into [CrimeRecord] at ingestion; either half may be
// absent on a given row.
//
// # Conventions
//
// Coordinates:
//
//	Decimal degrees, WGS-84. Latitude in [-90, 90], longitude in
//	[-180, 180]. A record without usable coordinates has a nil Geo and is
//	ignored by every spatial computation.
//
// Severity labels:
//
//	Normalized to lowercase at ingestion: "low", "moderate", "high".
//	Source files mix "High" and "high"; the mixed case is a cleaning
//	defect, not a distinct label. Numeric score: low=1, moderate=2, high=3.
//
// Crime types weighted by the severity index:
//
//	murder, rape, kidnapping_abduction, robbery, burglary, dowry_deaths
//
// # Severity Index
//
// For a group of records:
//
//	weightedSum = Σ_type weight(type) × Σ_records count(type)
//	maxPossible = Σ_type ceiling × weight(type)
//	index       = clamp(100 × weightedSum / maxPossible, 0, 100)
//
// rounded to two decimals. The ceiling (default 500) is a calibration bound
// per crime type, not a hard limit on counts; the clamp absorbs overflow.
//
// # Clustering
//
// [Cluster] runs DBSCAN with great-circle neighbourhoods. Cluster ids are
// assigned in traversal order and are only meaningful within one call;
// compare membership with [MembershipSets], never raw ids.
//
// # City Prediction
//
// The crime-rate model is an opaque [Predictor]. Population is projected
// from a census base year at 1% linear growth per year and expressed in
// lakhs (100,000), matching the unit the model was trained on.
package domain
