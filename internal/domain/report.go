package domain

import "time"

// AnalysisType names the analysis that produced a report.
type AnalysisType string

const (
	AnalysisHotspots   AnalysisType = "hotspots"
	AnalysisClusters   AnalysisType = "clusters"
	AnalysisTrend      AnalysisType = "trend"
	AnalysisSeverity   AnalysisType = "severity"
	AnalysisPrediction AnalysisType = "prediction"
)

// AnalysisReport is the envelope published for every completed analysis.
type AnalysisReport struct {
	ID          string       `json:"id"`
	Type        AnalysisType `json:"type"`
	GeneratedAt time.Time    `json:"generated_at"`
	Body        any          `json:"body"`
}
