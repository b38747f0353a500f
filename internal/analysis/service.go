package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

// Publisher delivers completed analysis reports downstream.
type Publisher interface {
	Publish(ctx context.Context, report domain.AnalysisReport) error
}

// Options holds the analysis parameters. Zero values fall back to the
// dataset weights and the domain defaults.
type Options struct {
	Weights         domain.SeverityWeights
	HotspotRadiusKm float64
	Cluster         domain.ClusterParams
}

// Collaborators are the optional outbound dependencies. A nil field
// disables the feature it backs.
type Collaborators struct {
	Predictor domain.Predictor
	Geocoder  domain.Geocoder
	Publisher Publisher
}

// Service runs analyses over an immutable dataset. It is safe for
// concurrent use.
type Service struct {
	data      *dataset.Dataset
	geo       []domain.CrimeRecord
	opts      Options
	predictor domain.Predictor
	geocoder  domain.Geocoder
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service over data.
func New(data *dataset.Dataset, opts Options, c Collaborators, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if opts.Weights.Weights == nil {
		opts.Weights = data.Weights
	}
	if opts.HotspotRadiusKm <= 0 {
		opts.HotspotRadiusKm = domain.DefaultHotspotRadiusKm
	}
	if opts.Cluster == (domain.ClusterParams{}) {
		opts.Cluster = domain.DefaultClusterParams()
	}

	s := &Service{
		data:      data,
		geo:       data.Geolocated(),
		opts:      opts,
		predictor: c.Predictor,
		geocoder:  c.Geocoder,
		publisher: c.Publisher,
		logger:    logger,
		metrics:   metrics,
	}

	metrics.DatasetRecords.WithLabelValues("loaded").Set(float64(len(data.Records)))
	metrics.DatasetRecords.WithLabelValues("missing_geo").Set(float64(len(data.Records) - len(s.geo)))
	metrics.DatasetRecords.WithLabelValues("dropped").Set(float64(data.Stats.Dropped()))
	if c.Geocoder != nil {
		metrics.GeocodeEnabled.Set(1)
	} else {
		metrics.GeocodeEnabled.Set(0)
	}

	return s
}

// CheckReadiness returns nil once the dataset holds at least one record.
func (s *Service) CheckReadiness(_ context.Context) error {
	if len(s.data.Records) == 0 {
		return errors.New("dataset has no crime records")
	}
	return nil
}

// Hotspots finds records near a point, grouped by severity tier.
func (s *Service) Hotspots(ctx context.Context, req HotspotRequest) (report HotspotReport, err error) {
	defer s.observe(domain.AnalysisHotspots, time.Now(), &err)

	q := domain.HotspotQuery{Point: req.Point, RadiusKm: s.opts.HotspotRadiusKm}
	if req.RadiusKm != nil {
		q.RadiusKm = *req.RadiusKm
	}
	result, err := domain.FindHotspots(q, s.geo, req.Tiers...)
	if err != nil {
		return HotspotReport{}, err
	}
	for tier, hs := range result {
		s.metrics.HotspotHits.WithLabelValues(string(tier)).Add(float64(len(hs)))
	}

	report = HotspotReport{
		ReportMeta: newMeta(),
		Query:      q,
		Place:      domain.DescribePoint(ctx, s.geocoder, q.Point, s.logger),
		Tiers:      result,
		Total:      result.Total(),
	}
	s.publish(ctx, domain.AnalysisHotspots, report.ReportMeta, report)
	return report, nil
}

// Clusters groups every geolocated record by density. Zero fields of params
// use the configured defaults.
func (s *Service) Clusters(ctx context.Context, params domain.ClusterParams) (report ClusterReport, err error) {
	defer s.observe(domain.AnalysisClusters, time.Now(), &err)

	if params.EpsilonKm == 0 {
		params.EpsilonKm = s.opts.Cluster.EpsilonKm
	}
	if params.MinPoints == 0 {
		params.MinPoints = s.opts.Cluster.MinPoints
	}
	points := make([]domain.Geo, len(s.geo))
	for i, rec := range s.geo {
		points[i] = *rec.Geo
	}

	labels, err := domain.Cluster(points, params.EpsilonKm, params.MinPoints)
	if err != nil {
		return ClusterReport{}, err
	}

	report = ClusterReport{
		ReportMeta: newMeta(),
		Params:     params,
		Points:     make([]ClusterPoint, len(s.geo)),
		Clusters:   domain.SummarizeClusters(s.geo, labels),
	}
	for i, rec := range s.geo {
		report.Points[i] = ClusterPoint{
			RecordID: rec.ID,
			Area:     rec.Area,
			Geo:      points[i],
			Severity: rec.Severity,
			Label:    labels[i],
		}
		if labels[i] == domain.Noise {
			report.Noise++
		}
	}
	s.publish(ctx, domain.AnalysisClusters, report.ReportMeta, report)
	return report, nil
}

// DistrictTrend computes the yearly severity index of one district.
// A district without records yields an empty series.
func (s *Service) DistrictTrend(ctx context.Context, state, district string) (report TrendReport, err error) {
	defer s.observe(domain.AnalysisTrend, time.Now(), &err)

	records := domain.FilterDistrict(s.data.Records, state, district)
	trend := domain.Trend(domain.GroupByYear(records), s.opts.Weights)

	report = TrendReport{
		ReportMeta: newMeta(),
		State:      state,
		District:   district,
		Center:     s.center(ctx, state, district),
		Series:     domain.SortedTrend(trend),
	}
	s.publish(ctx, domain.AnalysisTrend, report.ReportMeta, report)
	return report, nil
}

// Severity computes the severity index of one district, restricted to year
// when it is not 0.
func (s *Service) Severity(ctx context.Context, state, district string, year int) (report SeverityReport, err error) {
	defer s.observe(domain.AnalysisSeverity, time.Now(), &err)

	if year < 0 {
		return SeverityReport{}, domain.ErrInvalidYear
	}
	records := domain.FilterDistrict(s.data.Records, state, district)
	if year != 0 {
		records = domain.FilterYear(records, year)
	}

	report = SeverityReport{
		ReportMeta: newMeta(),
		State:      state,
		District:   district,
		Year:       year,
		Records:    len(records),
		Index:      domain.SeverityIndex(records, s.opts.Weights),
		Center:     s.center(ctx, state, district),
	}
	s.publish(ctx, domain.AnalysisSeverity, report.ReportMeta, report)
	return report, nil
}

// PredictCity asks the crime-rate model about a catalog city and category.
func (s *Service) PredictCity(ctx context.Context, req PredictionRequest) (report PredictionReport, err error) {
	defer s.observe(domain.AnalysisPrediction, time.Now(), &err)

	if s.predictor == nil {
		return PredictionReport{}, domain.ErrPredictionDisabled
	}
	city, err := s.data.City(req.City)
	if err != nil {
		return PredictionReport{}, err
	}
	category, err := s.data.Category(req.CrimeType)
	if err != nil {
		return PredictionReport{}, err
	}

	prediction, err := domain.PredictCityCrime(ctx, s.predictor, city, category, req.Year)
	if err != nil {
		return PredictionReport{}, err
	}

	report = PredictionReport{ReportMeta: newMeta(), CityPrediction: prediction}
	s.publish(ctx, domain.AnalysisPrediction, report.ReportMeta, report)
	return report, nil
}

// Locate resolves a district's map-centering coordinates.
func (s *Service) Locate(ctx context.Context, state, district string) (domain.ResolvedLocation, error) {
	return domain.ResolveLocation(ctx, s.data.Locations, s.geocoder, state, district, s.logger)
}

// Cities returns the prediction city catalog.
func (s *Service) Cities() []domain.City {
	return s.data.Cities
}

// Categories returns the prediction crime-category catalog.
func (s *Service) Categories() []domain.CrimeCategory {
	return s.data.Categories
}

// Districts returns the districts present in the dataset.
func (s *Service) Districts() []dataset.District {
	return s.data.Districts()
}

// center resolves a map center, or nil when the district cannot be located.
func (s *Service) center(ctx context.Context, state, district string) *domain.Geo {
	loc, err := s.Locate(ctx, state, district)
	if err != nil {
		s.logger.Warn("district has no map center", "state", state, "district", district, "error", err)
		return nil
	}
	return &loc.Geo
}

func (s *Service) publish(ctx context.Context, typ domain.AnalysisType, meta ReportMeta, body any) {
	if s.publisher == nil {
		return
	}
	report := domain.AnalysisReport{ID: meta.ID, Type: typ, GeneratedAt: meta.GeneratedAt, Body: body}
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.ReportsPublished.WithLabelValues(string(typ), "error").Inc()
		s.logger.Error("publish report failed", "id", meta.ID, "type", typ, "error", err)
		return
	}
	s.metrics.ReportsPublished.WithLabelValues(string(typ), "success").Inc()
}

func (s *Service) observe(typ domain.AnalysisType, start time.Time, errp *error) {
	s.metrics.AnalysisDuration.WithLabelValues(string(typ)).Observe(time.Since(start).Seconds())
	s.metrics.AnalysisRequests.WithLabelValues(string(typ), Outcome(*errp)).Inc()
}

// Outcome classifies an analysis error for metrics and transports.
func Outcome(err error) string {
	var perr *domain.PredictionError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrInvalidRadius),
		errors.Is(err, domain.ErrInvalidClusterParams),
		errors.Is(err, domain.ErrInvalidYear):
		return "invalid"
	case errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrUnknownCity),
		errors.Is(err, domain.ErrUnknownCrimeCategory):
		return "not_found"
	case errors.Is(err, domain.ErrPredictionDisabled):
		return "disabled"
	case errors.As(err, &perr):
		return "model_error"
	default:
		return "error"
	}
}

func newMeta() ReportMeta {
	return ReportMeta{ID: uuid.NewString(), GeneratedAt: domain.Now()}
}
