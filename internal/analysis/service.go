package analysis

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brightlight720720/ILD/internal/extract"
	"github.com/brightlight720720/ILD/internal/meeting"
)

// ErrMissingPatientID is returned when a case arrives without the stable
// identifier the ingestion pipeline is required to supply.
var ErrMissingPatientID = errors.New("patient case is missing an id")

// MeetingRunner drives one multidisciplinary meeting for a patient case.
// We define it here to decouple the service from the engine implementation.
type MeetingRunner interface {
	Run(ctx context.Context, patient meeting.PatientCase) (*meeting.Transcript, error)
}

// ReportDispatcher delivers a finished analysis to the physician. Optional;
// dispatch failures never fail the analysis.
type ReportDispatcher interface {
	SendPhysicianReport(ctx context.Context, rec Record) error
}

type Repository interface {
	GetByPatientID(ctx context.Context, patientID string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

type Service interface {
	AnalyzePatients(ctx context.Context, patients []meeting.PatientCase) ([]AnalysisResult, error)
	GetAnalysis(ctx context.Context, patientID string) (*Record, error)
}

type service struct {
	runner        MeetingRunner
	repo          Repository
	reporter      ReportDispatcher
	logger        *zap.SugaredLogger
	maxConcurrent int
}

func NewService(runner MeetingRunner, repo Repository, reporter ReportDispatcher, logger *zap.SugaredLogger, maxConcurrent int) Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &service{
		runner:        runner,
		repo:          repo,
		reporter:      reporter,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

func (s *service) GetAnalysis(ctx context.Context, patientID string) (*Record, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

// AnalyzePatients runs one meeting per patient with bounded concurrency.
// Meetings are fully isolated: each owns fresh agents and memory, so a failed
// meeting never disturbs its siblings. A failed patient still yields an
// AnalysisResult-shaped error record; the underlying errors are aggregated
// into the returned error for the caller to log or act on.
func (s *service) AnalyzePatients(ctx context.Context, patients []meeting.PatientCase) ([]AnalysisResult, error) {
	results := make([]AnalysisResult, len(patients))

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, patient := range patients {
		i, patient := i, patient
		g.Go(func() error {
			result, err := s.analyzeOne(ctx, patient)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, errors.Wrapf(err, "patient %q", patientID(patient)))
				mu.Unlock()
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results, errs.ErrorOrNil()
}

func (s *service) analyzeOne(ctx context.Context, patient meeting.PatientCase) (AnalysisResult, error) {
	id := patientID(patient)
	name := patientName(patient)
	if id == "" {
		return errorResult(id, name, ErrMissingPatientID), ErrMissingPatientID
	}

	transcript, err := s.runner.Run(ctx, patient)
	if err != nil {
		s.logger.Errorw("meeting failed", "patient_id", id, "error", err)
		return errorResult(id, name, err), err
	}

	result := buildResult(id, name, transcript)
	rec := &Record{
		ID:         uuid.New(),
		PatientID:  id,
		Result:     result,
		Transcript: transcript,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Errorw("failed to persist analysis", "patient_id", id, "error", err)
		return result, err
	}

	if s.reporter != nil {
		if err := s.reporter.SendPhysicianReport(ctx, *rec); err != nil {
			s.logger.Warnw("report dispatch failed", "patient_id", id, "error", err)
		}
	}

	s.logger.Infow("patient analyzed", "patient_id", id, "risk_level", result.RiskLevel)
	return result, nil
}

func buildResult(id, name string, t *meeting.Transcript) AnalysisResult {
	risk := extract.ParseRisk(t.RiskResponse)
	return AnalysisResult{
		PatientID:          id,
		PatientName:        name,
		MeetingDate:        t.MeetingDate,
		DiagnosisSummary:   t.DiagnosisSummary,
		TreatmentSummary:   t.TreatmentSummary,
		ProgressionSummary: t.ProgressionSummary,
		RiskLevel:          risk.Level,
		RiskFactors:        risk.Factors,
		Checklist:          extract.ParseChecklist(t.ChecklistResponse, meeting.Questions()),
	}
}

// errorResult preserves the result schema on total failure: descriptive
// placeholders in the summaries, Unknown risk, all-No checklist.
func errorResult(id, name string, err error) AnalysisResult {
	return AnalysisResult{
		PatientID:          id,
		PatientName:        name,
		DiagnosisSummary:   "Analysis could not be completed: " + err.Error(),
		TreatmentSummary:   "No recommendations available due to analysis error",
		ProgressionSummary: "No assessment available due to analysis error",
		RiskLevel:          extract.RiskUnknown,
		RiskFactors:        []string{"Analysis error"},
		Checklist:          extract.DefaultChecklist(meeting.Questions()),
	}
}
