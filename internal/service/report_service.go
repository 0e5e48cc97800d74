package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
	"github.com/escolar-dev/escolar-api/pkg/export"
)

// Report formats supported by the export endpoint.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type reportResultRepository interface {
	ListDetailsByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error)
}

type reportStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ReportService builds report-card exports from recorded results.
type ReportService struct {
	results    reportResultRepository
	students   reportStudentRepository
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	schoolName string
	logger     *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(results reportResultRepository, students reportStudentRepository, schoolName string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schoolName == "" {
		schoolName = "Escolar"
	}
	return &ReportService{
		results:    results,
		students:   students,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		schoolName: schoolName,
		logger:     logger,
	}
}

// ReportCard renders the student's scores in the requested format and
// returns the bytes plus the response content type.
func (s *ReportService) ReportCard(ctx context.Context, studentID, format string) ([]byte, string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if isNoRows(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	details, err := s.results.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	data := export.Dataset{
		Headers: []string{"Assessment", "Type", "Score"},
		Rows:    make([]map[string]string, 0, len(details)),
	}
	for _, d := range details {
		kind := "Exam"
		if d.AssignmentID != nil {
			kind = "Assignment"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Assessment": d.Title,
			"Type":       kind,
			"Score":      strconv.Itoa(d.Score),
		})
	}

	switch strings.ToLower(format) {
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		subtitle := fmt.Sprintf("Report card for %s %s", student.Name, student.Surname)
		payload, err := s.pdf.Render(data, s.schoolName, subtitle)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Validation("unsupported report format", map[string]string{
			"format": "must be one of csv, pdf",
		})
	}
}
