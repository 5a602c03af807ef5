package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// SubjectGradesReport renders one row per recorded grade, grouped by student,
// with a summary sheet of per-student averages.
func (s *reportService) SubjectGradesReport(ctx context.Context, subjectID string, requester *models.User) (*ReportFile, error) {
	if !canManageAcademics(requester.Role) {
		return nil, NewPermissionError(requester.ID, subjectID, "report", "export", "insufficient role permissions")
	}

	subject, err := s.repo.Subject().GetByID(ctx, subjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	if requester.Role == models.RoleTeacher && subject.TeacherID != requester.ID {
		return nil, NewPermissionError(requester.ID, subjectID, "report", "export", "not the subject's teacher")
	}

	grades, _, err := s.repo.Grade().List(ctx, repositories.GradeFilters{SubjectID: &subjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to load grades: %w", err)
	}

	studentIDs := uniqueStudentIDs(grades)
	students, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Warn("Failed to resolve student names for report", "subject_id", subjectID, "error", err)
	}
	names := make(map[string]string, len(students))
	for _, student := range students {
		names[student.ID] = student.FullName()
	}

	file, err := renderGradesWorkbook(subject, grades, names)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Grades report exported", "subject_id", subjectID, "rows", len(grades), "by", requester.ID)
	return &ReportFile{
		Filename:    fmt.Sprintf("notas-%s-%s.xlsx", subject.Name, time.Now().UTC().Format("2006-01-02")),
		ContentType: xlsxContentType,
		Data:        file,
	}, nil
}

func renderGradesWorkbook(subject *models.Subject, grades []*models.Grade, names map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Calificaciones"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Estudiante", "Periodo", "Tipo", "Valor", "Maximo", "Porcentaje", "Fecha"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	type summary struct {
		total float64
		count int
	}
	perStudent := make(map[string]*summary)

	for row, grade := range grades {
		name := names[grade.StudentID]
		if name == "" {
			name = grade.StudentID
		}
		pct := 0.0
		if grade.MaxValue > 0 {
			pct = grade.Value / grade.MaxValue * 100
		}

		values := []any{name, grade.Period, string(grade.Type), grade.Value, grade.MaxValue, pct, grade.Date.Format("2006-01-02")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}

		st := perStudent[name]
		if st == nil {
			st = &summary{}
			perStudent[name] = st
		}
		st.total += pct
		st.count++
	}

	// Summary sheet: one averaged percentage per student.
	const summarySheet = "Resumen"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetCellValue(summarySheet, "A1", "Materia")
	f.SetCellValue(summarySheet, "B1", subject.Name)
	f.SetCellValue(summarySheet, "A2", "Estudiante")
	f.SetCellValue(summarySheet, "B2", "Promedio %")

	studentNames := make([]string, 0, len(perStudent))
	for name := range perStudent {
		studentNames = append(studentNames, name)
	}
	sort.Strings(studentNames)

	for i, name := range studentNames {
		st := perStudent[name]
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+3), name)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+3), st.total/float64(st.count))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueStudentIDs(grades []*models.Grade) []string {
	seen := make(map[string]struct{}, len(grades))
	ids := make([]string, 0, len(grades))
	for _, g := range grades {
		if _, ok := seen[g.StudentID]; ok {
			continue
		}
		seen[g.StudentID] = struct{}{}
		ids = append(ids, g.StudentID)
	}
	return ids
}
