package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// ExportSubjectGrades streams the subject's grade book as an .xlsx download.
func (h *ReportHandler) ExportSubjectGrades(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	subjectID := c.Param("subject_id")
	h.LogRequest(c, "Exporting grades report", "subject_id", subjectID, "user_id", user.ID)

	report, err := h.reportService.SubjectGradesReport(c.Request.Context(), subjectID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
