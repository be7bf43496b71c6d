package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/revlens/internal/providers/pdf"
	snapshotdomain "github.com/smallbiznis/revlens/internal/snapshot/domain"
)

func parseSnapshotRequest(c *gin.Context) snapshotdomain.Request {
	return snapshotdomain.Request{
		Period: snapshotdomain.ParsePeriod(c.Query("period")),
	}
}

func (s *Server) GetRevenueMetrics(c *gin.Context) {
	if s.snapshotSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	snap, err := s.snapshotSvc.GetSnapshot(c.Request.Context(), parseSnapshotRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) GetRevenueMetricsReport(c *gin.Context) {
	if s.snapshotSvc == nil || s.pdfProvider == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	snap, err := s.snapshotSvc.GetSnapshot(c.Request.Context(), parseSnapshotRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := s.clock.Now()
	data := pdf.BuildReportData(snap, s.cfg.Currency, now.Format("2006-01-02 15:04 MST"))
	reader, err := s.pdfProvider.GenerateSnapshotReport(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	filename := fmt.Sprintf("revenue-report-%s-%s.pdf", snap.Period, now.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
