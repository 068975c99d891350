package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gradesheet/domain/roster"
	"gradesheet/internal/errors"
	"gradesheet/internal/report"
	"gradesheet/internal/scratch"
	"gradesheet/models"

	"github.com/gin-gonic/gin"
)

const (
	uploadField        = "csvfiles"
	defaultListLimit   = 50
	conversionLogLimit = 500
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleConvert builds the reports and streams back one xlsx or a zip
func (s *Server) handleConvert(c *gin.Context) {
	id := requestIDFrom(c)
	start := time.Now()
	scope := s.storage.NewScope()
	defer func() {
		if err := scope.Release(); err != nil {
			log.Printf("[handleConvert] %s: failed to release scratch files: %v", id, err)
		}
	}()

	req, err := s.readRequest(c, scope)
	if err != nil {
		s.fail(c, "handleConvert", err)
		s.record(c, conversionRecord(id.String(), req, nil, start, err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()
	if err := s.acquireSlot(ctx); err != nil {
		s.fail(c, "handleConvert", err)
		s.record(c, conversionRecord(id.String(), req, nil, start, err))
		return
	}
	bundle, err := s.orchestrator.Convert(ctx, scope, req)
	s.slots.Release(1)
	s.record(c, conversionRecord(id.String(), req, bundle, start, err))
	if err != nil {
		s.fail(c, "handleConvert", err)
		return
	}

	log.Printf("[handleConvert] %s: sending %s (%d report(s))", id, bundle.DownloadName, len(bundle.Reports))
	c.Header("Content-Type", bundle.ContentType)
	c.FileAttachment(bundle.Path, bundle.DownloadName)
}

// handlePreview populates the reports without returning files
func (s *Server) handlePreview(c *gin.Context) {
	id := requestIDFrom(c)
	scope := s.storage.NewScope()
	defer scope.Release()

	req, err := s.readRequest(c, scope)
	if err != nil {
		s.fail(c, "handlePreview", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()
	if err := s.acquireSlot(ctx); err != nil {
		s.fail(c, "handlePreview", err)
		return
	}
	reports, err := s.orchestrator.Preview(ctx, req)
	s.slots.Release(1)
	if err != nil {
		s.fail(c, "handlePreview", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": id.String(),
		"mode":      req.Mode,
		"reports":   reports,
	})
}

// acquireSlot waits for one of the concurrent conversion slots until ctx ends
func (s *Server) acquireSlot(ctx context.Context) error {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return errors.ServerBusy(err)
	}
	return nil
}

func (s *Server) handleListConversions(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > conversionLogLimit {
			s.fail(c, "handleListConversions",
				errors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", conversionLogLimit)))
			return
		}
		limit = n
	}

	if s.conversions == nil {
		c.JSON(http.StatusOK, gin.H{"conversions": []*models.ConversionRecord{}})
		return
	}
	records, err := s.conversions.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, "handleListConversions", errors.WithCode(errors.CodeDatabaseError, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversions": records})
}

// readRequest validates the form and stores every upload in scope
func (s *Server) readRequest(c *gin.Context, scope *scratch.Scope) (report.Request, error) {
	var req report.Request
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return req, errors.PayloadTooLarge(fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxBytes))
		}
		return req, errors.ValidationError("expected a multipart form")
	}

	req.Spec = roster.ScoreSpec{
		ComponentScoreLabel: strings.TrimSpace(c.PostForm("componentScore")),
		FinalScoreLabel:     strings.TrimSpace(c.PostForm("finalScore")),
	}
	req.ScoreType = strings.TrimSpace(c.PostForm("scoreType"))
	if req.Mode, err = report.ParseMode(c.PostForm("mode"), s.opts.DefaultMode); err != nil {
		return req, err
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		return req, errors.ValidationError("at least one CSV file is required in field " + uploadField)
	}
	if len(files) > s.opts.MaxFiles {
		return req, errors.ValidationError(fmt.Sprintf("at most %d files are accepted, got %d", s.opts.MaxFiles, len(files)))
	}
	if missing := req.Spec.Validate(); len(missing) > 0 {
		return req, errors.ValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	for _, fh := range files {
		path, err := storeUpload(scope, fh)
		if err != nil {
			return req, errors.StorageError("failed to store upload "+fh.Filename, err)
		}
		req.Inputs = append(req.Inputs, report.Input{Name: fh.Filename, Path: path})
	}
	return req, nil
}

func storeUpload(scope *scratch.Scope, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return scope.Store(src, fh.Filename)
}

// fail writes the error response for err
func (s *Server) fail(c *gin.Context, handler string, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	message := err.Error()
	var appErr *errors.AppError
	if status >= http.StatusInternalServerError {
		if stderrors.As(err, &appErr) {
			message = appErr.Message
		} else {
			message = "internal error"
		}
		code = codeOrInternal(code)
	}

	log.Printf("[%s] FAILED - %s: %v", handler, code, err)
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func codeOrInternal(code string) string {
	if code == "UNKNOWN" {
		return errors.CodeInternalError
	}
	return code
}

// record logs the conversion; failures never affect the response
func (s *Server) record(c *gin.Context, rec *models.ConversionRecord) {
	if s.conversions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	if err := s.conversions.Record(ctx, rec); err != nil {
		log.Printf("[record] WARNING - failed to log conversion %s: %v", rec.RequestID, err)
	}
}

func conversionRecord(requestID string, req report.Request, bundle *report.Bundle, start time.Time, err error) *models.ConversionRecord {
	rec := &models.ConversionRecord{
		RequestID:      requestID,
		Mode:           string(req.Mode),
		FileCount:      len(req.Inputs),
		ComponentLabel: req.Spec.ComponentScoreLabel,
		FinalLabel:     req.Spec.FinalScoreLabel,
		ScoreType:      req.ScoreType,
		Status:         models.ConversionSucceeded,
		DurationMs:     time.Since(start).Milliseconds(),
	}
	if err != nil {
		msg := err.Error()
		rec.Status = models.ConversionFailed
		rec.ErrorMessage = &msg
		return rec
	}

	rec.OutputName = bundle.DownloadName
	rec.ReportCount = len(bundle.Reports)
	var scores []float64
	for _, r := range bundle.Reports {
		rec.StudentCount += r.Result.StudentCount
		scores = append(scores, r.Result.ComputedScores()...)
	}
	if summary := report.Summarize(scores); summary.Count > 0 {
		rec.MeanScore = &summary.Mean
	}
	return rec
}
