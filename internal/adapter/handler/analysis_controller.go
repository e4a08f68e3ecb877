package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	dto "github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	httpmw "github.com/johnquangdev/meeting-analyzer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/analysis"
)

// AnalysisService is the pipeline as seen by the HTTP layer
type AnalysisService interface {
	Analyze(ctx context.Context, in analysis.Input) (*analysis.Outcome, error)
	UploadTranscript(ctx context.Context, in analysis.TranscriptInput) (*entities.Transcript, error)
	GetAnalysis(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, error)
}

// AnalysisController handles the meeting analysis endpoints
type AnalysisController struct {
	svc    AnalysisService
	logger *zap.Logger
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(svc AnalysisService, logger *zap.Logger) *AnalysisController {
	return &AnalysisController{svc: svc, logger: logger}
}

// Analyze runs the analysis pipeline on an uploaded transcript
// @Summary      Analyze meeting transcript
// @Description  Extracts the transcript (text or PDF), asks the language model for a productivity analysis and stores it on the meeting
// @Tags         Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file          formData  file    false  "Transcript file (.txt or .pdf)"
// @Param        scopeText     formData  string  false  "Transcript text, used when no file is given or the file cannot be read"
// @Param        meetingId     formData  string  false  "Meeting ID (UUID)"
// @Param        meetingTitle  formData  string  false  "Meeting title for meetings that are not stored"
// @Success      200  {object}  dto.AnalyzeResponse
// @Failure      400  {object}  common.AnalyzeErrorResponse  "No input or unsupported file type"
// @Failure      401  {object}  common.AnalyzeErrorResponse  "User not authenticated"
// @Failure      402  {object}  common.AnalyzeErrorResponse  "Model credits exhausted"
// @Failure      409  {object}  common.AnalyzeErrorResponse  "Analysis already running or meeting cancelled"
// @Failure      429  {object}  common.AnalyzeErrorResponse  "Model rate limited"
// @Failure      500  {object}  common.AnalyzeErrorResponse  "Extraction, model or storage failure"
// @Router       /analyze [post]
func (ac *AnalysisController) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return HandleAnalyzeError(ac.logger, c, appErrors.ErrInvalidArgument("Invalid form payload"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleAnalyzeError(ac.logger, c, appErrors.ErrInvalidArgument(err.Error()))
	}

	artifact, closeFile, err := readArtifact(c)
	if err != nil {
		return HandleAnalyzeError(ac.logger, c, err)
	}
	defer closeFile()

	outcome, err := ac.svc.Analyze(c.Request().Context(), analysis.Input{
		MeetingID:    req.MeetingID,
		MeetingTitle: req.MeetingTitle,
		UploadedBy:   httpmw.UserID(c),
		File:         artifact,
		Text:         req.ScopeText,
	})
	if err != nil {
		return HandleAnalyzeError(ac.logger, c, err)
	}

	if ac.logger != nil {
		ac.logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Bool("persisted", outcome.Persisted),
		)
	}
	return c.JSON(http.StatusOK, presenter.ToAnalyzeResponse(outcome.Result, outcome.Persisted))
}

// GetAnalysis returns the stored analysis of a meeting
// @Summary      Get meeting analysis
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=dto.AnalysisResponse}
// @Failure      400  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /v1/meetings/{id}/analysis [get]
func (ac *AnalysisController) GetAnalysis(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(ac.logger, c, appErrors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	result, err := ac.svc.GetAnalysis(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(ac.logger, c, err)
	}
	return HandleSuccess(ac.logger, c, presenter.ToAnalysisResponse(result))
}

// UploadTranscript stores the transcript of a meeting without analyzing it
// @Summary      Upload meeting transcript
// @Description  Replacing a transcript that was already analyzed requires force=true
// @Tags         Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Meeting ID (UUID)"
// @Param        file   formData  file    false  "Transcript file (.txt or .pdf)"
// @Param        text   formData  string  false  "Transcript text"
// @Param        force  query     bool    false  "Replace an analyzed transcript"
// @Success      200  {object}  common.SuccessResponse{data=dto.TranscriptResponse}
// @Failure      400  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Failure      409  {object}  common.ErrorResponse  "Transcript already analyzed"
// @Router       /v1/meetings/{id}/transcript [put]
func (ac *AnalysisController) UploadTranscript(c echo.Context) error {
	var req dto.UploadTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(ac.logger, c, appErrors.ErrInvalidArgument("Invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(ac.logger, c, appErrors.ErrInvalidArgument(err.Error()))
	}
	if raw := c.QueryParam("force"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			return HandleError(ac.logger, c, appErrors.ErrInvalidArgument("force must be a boolean"))
		}
		req.Force = force
	}

	artifact, closeFile, err := readArtifact(c)
	if err != nil {
		return HandleError(ac.logger, c, err)
	}
	defer closeFile()

	transcript, err := ac.svc.UploadTranscript(c.Request().Context(), analysis.TranscriptInput{
		MeetingID:  uuid.MustParse(req.MeetingID),
		UploadedBy: httpmw.UserID(c),
		File:       artifact,
		Text:       req.Text,
		Force:      req.Force,
	})
	if err != nil {
		return HandleError(ac.logger, c, err)
	}
	return HandleSuccess(ac.logger, c, presenter.ToTranscriptResponse(transcript))
}

// readArtifact opens the optional "file" part of a multipart request
func readArtifact(c echo.Context) (*analysis.Artifact, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, nil, appErrors.ErrInvalidArgument("Invalid file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, appErrors.ErrInvalidArgument("Invalid file upload")
	}
	return artifactFrom(fh, f), func() { _ = f.Close() }, nil
}

func artifactFrom(fh *multipart.FileHeader, f multipart.File) *analysis.Artifact {
	return &analysis.Artifact{
		FileName: fh.Filename,
		MIMEType: analysis.ResolveMIMEType(fh.Header.Get(echo.HeaderContentType), fh.Filename),
		Content:  f,
	}
}
