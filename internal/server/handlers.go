package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resume-tailor/resume-tailor-go/internal/apperr"
	"github.com/resume-tailor/resume-tailor-go/internal/prompt"
	"github.com/resume-tailor/resume-tailor-go/internal/resumefile"
)

type coverLetterRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	Model          string `json:"model"`
}

type resizeRequest struct {
	ResumeText       string           `json:"resume_text"`
	TargetPageLength prompt.PageCount `json:"target_page_length"`
	Model            string           `json:"model"`
}

func (s *Server) generateCoverLetter(c *gin.Context) {
	var req coverLetterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := s.guards.CheckInput(map[string]string{
		"resume_text":     req.ResumeText,
		"job_description": req.JobDescription,
	}); err != nil {
		fail(c, apperr.ErrPayloadTooLarge.WithDetail(err.Error()).WithError(err))
		return
	}

	letter, err := s.gen.CoverLetter(c.Request.Context(), req.ResumeText, req.JobDescription, req.Model)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cover_letter": letter})
}

func (s *Server) resizeResume(c *gin.Context) {
	req := resizeRequest{TargetPageLength: prompt.DefaultPages}
	if err := bindOptionalJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := s.guards.CheckInput(map[string]string{"resume_text": req.ResumeText}); err != nil {
		fail(c, apperr.ErrPayloadTooLarge.WithDetail(err.Error()).WithError(err))
		return
	}

	guidance, err := s.gen.ResizeGuidance(c.Request.Context(), req.ResumeText, req.TargetPageLength, req.Model)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume_resizing_guidance": guidance})
}

func (s *Server) extractResumeText(c *gin.Context) {
	if limit := s.cfg.Limits.MaxUploadBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, apperr.ErrPayloadTooLarge.WithError(err))
			return
		}
		fail(c, apperr.ErrInvalidParam.WithDetail("multipart field \"file\" is required").WithError(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, err)
		return
	}

	mime := resumefile.DetectType(fh.Filename, fh.Header.Get("Content-Type"))
	text, err := resumefile.Extract(mime, data)
	if err != nil {
		if errors.Is(err, resumefile.ErrUnsupportedType) {
			fail(c, apperr.ErrUnsupportedMedia.WithDetail(mime).WithError(err))
			return
		}
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()).WithError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume_text": text})
}

// bindOptionalJSON decodes the body into obj. An empty body leaves obj at
// its defaults.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ErrInvalidParam.WithDetail(err.Error()).WithError(err)
	}
	return nil
}

func fail(c *gin.Context, err error) {
	e := apperr.As(err)
	_ = c.Error(err)
	body := gin.H{"code": e.Code, "message": e.Message}
	if e.Detail != "" {
		body["detail"] = e.Detail
	}
	c.AbortWithStatusJSON(e.HTTPStatus, body)
}
