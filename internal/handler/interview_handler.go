package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepdeck/intervue-backend/internal/middleware"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/response"
	"github.com/prepdeck/intervue-backend/internal/service"
	"github.com/prepdeck/intervue-backend/internal/validator"
)

// InterviewHandler handles interview REST endpoints.
type InterviewHandler struct {
	interviews *service.InterviewService
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// ListDomains godoc
// GET /api/v1/domains
// Returns all interview domains with their curating admin.
func (h *InterviewHandler) ListDomains(c *gin.Context) {
	domains, err := h.interviews.ListDomains(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"domains": domains})
}

// StartInterview godoc
// POST /api/v1/interviews
// Creates a new interview run for the authenticated candidate.
func (h *InterviewHandler) StartInterview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartInterviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	iv, err := h.interviews.Start(c.Request.Context(), claims.UserID, domainID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDomainNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrEmptyQuestionSet):
			response.Fail(c, http.StatusConflict, response.ErrEmptyQuestionSet)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"interview": iv})
}

// GetState godoc
// GET /api/v1/interviews/:interview_id/state
// Returns the live session snapshot for recovery after a reload.
func (h *InterviewHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ls, err := h.interviews.Attach(c.Request.Context(), claims.UserID, interviewID)
	if err != nil {
		failInterviewErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": ls.Controller.State()})
}

// History godoc
// GET /api/v1/interviews
// Returns the candidate's interviews, most recent first.
func (h *InterviewHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviews, err := h.interviews.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"interviews": interviews})
}

// ListResponses godoc
// GET /api/v1/interviews/:interview_id/responses
// Returns the candidate's persisted answers for an interview, in
// question order.
func (h *InterviewHandler) ListResponses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	responses, err := h.interviews.ListResponses(c.Request.Context(), claims.UserID, interviewID)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"responses": responses})
}

// ListActivity godoc
// GET /api/v1/interviews/:interview_id/activity
// Returns the proctoring trail recorded during an interview.
func (h *InterviewHandler) ListActivity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entries, err := h.interviews.ListActivity(c.Request.Context(), claims.UserID, interviewID)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": entries})
}

// GetReport godoc
// GET /api/v1/interviews/:interview_id/report
// Returns the analysis report for a completed interview.
func (h *InterviewHandler) GetReport(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.interviews.GetReport(c.Request.Context(), claims.UserID, interviewID)
	if err != nil {
		if errors.Is(err, service.ErrReportNotReady) {
			response.Fail(c, http.StatusNotFound, response.ErrReportNotReady)
			return
		}
		failInterviewErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

func failInterviewErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrInterviewNotActive):
		response.Fail(c, http.StatusConflict, response.ErrInterviewNotActive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
