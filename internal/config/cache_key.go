package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a candidate's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// InterviewDraftsKey returns the cache key for an interview's auto-saved
// draft answers (hash of question index -> text).
func (r *CacheKeyStruct) InterviewDraftsKey(interviewID uuid.UUID) string {
	return fmt.Sprintf("interview:%s:drafts", interviewID)
}

// InterviewStartKey returns the cache key for an interview's start time.
func (r *CacheKeyStruct) InterviewStartKey(interviewID uuid.UUID) string {
	return fmt.Sprintf("interview:%s:started_at", interviewID)
}

// InterviewReportKey returns the cache key for a finished interview's report.
func (r *CacheKeyStruct) InterviewReportKey(interviewID uuid.UUID) string {
	return fmt.Sprintf("interview:%s:report", interviewID)
}

var CacheKey = NewCacheKeyStruct()
