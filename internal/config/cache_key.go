package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a quiz's student-safe payload.
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// QuizDurationKey returns the cache key for a quiz's duration in minutes.
func (r *CacheKeyStruct) QuizDurationKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:duration", quizID)
}

// AttemptAutosaveKey returns the cache key for an attempt's draft answer hash.
func (r *CacheKeyStruct) AttemptAutosaveKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:autosave", attemptID)
}

// QuizStatsKey returns the cache key for a quiz's aggregated statistics.
func (r *CacheKeyStruct) QuizStatsKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:stats", quizID)
}

// StudentStatsKey returns the cache key for a student's per-quiz statistics.
func (r *CacheKeyStruct) StudentStatsKey(studentID string) string {
	return fmt.Sprintf("student:%s:stats", studentID)
}

var CacheKey = NewCacheKeyStruct()
