package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSubjectCache invalidates all subject-related caches
func InvalidateSubjectCache(ctx context.Context, cm *CacheManager, subjectID, teacherID string) {
	SafeDelete(ctx, cm.Subject, fmt.Sprintf("id:%s", subjectID))
	SafeInvalidatePattern(ctx, cm.Subject, fmt.Sprintf("teacher:%s:*", teacherID))
	SafeInvalidatePattern(ctx, cm.Subject, "list:*")
}

// InvalidateTaskCache invalidates all task-related caches
func InvalidateTaskCache(ctx context.Context, cm *CacheManager, taskID, subjectID string) {
	SafeDelete(ctx, cm.Task, fmt.Sprintf("id:%s", taskID))
	SafeInvalidatePattern(ctx, cm.Task, fmt.Sprintf("subject:%s:*", subjectID))
	SafeInvalidatePattern(ctx, cm.Task, "list:*")
}

// InvalidateGradeCache invalidates grade caches for a student/subject pair
func InvalidateGradeCache(ctx context.Context, cm *CacheManager, studentID, subjectID string) {
	SafeInvalidatePattern(ctx, cm.Grade, fmt.Sprintf("student:%s:*", studentID))
	SafeInvalidatePattern(ctx, cm.Grade, fmt.Sprintf("subject:%s:*", subjectID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("student:%s:*", studentID))
}
