// Package services holds the schedule, homework and group use cases on top of
// a store.Store.
package services

import (
	"context"
	"fmt"
	"time"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

// nowFunc is replaced in tests.
var nowFunc = func() time.Time {
	return time.Now().UTC()
}

var errNoIDs = apperr.NewValidationError("expected a non-empty array of ids",
	apperr.FieldError{Field: "ids", Error: "must be a non-empty array"})

type deleter func(ctx context.Context, ids []string) (int64, error)

// deleteMany removes every listed record in one store call. It is NotFound
// only when nothing matched.
func deleteMany(ctx context.Context, ids []string, resource string, del deleter) (int64, error) {
	if len(ids) == 0 {
		return 0, errNoIDs
	}
	n, err := del(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperr.NewNotFoundError(resource)
	}
	return n, nil
}

func recordTarget(studentID, groupID, resource string) (models.Target, error) {
	t, ok := models.ResolveTarget(studentID, groupID)
	if !ok {
		return models.Target{}, apperr.Store("resolve target", fmt.Errorf("%s has neither student_id nor group_id", resource))
	}
	return t, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperr.NewValidationError(field+" is required", apperr.FieldError{Field: field, Error: "required"})
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, apperr.NewValidationError("invalid "+field, apperr.FieldError{Field: field, Error: err.Error()})
	}
	return t, nil
}
