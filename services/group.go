package services

import (
	"context"
	"strings"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
	"tutoring_backend/store"
)

type GroupService struct {
	store store.Store
}

func NewGroupService(st store.Store) *GroupService {
	return &GroupService{store: st}
}

// Create stores a roster. Blank and repeated student ids are dropped.
func (svc *GroupService) Create(ctx context.Context, req models.CreateGroupRequest) (models.StudentGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.StudentGroup{}, apperr.NewValidationError("name is required",
			apperr.FieldError{Field: "name", Error: "required"})
	}
	seen := make(map[string]bool, len(req.Students))
	students := make([]string, 0, len(req.Students))
	for _, id := range req.Students {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		students = append(students, id)
	}
	return svc.store.Groups().CreateGroup(ctx, models.StudentGroup{Name: name, Students: students})
}

func (svc *GroupService) Get(ctx context.Context, id string) (models.StudentGroup, error) {
	return svc.store.Groups().GetGroup(ctx, id)
}
