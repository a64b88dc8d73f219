// Package store holds the record store contract and its backends.
package store

import (
	"context"

	"tutoring_backend/models"
)

type ScheduleStore interface {
	// FindSchedules returns every lesson of the target ordered by date, then time.
	FindSchedules(ctx context.Context, target models.Target) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, id string) (models.Schedule, error)
	CreateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
	// UpdateSchedule applies u atomically and returns the updated record.
	UpdateSchedule(ctx context.Context, id string, u *models.Update) (models.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) (models.Schedule, error)
	DeleteSchedules(ctx context.Context, ids []string) (int64, error)
}

type HomeworkStore interface {
	// FindHomework returns every assignment of the target ordered by due date.
	FindHomework(ctx context.Context, target models.Target) ([]models.Homework, error)
	GetHomework(ctx context.Context, id string) (models.Homework, error)
	CreateHomework(ctx context.Context, h models.Homework) (models.Homework, error)
	UpdateHomework(ctx context.Context, id string, u *models.Update) (models.Homework, error)
	DeleteHomework(ctx context.Context, id string) (models.Homework, error)
	DeleteHomeworks(ctx context.Context, ids []string) (int64, error)
}

type GroupStore interface {
	GetGroup(ctx context.Context, id string) (models.StudentGroup, error)
	CreateGroup(ctx context.Context, g models.StudentGroup) (models.StudentGroup, error)
}

// Store bundles the collections of one backend.
type Store interface {
	Schedules() ScheduleStore
	Homework() HomeworkStore
	Groups() GroupStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const (
	resourceSchedule = "schedule item"
	resourceHomework = "homework"
	resourceGroup    = "group"
)
