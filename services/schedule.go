package services

import (
	"context"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
	"tutoring_backend/store"
)

const resourceSchedule = "schedule item"

type ScheduleService struct {
	store store.Store
}

func NewScheduleService(st store.Store) *ScheduleService {
	return &ScheduleService{store: st}
}

func (svc *ScheduleService) ListByStudent(ctx context.Context, studentID string) ([]models.Schedule, error) {
	return svc.store.Schedules().FindSchedules(ctx, models.Individual(studentID))
}

func (svc *ScheduleService) ListByGroup(ctx context.Context, groupID string) ([]models.Schedule, error) {
	return svc.store.Schedules().FindSchedules(ctx, models.Group(groupID))
}

// GroupWithStudents returns the lessons of a group together with its roster.
func (svc *ScheduleService) GroupWithStudents(ctx context.Context, groupID string) (models.GroupSchedule, error) {
	group, err := svc.store.Groups().GetGroup(ctx, groupID)
	if err != nil {
		return models.GroupSchedule{}, err
	}
	schedules, err := svc.ListByGroup(ctx, groupID)
	if err != nil {
		return models.GroupSchedule{}, err
	}
	return models.GroupSchedule{Schedules: schedules, Students: group.Students}, nil
}

func (svc *ScheduleService) Create(ctx context.Context, req models.CreateScheduleRequest) (models.Schedule, error) {
	if int(req.Duration) < models.MinLessonMinutes {
		return models.Schedule{}, apperr.NewValidationError("lesson duration must be at least 30 minutes",
			apperr.FieldError{Field: "duration", Error: "must be at least 30"})
	}
	target, ok := models.ResolveTarget(req.StudentID, req.GroupID)
	if !ok {
		return models.Schedule{}, errNoTarget
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return models.Schedule{}, err
	}

	now := nowFunc()
	rec := models.Schedule{
		StudentID:   req.StudentID,
		GroupID:     req.GroupID,
		Day:         req.Day,
		Date:        date,
		Time:        req.Time,
		Duration:    int(req.Duration),
		Subject:     req.Subject,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.Day == "" {
		rec.Day = models.ShortWeekday(date)
	}
	switch target.Kind {
	case models.TargetIndividual:
		rec.Attendance = models.IndividualAttendance(false)
	case models.TargetGroup:
		rec.Attendance = models.Attendance{}
	default:
		return models.Schedule{}, unknownKind(target)
	}
	return svc.store.Schedules().CreateSchedule(ctx, rec)
}

// UpdateAttendance records attendance for an individual lesson, or for one
// student of a group lesson.
func (svc *ScheduleService) UpdateAttendance(ctx context.Context, id string, req models.UpdateAttendanceRequest) (models.Schedule, error) {
	rec, err := svc.store.Schedules().GetSchedule(ctx, id)
	if err != nil {
		return models.Schedule{}, err
	}
	target, err := recordTarget(rec.StudentID, rec.GroupID, resourceSchedule)
	if err != nil {
		return models.Schedule{}, err
	}
	u, err := attendanceUpdate(target, rec.Attendance, req.Attendance, req.StudentID)
	if err != nil {
		return models.Schedule{}, err
	}
	return svc.store.Schedules().UpdateSchedule(ctx, id, u.Set(models.FieldUpdatedAt, nowFunc()))
}

// UpdateGroupAttendance overwrites the attendance mapping of a group lesson.
func (svc *ScheduleService) UpdateGroupAttendance(ctx context.Context, id string, students map[string]bool) (models.Schedule, error) {
	rec, err := svc.store.Schedules().GetSchedule(ctx, id)
	if err != nil {
		return models.Schedule{}, err
	}
	target, err := recordTarget(rec.StudentID, rec.GroupID, resourceSchedule)
	if err != nil {
		return models.Schedule{}, err
	}
	u, err := groupAttendanceUpdate(target, students)
	if err != nil {
		return models.Schedule{}, err
	}
	return svc.store.Schedules().UpdateSchedule(ctx, id, u.Set(models.FieldUpdatedAt, nowFunc()))
}

// Update reschedules a lesson. The weekday label follows the new date.
func (svc *ScheduleService) Update(ctx context.Context, id string, req models.UpdateScheduleRequest) (models.Schedule, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return models.Schedule{}, err
	}
	u := models.NewUpdate().
		Set(models.FieldDate, date).
		Set(models.FieldDay, models.ShortWeekday(date))
	if req.Time != nil {
		u.Set(models.FieldTime, *req.Time)
	}
	if req.Duration != nil {
		if int(*req.Duration) < models.MinLessonMinutes {
			return models.Schedule{}, apperr.NewValidationError("lesson duration must be at least 30 minutes",
				apperr.FieldError{Field: "duration", Error: "must be at least 30"})
		}
		u.Set(models.FieldDuration, int(*req.Duration))
	}
	if req.Subject != nil {
		u.Set(models.FieldSubject, *req.Subject)
	}
	if req.Description != nil {
		u.Set(models.FieldDescription, *req.Description)
	}
	return svc.store.Schedules().UpdateSchedule(ctx, id, u.Set(models.FieldUpdatedAt, nowFunc()))
}

func (svc *ScheduleService) Delete(ctx context.Context, id string) (models.Schedule, error) {
	return svc.store.Schedules().DeleteSchedule(ctx, id)
}

func (svc *ScheduleService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return deleteMany(ctx, ids, resourceSchedule, svc.store.Schedules().DeleteSchedules)
}
