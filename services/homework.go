package services

import (
	"context"
	"mime/multipart"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
	"tutoring_backend/store"
	"tutoring_backend/upload"
)

const resourceHomework = "homework"

type HomeworkService struct {
	store store.Store
	sink  upload.Sink
}

func NewHomeworkService(st store.Store, sink upload.Sink) *HomeworkService {
	return &HomeworkService{store: st, sink: sink}
}

func (svc *HomeworkService) ListByStudent(ctx context.Context, studentID string) ([]models.Homework, error) {
	return svc.store.Homework().FindHomework(ctx, models.Individual(studentID))
}

func (svc *HomeworkService) ListByGroup(ctx context.Context, groupID string) ([]models.Homework, error) {
	return svc.store.Homework().FindHomework(ctx, models.Group(groupID))
}

// Create stores the assignment files and the homework record. Input is
// validated before anything is written to disk.
func (svc *HomeworkService) Create(ctx context.Context, req models.CreateHomeworkRequest, files []*multipart.FileHeader) (models.Homework, error) {
	if _, ok := models.ResolveTarget(req.StudentID, req.GroupID); !ok {
		return models.Homework{}, errNoTarget
	}
	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return models.Homework{}, err
	}

	names, err := svc.sink.Save(files)
	if err != nil {
		return models.Homework{}, apperr.Store("save homework files", err)
	}

	rec := models.Homework{
		StudentID:  req.StudentID,
		GroupID:    req.GroupID,
		Day:        req.Day,
		DueDate:    dueDate,
		Files:      names,
		Answer:     []models.HomeworkAnswer{},
		UploadedAt: nowFunc(),
	}
	if rec.Day == "" {
		rec.Day = models.ShortWeekday(dueDate)
	}
	return svc.store.Homework().CreateHomework(ctx, rec)
}

// UploadAnswer appends one answer entry per file and stamps sentAt.
func (svc *HomeworkService) UploadAnswer(ctx context.Context, req models.UploadAnswerRequest, files []*multipart.FileHeader) (models.Homework, error) {
	if len(files) == 0 {
		return models.Homework{}, apperr.NewValidationError("no files uploaded",
			apperr.FieldError{Field: "files", Error: "at least one file is required"})
	}
	if _, err := svc.store.Homework().GetHomework(ctx, req.HomeworkID); err != nil {
		return models.Homework{}, err
	}

	names, err := svc.sink.Save(files)
	if err != nil {
		return models.Homework{}, apperr.Store("save answer files", err)
	}
	answers := make([]interface{}, 0, len(names))
	for _, name := range names {
		answers = append(answers, models.HomeworkAnswer{StudentID: req.StudentID, File: name})
	}
	u := models.NewUpdate().
		Push(models.FieldAnswer, answers...).
		Set(models.FieldSentAt, nowFunc())
	return svc.store.Homework().UpdateHomework(ctx, req.HomeworkID, u)
}

// UpdateGrade sets or clears the record-level grade whatever the target kind.
func (svc *HomeworkService) UpdateGrade(ctx context.Context, id string, grade interface{}) (models.Homework, error) {
	u, err := gradeUpdate(grade)
	if err != nil {
		return models.Homework{}, err
	}
	return svc.store.Homework().UpdateHomework(ctx, id, u)
}

// UpdateStudentGrade sets or clears one student's grade on group homework.
func (svc *HomeworkService) UpdateStudentGrade(ctx context.Context, id, studentID string, grade interface{}) (models.Homework, error) {
	rec, err := svc.store.Homework().GetHomework(ctx, id)
	if err != nil {
		return models.Homework{}, err
	}
	target, err := recordTarget(rec.StudentID, rec.GroupID, resourceHomework)
	if err != nil {
		return models.Homework{}, err
	}
	u, err := studentGradeUpdate(target, studentID, grade)
	if err != nil {
		return models.Homework{}, err
	}
	return svc.store.Homework().UpdateHomework(ctx, id, u)
}

func (svc *HomeworkService) Delete(ctx context.Context, id string) (models.Homework, error) {
	return svc.store.Homework().DeleteHomework(ctx, id)
}

func (svc *HomeworkService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return deleteMany(ctx, ids, resourceHomework, svc.store.Homework().DeleteHomeworks)
}
