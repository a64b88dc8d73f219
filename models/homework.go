package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HomeworkAnswer is one submitted file. Group homework answers are told apart by StudentID.
type HomeworkAnswer struct {
	StudentID string `json:"student_id" bson:"student_id"`
	File      string `json:"file" bson:"file"`
}

// Homework carries a scalar Grade for individual work and a Grades mapping
// (student id -> grade) for group work. A grade is a number or a string.
type Homework struct {
	ID         primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	StudentID  string                 `json:"student_id,omitempty" bson:"student_id,omitempty"`
	GroupID    string                 `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Day        string                 `json:"day" bson:"day"`
	DueDate    time.Time              `json:"dueDate" bson:"dueDate"`
	Files      []string               `json:"files" bson:"files"`
	Answer     []HomeworkAnswer       `json:"answer" bson:"answer"`
	Grade      interface{}            `json:"grade,omitempty" bson:"grade,omitempty"`
	Grades     map[string]interface{} `json:"grades,omitempty" bson:"grades,omitempty"`
	UploadedAt time.Time              `json:"uploadedAt" bson:"uploadedAt"`
	SentAt     *time.Time             `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
}

func (h Homework) Target() (Target, bool) {
	return ResolveTarget(h.StudentID, h.GroupID)
}

func (h Homework) Clone() Homework {
	if h.Files != nil {
		h.Files = append(make([]string, 0, len(h.Files)), h.Files...)
	}
	if h.Answer != nil {
		h.Answer = append(make([]HomeworkAnswer, 0, len(h.Answer)), h.Answer...)
	}
	if h.Grades != nil {
		grades := make(map[string]interface{}, len(h.Grades))
		for k, v := range h.Grades {
			grades[k] = v
		}
		h.Grades = grades
	}
	if h.SentAt != nil {
		sent := *h.SentAt
		h.SentAt = &sent
	}
	return h
}

// Apply applies a single change in place.
func (h *Homework) Apply(c Change) error {
	switch c.Field {
	case FieldDay:
		return setString(&h.Day, c)
	case FieldDueDate:
		return setTime(&h.DueDate, c)
	case FieldGrade:
		switch c.Op {
		case OpSet:
			h.Grade = c.Value
		case OpUnset:
			h.Grade = nil
		default:
			return unsupported(c)
		}
	case FieldGrades:
		return h.applyGrades(c)
	case FieldAnswer:
		if c.Op != OpPush {
			return unsupported(c)
		}
		for _, v := range c.Values {
			a, ok := v.(HomeworkAnswer)
			if !ok {
				return badValue(Change{Field: c.Field, Value: v})
			}
			h.Answer = append(h.Answer, a)
		}
	case FieldSentAt:
		switch c.Op {
		case OpSet:
			t, ok := c.Value.(time.Time)
			if !ok {
				return badValue(c)
			}
			h.SentAt = &t
		case OpUnset:
			h.SentAt = nil
		default:
			return unsupported(c)
		}
	default:
		return unsupported(c)
	}
	return nil
}

func (h *Homework) applyGrades(c Change) error {
	switch {
	case c.Op == OpSet && c.Key != "":
		if h.Grades == nil {
			h.Grades = map[string]interface{}{}
		}
		h.Grades[c.Key] = c.Value
	case c.Op == OpUnset && c.Key != "":
		delete(h.Grades, c.Key)
	case c.Op == OpUnset:
		h.Grades = nil
	default:
		return unsupported(c)
	}
	return nil
}

type CreateHomeworkRequest struct {
	StudentID string `form:"student_id"`
	GroupID   string `form:"group_id"`
	Day       string `form:"day"`
	DueDate   string `form:"dueDate"`
}

type UploadAnswerRequest struct {
	HomeworkID string `form:"homework_id" binding:"required"`
	StudentID  string `form:"student_id" binding:"required"`
}

type GradeRequest struct {
	Grade interface{} `json:"grade"`
}
