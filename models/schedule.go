package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutoring_backend/apperr"
)

// MinLessonMinutes is the shortest lesson that can be scheduled.
const MinLessonMinutes = 30

type Schedule struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	StudentID   string             `json:"student_id,omitempty" bson:"student_id,omitempty"`
	GroupID     string             `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Day         string             `json:"day" bson:"day"`
	Date        time.Time          `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	Duration    int                `json:"duration" bson:"duration"`
	Subject     string             `json:"subject" bson:"subject"`
	Description string             `json:"description" bson:"description"`
	Attendance  Attendance         `json:"attendance" bson:"attendance"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (s Schedule) Target() (Target, bool) {
	return ResolveTarget(s.StudentID, s.GroupID)
}

func (s Schedule) Clone() Schedule {
	s.Attendance = s.Attendance.Clone()
	return s
}

// Apply applies a single change in place. Stores that cannot express changes
// natively (the in-memory store) use it.
func (s *Schedule) Apply(c Change) error {
	switch c.Field {
	case FieldDay:
		return setString(&s.Day, c)
	case FieldDate:
		return setTime(&s.Date, c)
	case FieldTime:
		return setString(&s.Time, c)
	case FieldDuration:
		if c.Op != OpSet {
			return unsupported(c)
		}
		d, ok := c.Value.(int)
		if !ok {
			return badValue(c)
		}
		s.Duration = d
	case FieldSubject:
		return setString(&s.Subject, c)
	case FieldDescription:
		return setString(&s.Description, c)
	case FieldUpdatedAt:
		return setTime(&s.UpdatedAt, c)
	case FieldAttendance:
		return s.applyAttendance(c)
	default:
		return unsupported(c)
	}
	return nil
}

func (s *Schedule) applyAttendance(c Change) error {
	switch {
	case c.Op == OpSet && c.Key == "":
		a, ok := c.Value.(Attendance)
		if !ok {
			return badValue(c)
		}
		s.Attendance = a.Clone()
	case c.Op == OpSet:
		v, ok := c.Value.(bool)
		if !ok {
			return badValue(c)
		}
		if s.Attendance.Students == nil {
			s.Attendance = GroupAttendance(nil)
		}
		s.Attendance.Students[c.Key] = v
	case c.Op == OpUnset && c.Key == "":
		s.Attendance = Attendance{}
	case c.Op == OpUnset:
		delete(s.Attendance.Students, c.Key)
	default:
		return unsupported(c)
	}
	return nil
}

// Minutes accepts a JSON number or a numeric string.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return apperr.NewValidationError(fmt.Sprintf("duration: %q is not a number of minutes", raw),
			apperr.FieldError{Field: "duration", Error: "must be a number"})
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return apperr.NewValidationError(fmt.Sprintf("duration: %s minutes is out of range", raw),
			apperr.FieldError{Field: "duration", Error: "out of range"})
	}
	*m = Minutes(int(f))
	return nil
}

func (m Minutes) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(m))
}

type CreateScheduleRequest struct {
	StudentID   string  `json:"student_id"`
	GroupID     string  `json:"group_id"`
	Day         string  `json:"day"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    Minutes `json:"duration"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
}

// UpdateScheduleRequest leaves absent fields untouched.
type UpdateScheduleRequest struct {
	Date        string   `json:"date" binding:"required"`
	Time        *string  `json:"time"`
	Duration    *Minutes `json:"duration"`
	Subject     *string  `json:"subject"`
	Description *string  `json:"description"`
}

type UpdateAttendanceRequest struct {
	Attendance *bool  `json:"attendance"`
	StudentID  string `json:"studentId"`
}

type GroupAttendanceRequest struct {
	Attendance map[string]bool `json:"attendance" binding:"required"`
}

type DeleteManyRequest struct {
	IDs []string `json:"ids"`
}

// GroupSchedule is a group's lessons together with its roster.
type GroupSchedule struct {
	Schedules []Schedule `json:"schedules"`
	Students  []string   `json:"students"`
}
