package services

import (
	"fmt"
	"strings"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

var errNoTarget = apperr.NewValidationError("must specify student or group",
	apperr.FieldError{Field: "student_id", Error: "student_id or group_id is required"},
	apperr.FieldError{Field: "group_id", Error: "student_id or group_id is required"},
)

func unknownKind(t models.Target) error {
	return fmt.Errorf("unknown target kind %s", t.Kind)
}

// checkKey rejects student ids that cannot be used as mapping keys.
func checkKey(field, key string) error {
	switch {
	case key == "":
		return apperr.NewValidationError(field+" is required", apperr.FieldError{Field: field, Error: "required"})
	case strings.Contains(key, ".") || strings.HasPrefix(key, "$"):
		return apperr.NewValidationError("invalid "+field, apperr.FieldError{Field: field, Error: "must not contain '.' or start with '$'"})
	}
	return nil
}

// attendanceUpdate records one attendance value. Individual records take the
// value wholesale; group records need studentID and only that key changes.
// A nil value clears the flag.
func attendanceUpdate(target models.Target, current models.Attendance, value *bool, studentID string) (*models.Update, error) {
	u := models.NewUpdate()
	switch target.Kind {
	case models.TargetIndividual:
		if value == nil {
			return u.Set(models.FieldAttendance, models.Attendance{}), nil
		}
		return u.Set(models.FieldAttendance, models.IndividualAttendance(*value)), nil

	case models.TargetGroup:
		if studentID == "" {
			return nil, apperr.NewValidationError("studentId is required for group attendance",
				apperr.FieldError{Field: "studentId", Error: "required"})
		}
		if err := checkKey("studentId", studentID); err != nil {
			return nil, err
		}
		if !current.IsGroup() {
			// the mapping does not exist yet, so the key cannot be set in place
			students := map[string]bool{}
			if value != nil {
				students[studentID] = *value
			}
			return u.Set(models.FieldAttendance, models.GroupAttendance(students)), nil
		}
		if value == nil {
			return u.UnsetKey(models.FieldAttendance, studentID), nil
		}
		return u.SetKey(models.FieldAttendance, studentID, *value), nil

	default:
		return nil, unknownKind(target)
	}
}

// groupAttendanceUpdate replaces the whole mapping of a group record.
func groupAttendanceUpdate(target models.Target, students map[string]bool) (*models.Update, error) {
	switch target.Kind {
	case models.TargetIndividual:
		return nil, apperr.NewValidationError("bulk attendance applies to group lessons only")
	case models.TargetGroup:
		copied := make(map[string]bool, len(students))
		for id, present := range students {
			if err := checkKey("attendance", id); err != nil {
				return nil, err
			}
			copied[id] = present
		}
		return models.NewUpdate().Set(models.FieldAttendance, models.GroupAttendance(copied)), nil
	default:
		return nil, unknownKind(target)
	}
}

// checkGrade accepts numbers and strings. It reports false only for nil.
func checkGrade(grade interface{}) (bool, error) {
	switch grade.(type) {
	case nil:
		return false, nil
	case string, float64, float32, int, int64, int32:
		return true, nil
	default:
		return false, apperr.NewValidationError("grade must be a number or a string",
			apperr.FieldError{Field: "grade", Error: fmt.Sprintf("unexpected %T", grade)})
	}
}

// gradeUpdate sets the record-level grade, or removes it when no grade or an
// empty string is given.
func gradeUpdate(grade interface{}) (*models.Update, error) {
	ok, err := checkGrade(grade)
	if err != nil {
		return nil, err
	}
	if !ok || grade == "" {
		return models.NewUpdate().Unset(models.FieldGrade), nil
	}
	return models.NewUpdate().Set(models.FieldGrade, grade), nil
}

// studentGradeUpdate sets grades[studentID] on a group record. Only a nil
// grade removes the key.
func studentGradeUpdate(target models.Target, studentID string, grade interface{}) (*models.Update, error) {
	switch target.Kind {
	case models.TargetIndividual:
		return nil, apperr.NewValidationError("per-student grades apply to group homework only")
	case models.TargetGroup:
		if err := checkKey("studentId", studentID); err != nil {
			return nil, err
		}
		ok, err := checkGrade(grade)
		if err != nil {
			return nil, err
		}
		if !ok {
			return models.NewUpdate().UnsetKey(models.FieldGrades, studentID), nil
		}
		return models.NewUpdate().SetKey(models.FieldGrades, studentID, grade), nil
	default:
		return nil, unknownKind(target)
	}
}
