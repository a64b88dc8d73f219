package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Attendance holds one of two shapes: a single flag for individual lessons or a
// per-student mapping for group lessons. The zero value means "not recorded".
// On the wire it is `null`, `true`/`false` or `{"<studentId>": bool}`.
type Attendance struct {
	Present  *bool
	Students map[string]bool
}

func IndividualAttendance(present bool) Attendance {
	return Attendance{Present: &present}
}

func GroupAttendance(students map[string]bool) Attendance {
	if students == nil {
		students = map[string]bool{}
	}
	return Attendance{Students: students}
}

func (a Attendance) IsGroup() bool {
	return a.Students != nil
}

func (a Attendance) IsNull() bool {
	return a.Present == nil && a.Students == nil
}

// Student returns the recorded flag for studentID; ok is false when nothing was recorded.
func (a Attendance) Student(studentID string) (present, ok bool) {
	present, ok = a.Students[studentID]
	return
}

func (a Attendance) Clone() Attendance {
	var out Attendance
	if a.Present != nil {
		p := *a.Present
		out.Present = &p
	}
	if a.Students != nil {
		out.Students = make(map[string]bool, len(a.Students))
		for k, v := range a.Students {
			out.Students[k] = v
		}
	}
	return out
}

func (a Attendance) value() interface{} {
	switch {
	case a.Students != nil:
		return a.Students
	case a.Present != nil:
		return *a.Present
	default:
		return nil
	}
}

func (a Attendance) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value())
}

func (a *Attendance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = Attendance{}
		return nil
	case data[0] == '{':
		students := map[string]bool{}
		if err := json.Unmarshal(data, &students); err != nil {
			return fmt.Errorf("attendance: %w", err)
		}
		*a = GroupAttendance(students)
		return nil
	default:
		var present bool
		if err := json.Unmarshal(data, &present); err != nil {
			return fmt.Errorf("attendance: expected boolean, object or null: %w", err)
		}
		*a = IndividualAttendance(present)
		return nil
	}
}

func (a Attendance) MarshalBSONValue() (bsontype.Type, []byte, error) {
	v := a.value()
	if v == nil {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(v)
}

func (a *Attendance) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = Attendance{}
	case bsontype.Boolean:
		*a = IndividualAttendance(raw.Boolean())
	case bsontype.EmbeddedDocument:
		students := map[string]bool{}
		if err := raw.Unmarshal(&students); err != nil {
			return fmt.Errorf("attendance: %w", err)
		}
		*a = GroupAttendance(students)
	default:
		return fmt.Errorf("attendance: unexpected bson type %s", t)
	}
	return nil
}
