package models

// Stored field names. They double as JSON/BSON keys and are translated to
// column names by the SQL store.
const (
	FieldStudentID   = "student_id"
	FieldGroupID     = "group_id"
	FieldDay         = "day"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldDuration    = "duration"
	FieldSubject     = "subject"
	FieldDescription = "description"
	FieldAttendance  = "attendance"
	FieldUpdatedAt   = "updatedAt"
	FieldDueDate     = "dueDate"
	FieldFiles       = "files"
	FieldAnswer      = "answer"
	FieldGrade       = "grade"
	FieldGrades      = "grades"
	FieldSentAt      = "sentAt"
)

type Op int

const (
	// OpSet replaces Field, or the Key entry of the mapping stored in Field.
	OpSet Op = iota
	// OpUnset removes Field, or the Key entry of the mapping stored in Field.
	OpUnset
	// OpPush appends Values to the list stored in Field.
	OpPush
)

type Change struct {
	Op     Op
	Field  string
	Key    string
	Value  interface{}
	Values []interface{}
}

// Update is an ordered list of changes applied to one record atomically.
type Update struct {
	Changes []Change
}

func NewUpdate() *Update {
	return &Update{}
}

func (u *Update) Set(field string, value interface{}) *Update {
	u.Changes = append(u.Changes, Change{Op: OpSet, Field: field, Value: value})
	return u
}

func (u *Update) SetKey(field, key string, value interface{}) *Update {
	u.Changes = append(u.Changes, Change{Op: OpSet, Field: field, Key: key, Value: value})
	return u
}

func (u *Update) Unset(field string) *Update {
	u.Changes = append(u.Changes, Change{Op: OpUnset, Field: field})
	return u
}

func (u *Update) UnsetKey(field, key string) *Update {
	u.Changes = append(u.Changes, Change{Op: OpUnset, Field: field, Key: key})
	return u
}

func (u *Update) Push(field string, values ...interface{}) *Update {
	u.Changes = append(u.Changes, Change{Op: OpPush, Field: field, Values: values})
	return u
}

func (u *Update) Empty() bool {
	return u == nil || len(u.Changes) == 0
}
