package store

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutoring_backend/models"
)

func TestSQLUpdate(t *testing.T) {
	tests := []struct {
		name     string
		update   *models.Update
		wantSet  string
		wantArgs []interface{}
	}{
		{
			name:     "plain columns",
			update:   models.NewUpdate().Set(models.FieldSubject, "math").Set(models.FieldDuration, 60),
			wantSet:  "subject = $2, duration = $3",
			wantArgs: []interface{}{"math", 60},
		},
		{
			name:     "whole attendance",
			update:   models.NewUpdate().Set(models.FieldAttendance, models.IndividualAttendance(true)),
			wantSet:  "attendance = NULLIF($2::jsonb, 'null'::jsonb)",
			wantArgs: []interface{}{"true"},
		},
		{
			name:    "keyed set",
			update:  models.NewUpdate().SetKey(models.FieldGrades, "s1", 5),
			wantSet: "grades = jsonb_set(COALESCE(NULLIF(grades, 'null'::jsonb), '{}'::jsonb), ARRAY[$2::text], $3::jsonb, true)",
			wantArgs: []interface{}{"s1", "5"},
		},
		{
			name:     "keyed unset",
			update:   models.NewUpdate().UnsetKey(models.FieldAttendance, "s1"),
			wantSet:  "attendance = (attendance - $2::text)",
			wantArgs: []interface{}{"s1"},
		},
		{
			name:     "whole unset",
			update:   models.NewUpdate().Unset(models.FieldGrade).Unset(models.FieldSentAt),
			wantSet:  "grade = NULL, sent_at = NULL",
			wantArgs: []interface{}{},
		},
		{
			name: "changes to one column are nested",
			update: models.NewUpdate().
				SetKey(models.FieldAttendance, "s1", true).
				UnsetKey(models.FieldAttendance, "s2"),
			wantSet:  "attendance = (jsonb_set(COALESCE(NULLIF(attendance, 'null'::jsonb), '{}'::jsonb), ARRAY[$2::text], $3::jsonb, true) - $4::text)",
			wantArgs: []interface{}{"s1", "true", "s2"},
		},
		{
			name:     "push answers",
			update:   models.NewUpdate().Push(models.FieldAnswer, models.HomeworkAnswer{StudentID: "s1", File: "a.pdf"}),
			wantSet:  "answer = (COALESCE(answer, '[]'::jsonb) || $2::jsonb)",
			wantArgs: []interface{}{`[{"student_id":"s1","file":"a.pdf"}]`},
		},
		{
			name:     "push files",
			update:   models.NewUpdate().Push(models.FieldFiles, "a.pdf"),
			wantSet:  "files = array_cat(files, $2::text[])",
			wantArgs: []interface{}{pq.Array([]string{"a.pdf"})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, args, err := sqlUpdate(tt.update)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, set)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSQLUpdateRejectsUnknownShapes(t *testing.T) {
	for _, u := range []*models.Update{
		models.NewUpdate().Set("nope", 1),
		models.NewUpdate().SetKey(models.FieldSubject, "k", "v"),
		models.NewUpdate().Push(models.FieldDay, "пн"),
		models.NewUpdate().Unset(models.FieldDuration),
	} {
		_, _, err := sqlUpdate(u)
		assert.Error(t, err)
	}
}

func TestPgIDsDropsMalformed(t *testing.T) {
	assert.Equal(t, []string{"65f000000000000000000001"}, pgIDs([]string{"x", "65f000000000000000000001"}))
}
