package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

func bPtr(b bool) *bool { return &b }

func TestAttendanceUpdate(t *testing.T) {
	group := models.GroupAttendance(map[string]bool{"s1": true})

	tests := []struct {
		name      string
		target    models.Target
		current   models.Attendance
		value     *bool
		studentID string
		want      *models.Update
		wantValid bool
	}{
		{
			name:   "individual replaces the whole field",
			target: models.Individual("s1"), current: models.IndividualAttendance(false), value: bPtr(true),
			want: models.NewUpdate().Set(models.FieldAttendance, models.IndividualAttendance(true)),
		},
		{
			name:   "individual null clears",
			target: models.Individual("s1"), current: models.IndividualAttendance(true),
			want: models.NewUpdate().Set(models.FieldAttendance, models.Attendance{}),
		},
		{
			name:   "group sets one key",
			target: models.Group("g1"), current: group, value: bPtr(false), studentID: "s2",
			want: models.NewUpdate().SetKey(models.FieldAttendance, "s2", false),
		},
		{
			name:   "group initialises a null mapping",
			target: models.Group("g1"), value: bPtr(true), studentID: "s2",
			want: models.NewUpdate().Set(models.FieldAttendance, models.GroupAttendance(map[string]bool{"s2": true})),
		},
		{
			name:   "group null removes the key",
			target: models.Group("g1"), current: group, studentID: "s1",
			want: models.NewUpdate().UnsetKey(models.FieldAttendance, "s1"),
		},
		{
			name:   "group without student id",
			target: models.Group("g1"), current: group, value: bPtr(true),
			wantValid: true,
		},
		{
			name:   "group with a dotted student id",
			target: models.Group("g1"), current: group, value: bPtr(true), studentID: "a.b",
			wantValid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attendanceUpdate(tt.target, tt.current, tt.value, tt.studentID)
			if tt.wantValid {
				assert.True(t, apperr.IsValidation(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttendanceUpdate_UnknownKind(t *testing.T) {
	_, err := attendanceUpdate(models.Target{}, models.Attendance{}, bPtr(true), "s1")
	require.Error(t, err)
	assert.False(t, apperr.IsValidation(err))
}

func TestGroupAttendanceUpdate(t *testing.T) {
	m := map[string]bool{"s1": true, "s2": false}
	u, err := groupAttendanceUpdate(models.Group("g1"), m)
	require.NoError(t, err)
	require.Len(t, u.Changes, 1)
	assert.Equal(t, models.GroupAttendance(m), u.Changes[0].Value)

	// the caller's map is not shared with the update
	m["s3"] = true
	assert.Len(t, u.Changes[0].Value.(models.Attendance).Students, 2)

	_, err = groupAttendanceUpdate(models.Individual("s1"), m)
	assert.True(t, apperr.IsValidation(err))
}

func TestGradeUpdate(t *testing.T) {
	u, err := gradeUpdate(float64(4))
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdate().Set(models.FieldGrade, float64(4)), u)

	u, err = gradeUpdate("A+")
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdate().Set(models.FieldGrade, "A+"), u)

	for _, empty := range []interface{}{nil, ""} {
		u, err = gradeUpdate(empty)
		require.NoError(t, err)
		assert.Equal(t, models.NewUpdate().Unset(models.FieldGrade), u)
	}

	_, err = gradeUpdate(map[string]interface{}{"x": 1})
	assert.True(t, apperr.IsValidation(err))
}

func TestStudentGradeUpdate(t *testing.T) {
	u, err := studentGradeUpdate(models.Group("g1"), "s1", float64(5))
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdate().SetKey(models.FieldGrades, "s1", float64(5)), u)

	u, err = studentGradeUpdate(models.Group("g1"), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdate().UnsetKey(models.FieldGrades, "s1"), u)

	// an empty string is a value, not a removal
	u, err = studentGradeUpdate(models.Group("g1"), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, models.NewUpdate().SetKey(models.FieldGrades, "s1", ""), u)

	_, err = studentGradeUpdate(models.Individual("s1"), "s1", float64(5))
	assert.True(t, apperr.IsValidation(err))

	_, err = studentGradeUpdate(models.Group("g1"), "$where", float64(5))
	assert.True(t, apperr.IsValidation(err))
}
