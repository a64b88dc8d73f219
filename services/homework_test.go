package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

func createHomework(t *testing.T, svc *HomeworkService, studentID, groupID, dueDate string, files ...string) models.Homework {
	t.Helper()
	rec, err := svc.Create(context.Background(), models.CreateHomeworkRequest{
		StudentID: studentID, GroupID: groupID, DueDate: dueDate,
	}, fileHeaders(files...))
	require.NoError(t, err)
	return rec
}

func TestHomeworkService_Create(t *testing.T) {
	_, svc, _, sink := setup(t)
	ctx := context.Background()

	rec := createHomework(t, svc, "s1", "", "2024-03-08", "task.pdf", "notes.txt")
	assert.Equal(t, []string{"1-task.pdf", "2-notes.txt"}, rec.Files)
	assert.NotNil(t, rec.Answer)
	assert.Empty(t, rec.Answer)
	assert.Nil(t, rec.Grade)
	assert.Nil(t, rec.SentAt)
	assert.Equal(t, fixedNow, rec.UploadedAt)
	assert.Equal(t, "пт", rec.Day)

	// nothing is written for invalid input
	_, err := svc.Create(ctx, models.CreateHomeworkRequest{DueDate: "2024-03-08"}, fileHeaders("x.pdf"))
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.Create(ctx, models.CreateHomeworkRequest{StudentID: "s1", DueDate: "soon"}, fileHeaders("x.pdf"))
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 2, sink.saved)

	sink.err = assert.AnError
	_, err = svc.Create(ctx, models.CreateHomeworkRequest{StudentID: "s1", DueDate: "2024-03-08"}, fileHeaders("x.pdf"))
	var se *apperr.StoreError
	assert.ErrorAs(t, err, &se)
}

func TestHomeworkService_ListSortedByDueDate(t *testing.T) {
	_, svc, _, _ := setup(t)

	late := createHomework(t, svc, "s1", "", "2024-04-01")
	early := createHomework(t, svc, "s1", "", "2024-03-01")
	createHomework(t, svc, "", "g1", "2024-02-01")

	got, err := svc.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)
}

func TestHomeworkService_UploadAnswersAppendInOrder(t *testing.T) {
	_, svc, _, _ := setup(t)
	ctx := context.Background()
	rec := createHomework(t, svc, "", "g1", "2024-03-08")
	id := rec.ID.Hex()

	_, err := svc.UploadAnswer(ctx, models.UploadAnswerRequest{HomeworkID: id, StudentID: "s1"}, fileHeaders("a.pdf"))
	require.NoError(t, err)
	got, err := svc.UploadAnswer(ctx, models.UploadAnswerRequest{HomeworkID: id, StudentID: "s2"}, fileHeaders("b.pdf", "c.pdf"))
	require.NoError(t, err)

	assert.Equal(t, []models.HomeworkAnswer{
		{StudentID: "s1", File: "1-a.pdf"},
		{StudentID: "s2", File: "2-b.pdf"},
		{StudentID: "s2", File: "3-c.pdf"},
	}, got.Answer)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, fixedNow, *got.SentAt)

	_, err = svc.UploadAnswer(ctx, models.UploadAnswerRequest{HomeworkID: "65f000000000000000000000", StudentID: "s1"}, fileHeaders("a.pdf"))
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.UploadAnswer(ctx, models.UploadAnswerRequest{HomeworkID: id, StudentID: "s1"}, nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestHomeworkService_UpdateGrade(t *testing.T) {
	_, svc, _, _ := setup(t)
	ctx := context.Background()
	ind := createHomework(t, svc, "s1", "", "2024-03-08")
	grp := createHomework(t, svc, "", "g1", "2024-03-08")

	got, err := svc.UpdateGrade(ctx, ind.ID.Hex(), float64(5))
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Grade)

	// record-level grades work on group homework too
	got, err = svc.UpdateGrade(ctx, grp.ID.Hex(), "B")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Grade)

	got, err = svc.UpdateGrade(ctx, ind.ID.Hex(), nil)
	require.NoError(t, err)
	assert.Nil(t, got.Grade)

	_, err = svc.UpdateGrade(ctx, "65f000000000000000000000", float64(3))
	assert.True(t, apperr.IsNotFound(err))
}

func TestHomeworkService_UpdateStudentGrade(t *testing.T) {
	_, svc, _, _ := setup(t)
	ctx := context.Background()
	grp := createHomework(t, svc, "", "g1", "2024-03-08")
	id := grp.ID.Hex()

	got, err := svc.UpdateStudentGrade(ctx, id, "s1", float64(4))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"s1": float64(4)}, got.Grades)
	_, err = svc.UpdateStudentGrade(ctx, id, "s2", "A")
	require.NoError(t, err)

	read, err := svc.store.Homework().GetHomework(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"s1": float64(4), "s2": "A"}, read.Grades)

	_, err = svc.UpdateStudentGrade(ctx, id, "s1", nil)
	require.NoError(t, err)
	read, err = svc.store.Homework().GetHomework(ctx, id)
	require.NoError(t, err)
	_, present := read.Grades["s1"]
	assert.False(t, present)
	assert.Equal(t, "A", read.Grades["s2"])

	_, err = svc.UpdateStudentGrade(ctx, id, "s2", "")
	require.NoError(t, err)
	read, err = svc.store.Homework().GetHomework(ctx, id)
	require.NoError(t, err)
	grade, present := read.Grades["s2"]
	assert.True(t, present)
	assert.Equal(t, "", grade)

	ind := createHomework(t, svc, "s1", "", "2024-03-08")
	_, err = svc.UpdateStudentGrade(ctx, ind.ID.Hex(), "s1", float64(4))
	assert.True(t, apperr.IsValidation(err))
}

func TestHomeworkService_Delete(t *testing.T) {
	_, svc, _, _ := setup(t)
	ctx := context.Background()
	a := createHomework(t, svc, "s1", "", "2024-03-08")

	_, err := svc.DeleteMany(ctx, []string{})
	assert.True(t, apperr.IsValidation(err))

	n, err := svc.DeleteMany(ctx, []string{a.ID.Hex(), "65f000000000000000000000"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.Delete(ctx, a.ID.Hex())
	assert.True(t, apperr.IsNotFound(err))
}
