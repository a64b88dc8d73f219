package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutoring_backend/models"
	"tutoring_backend/routes"
	"tutoring_backend/store"
	"tutoring_backend/upload"
)

type testServer struct {
	router *gin.Engine
	store  *store.Memory
}

func setup(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	sink, err := upload.NewDiskSink(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	routes.SetupRoutes(r, st, sink, nil, zap.NewNop())

	return &testServer{router: r, store: st}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) multipart(t *testing.T, path string, fields map[string]string, files ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (s *testServer) createLesson(t *testing.T, body gin.H) models.Schedule {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/schedule", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out models.Schedule
	decode(t, rec, &out)
	return out
}

func (s *testServer) createHomework(t *testing.T, fields map[string]string, files ...string) models.Homework {
	t.Helper()
	rec := s.multipart(t, "/api/homework", fields, files...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.Homework
	decode(t, rec, &out)
	return out
}

type httpTest struct {
	name      string
	method    string
	path      string
	body      interface{}
	wantCode  int
	wantError string
}

func (tt httpTest) run(t *testing.T, s *testServer) *httptest.ResponseRecorder {
	t.Helper()
	rec := s.do(t, tt.method, tt.path, tt.body)
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantError != "" {
		var body map[string]interface{}
		decode(t, rec, &body)
		assert.Equal(t, tt.wantError, body["error"])
	}
	return rec
}

const missingID = "65f000000000000000000000"

func TestScheduleHandler_Errors(t *testing.T) {
	s := setup(t)
	ind := s.createLesson(t, gin.H{"student_id": "s1", "date": "2024-03-05", "time": "10:00", "duration": 60})

	tests := []httpTest{
		{name: "short lesson", method: http.MethodPost, path: "/api/schedule",
			body: gin.H{"student_id": "s1", "date": "2024-03-05", "duration": 20}, wantCode: http.StatusBadRequest,
			wantError: "lesson duration must be at least 30 minutes"},
		{name: "no target", method: http.MethodPost, path: "/api/schedule",
			body: gin.H{"date": "2024-03-05", "duration": "45"}, wantCode: http.StatusBadRequest,
			wantError: "must specify student or group"},
		{name: "duration out of range", method: http.MethodPost, path: "/api/schedule",
			body: `{"student_id":"s1","date":"2024-03-05","duration":1e12}`, wantCode: http.StatusBadRequest,
			wantError: "duration: 1e12 minutes is out of range"},
		{name: "malformed body", method: http.MethodPost, path: "/api/schedule",
			body: "{", wantCode: http.StatusBadRequest},
		{name: "attendance on missing lesson", method: http.MethodPut, path: "/api/schedule/" + missingID + "/updateAttendance",
			body: gin.H{"attendance": true}, wantCode: http.StatusNotFound, wantError: "schedule item not found"},
		{name: "bulk attendance on individual lesson", method: http.MethodPut, path: "/api/schedule/" + ind.ID.Hex() + "/updateGroupAttendance",
			body: gin.H{"attendance": gin.H{"s1": true}}, wantCode: http.StatusBadRequest},
		{name: "bulk attendance without mapping", method: http.MethodPut, path: "/api/schedule/" + ind.ID.Hex() + "/updateGroupAttendance",
			body: gin.H{}, wantCode: http.StatusBadRequest},
		{name: "update without date", method: http.MethodPut, path: "/api/schedule/" + ind.ID.Hex(),
			body: gin.H{"time": "11:00"}, wantCode: http.StatusBadRequest},
		{name: "update missing lesson", method: http.MethodPut, path: "/api/schedule/" + missingID,
			body: gin.H{"date": "2024-03-06"}, wantCode: http.StatusNotFound},
		{name: "delete missing lesson", method: http.MethodDelete, path: "/api/schedule/" + missingID,
			wantCode: http.StatusNotFound, wantError: "schedule item not found"},
		{name: "bulk delete without ids", method: http.MethodPost, path: "/api/schedule/deleteMultiple",
			body: gin.H{"ids": []string{}}, wantCode: http.StatusBadRequest,
			wantError: "expected a non-empty array of ids"},
		{name: "bulk delete with a non array", method: http.MethodPost, path: "/api/schedule/deleteMultiple",
			body: gin.H{"ids": "abc"}, wantCode: http.StatusBadRequest},
		{name: "bulk delete nothing found", method: http.MethodPost, path: "/api/schedule/deleteMultiple",
			body: gin.H{"ids": []string{missingID}}, wantCode: http.StatusNotFound},
		{name: "roster of missing group", method: http.MethodGet, path: "/api/schedule/group/" + missingID + "/with-students",
			wantCode: http.StatusNotFound, wantError: "group not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, s)
		})
	}
}

func TestScheduleHandler_Flow(t *testing.T) {
	s := setup(t)

	ind := s.createLesson(t, gin.H{"student_id": "s1", "date": "2024-03-05", "time": "10:00", "duration": 60, "subject": "math"})
	assert.Equal(t, models.IndividualAttendance(false), ind.Attendance)

	grp := s.createLesson(t, gin.H{"group_id": "g1", "date": "2024-03-06", "time": "09:00", "duration": "90"})
	assert.True(t, grp.Attendance.IsNull())
	s.createLesson(t, gin.H{"group_id": "g1", "date": "2024-03-05", "time": "18:00", "duration": 45})

	// individual attendance replaces the field
	rec := s.do(t, http.MethodPut, "/api/schedule/"+ind.ID.Hex()+"/updateAttendance", gin.H{"attendance": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `true`, string(mustField(t, rec, "attendance")))

	// group attendance for one student
	rec = s.do(t, http.MethodPut, "/api/schedule/"+grp.ID.Hex()+"/updateAttendance", gin.H{"attendance": false, "studentId": "s7"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"s7": false}`, string(mustField(t, rec, "attendance")))

	rec = s.do(t, http.MethodPut, "/api/schedule/"+grp.ID.Hex()+"/updateAttendance", gin.H{"attendance": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// bulk overwrite
	rec = s.do(t, http.MethodPut, "/api/schedule/"+grp.ID.Hex()+"/updateGroupAttendance", gin.H{"attendance": gin.H{"s1": true, "s2": false}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"s1": true, "s2": false}`, string(mustField(t, rec, "attendance")))

	// group listing is sorted by date then time
	rec = s.do(t, http.MethodGet, "/api/schedule/group/g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Schedule
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "18:00", list[0].Time)
	assert.Equal(t, grp.ID, list[1].ID)

	rec = s.do(t, http.MethodGet, "/api/schedule/student/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// update recomputes the weekday
	rec = s.do(t, http.MethodPut, "/api/schedule/"+ind.ID.Hex(), gin.H{"date": "2024-03-10", "time": "12:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Schedule
	decode(t, rec, &updated)
	assert.Equal(t, "вс", updated.Day)
	assert.Equal(t, "12:00", updated.Time)
	assert.Equal(t, "math", updated.Subject)

	// delete returns the removed record
	rec = s.do(t, http.MethodDelete, "/api/schedule/"+ind.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted struct {
		Message     string          `json:"message"`
		DeletedItem models.Schedule `json:"deletedItem"`
	}
	decode(t, rec, &deleted)
	assert.Equal(t, ind.ID, deleted.DeletedItem.ID)

	rec = s.do(t, http.MethodPost, "/api/schedule/deleteMultiple", gin.H{"ids": []string{grp.ID.Hex(), list[0].ID.Hex(), missingID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `2`, string(mustField(t, rec, "deletedCount")))
}

func TestScheduleHandler_GroupWithStudents(t *testing.T) {
	s := setup(t)

	rec := s.do(t, http.MethodPost, "/api/groups", gin.H{"name": "A1", "students": []string{"s1", "s2"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group models.StudentGroup
	decode(t, rec, &group)

	rec = s.do(t, http.MethodGet, "/api/groups/"+group.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	s.createLesson(t, gin.H{"group_id": group.ID.Hex(), "date": "2024-03-05", "time": "10:00", "duration": 60})

	rec = s.do(t, http.MethodGet, "/api/schedule/group/"+group.ID.Hex()+"/with-students", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.GroupSchedule
	decode(t, rec, &out)
	assert.Len(t, out.Schedules, 1)
	assert.Equal(t, []string{"s1", "s2"}, out.Students)

	rec = s.do(t, http.MethodPost, "/api/groups", gin.H{"students": []string{"s1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeworkHandler_Flow(t *testing.T) {
	s := setup(t)

	grp := s.createHomework(t, map[string]string{"group_id": "g1", "day": "пт", "dueDate": "2024-03-08"}, "task.PDF")
	require.Len(t, grp.Files, 1)
	assert.Regexp(t, `^[0-9a-f-]{36}\.pdf$`, grp.Files[0])
	assert.Empty(t, grp.Answer)

	ind := s.createHomework(t, map[string]string{"student_id": "s1", "dueDate": "2024-03-01"})
	assert.Empty(t, ind.Files)

	rec := s.multipart(t, "/api/homework", map[string]string{"dueDate": "2024-03-08"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// answers from two students are appended in order
	rec = s.multipart(t, "/api/homework/upload-answer", map[string]string{"homework_id": grp.ID.Hex(), "student_id": "s1"}, "a.txt")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.multipart(t, "/api/homework/upload-answer", map[string]string{"homework_id": grp.ID.Hex(), "student_id": "s2"}, "b.txt")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var answered models.Homework
	decode(t, rec, &answered)
	require.Len(t, answered.Answer, 2)
	assert.Equal(t, "s1", answered.Answer[0].StudentID)
	assert.Equal(t, "s2", answered.Answer[1].StudentID)
	assert.NotNil(t, answered.SentAt)

	rec = s.multipart(t, "/api/homework/upload-answer", map[string]string{"homework_id": missingID, "student_id": "s1"}, "a.txt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.multipart(t, "/api/homework/upload-answer", map[string]string{"student_id": "s1"}, "a.txt")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// per-student grades
	rec = s.do(t, http.MethodPut, "/api/homework/"+grp.ID.Hex()+"/s1", gin.H{"grade": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"s1": 5}`, string(mustField(t, rec, "grades")))

	rec = s.do(t, http.MethodPut, "/api/homework/"+grp.ID.Hex()+"/s1", gin.H{"grade": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cleared map[string]json.RawMessage
	decode(t, rec, &cleared)
	if raw, ok := cleared["grades"]; ok {
		assert.JSONEq(t, `{}`, string(raw))
	}

	rec = s.do(t, http.MethodPut, "/api/homework/"+ind.ID.Hex()+"/s1", gin.H{"grade": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// record-level grade
	rec = s.do(t, http.MethodPut, "/api/homework/"+ind.ID.Hex(), gin.H{"grade": "A"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `"A"`, string(mustField(t, rec, "grade")))

	rec = s.do(t, http.MethodPut, "/api/homework/"+ind.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ungraded map[string]json.RawMessage
	decode(t, rec, &ungraded)
	assert.NotContains(t, ungraded, "grade")

	rec = s.do(t, http.MethodPut, "/api/homework/"+missingID, gin.H{"grade": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// listing
	rec = s.do(t, http.MethodGet, "/api/homework/group/g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Homework
	decode(t, rec, &list)
	require.Len(t, list, 1)

	// deletion
	rec = s.do(t, http.MethodDelete, "/api/homework/"+ind.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/homework/deleteMultiple", gin.H{"ids": []string{ind.ID.Hex()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/homework/deleteMultiple", gin.H{"ids": []string{grp.ID.Hex(), missingID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `1`, string(mustField(t, rec, "deletedCount")))
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, field string) json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	decode(t, rec, &body)
	raw, ok := body[field]
	require.True(t, ok, "field %q missing in %s", field, rec.Body.String())
	return raw
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := setup(t)

	tests := []httpTest{
		{name: "health", method: http.MethodGet, path: "/health", wantCode: http.StatusOK},
		{name: "metrics disabled", method: http.MethodGet, path: "/metrics", wantCode: http.StatusNotFound},
		{name: "wrong verb for bulk delete", method: http.MethodDelete, path: "/api/schedule/deleteMultiple", wantCode: http.StatusNotFound},
		{name: "unknown collection", method: http.MethodGet, path: "/api/lessons/student/s1", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, s)
		})
	}
}
