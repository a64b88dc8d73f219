package services

import (
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"tutoring_backend/store"
)

var fixedNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*ScheduleService, *HomeworkService, *GroupService, *fakeSink) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { nowFunc = prev })

	st := store.NewMemory()
	sink := &fakeSink{}
	return NewScheduleService(st), NewHomeworkService(st, sink), NewGroupService(st), sink
}

type fakeSink struct {
	saved int
	err   error
}

func (s *fakeSink) Save(files []*multipart.FileHeader) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		s.saved++
		names = append(names, fmt.Sprintf("%d-%s", s.saved, f.Filename))
	}
	return names, nil
}

func fileHeaders(names ...string) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(names))
	for _, n := range names {
		out = append(out, &multipart.FileHeader{Filename: n})
	}
	return out
}
