package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

// Memory keeps every collection in mutex-guarded maps. Records are cloned on
// the way in and out so callers never share maps with the store.
type Memory struct {
	mutex     sync.RWMutex
	schedules map[primitive.ObjectID]*models.Schedule
	homework  map[primitive.ObjectID]*models.Homework
	groups    map[primitive.ObjectID]*models.StudentGroup
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		schedules: make(map[primitive.ObjectID]*models.Schedule),
		homework:  make(map[primitive.ObjectID]*models.Homework),
		groups:    make(map[primitive.ObjectID]*models.StudentGroup),
	}
}

func (m *Memory) Schedules() ScheduleStore { return memorySchedules{m} }
func (m *Memory) Homework() HomeworkStore  { return memoryHomework{m} }
func (m *Memory) Groups() GroupStore       { return memoryGroups{m} }

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func memoryIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

type memorySchedules struct{ m *Memory }

func (s memorySchedules) FindSchedules(_ context.Context, target models.Target) ([]models.Schedule, error) {
	s.m.mutex.RLock()
	defer s.m.mutex.RUnlock()

	out := make([]models.Schedule, 0)
	for _, rec := range s.m.schedules {
		if matchesTarget(rec.StudentID, rec.GroupID, target) {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s memorySchedules) GetSchedule(_ context.Context, id string) (models.Schedule, error) {
	s.m.mutex.RLock()
	defer s.m.mutex.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	rec, ok := s.m.schedules[oid]
	if !ok {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	return rec.Clone(), nil
}

func (s memorySchedules) CreateSchedule(_ context.Context, rec models.Schedule) (models.Schedule, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	rec = rec.Clone()
	rec.ID = primitive.NewObjectID()
	s.m.schedules[rec.ID] = &rec
	return rec.Clone(), nil
}

func (s memorySchedules) UpdateSchedule(_ context.Context, id string, u *models.Update) (models.Schedule, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	rec, ok := s.m.schedules[oid]
	if !ok {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	// apply to a copy so a bad change leaves the record untouched
	next := rec.Clone()
	for _, c := range u.Changes {
		if err := next.Apply(c); err != nil {
			return models.Schedule{}, apperr.Store("update schedule", err)
		}
	}
	s.m.schedules[oid] = &next
	return next.Clone(), nil
}

func (s memorySchedules) DeleteSchedule(_ context.Context, id string) (models.Schedule, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	rec, ok := s.m.schedules[oid]
	if !ok {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	delete(s.m.schedules, oid)
	return rec.Clone(), nil
}

func (s memorySchedules) DeleteSchedules(_ context.Context, ids []string) (int64, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	var n int64
	for _, oid := range memoryIDs(ids) {
		if _, ok := s.m.schedules[oid]; ok {
			delete(s.m.schedules, oid)
			n++
		}
	}
	return n, nil
}

type memoryHomework struct{ m *Memory }

func (s memoryHomework) FindHomework(_ context.Context, target models.Target) ([]models.Homework, error) {
	s.m.mutex.RLock()
	defer s.m.mutex.RUnlock()

	out := make([]models.Homework, 0)
	for _, rec := range s.m.homework {
		if matchesTarget(rec.StudentID, rec.GroupID, target) {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s memoryHomework) GetHomework(_ context.Context, id string) (models.Homework, error) {
	s.m.mutex.RLock()
	defer s.m.mutex.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	rec, ok := s.m.homework[oid]
	if !ok {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	return rec.Clone(), nil
}

func (s memoryHomework) CreateHomework(_ context.Context, rec models.Homework) (models.Homework, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	rec = rec.Clone()
	rec.ID = primitive.NewObjectID()
	s.m.homework[rec.ID] = &rec
	return rec.Clone(), nil
}

func (s memoryHomework) UpdateHomework(_ context.Context, id string, u *models.Update) (models.Homework, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	rec, ok := s.m.homework[oid]
	if !ok {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	next := rec.Clone()
	for _, c := range u.Changes {
		if err := next.Apply(c); err != nil {
			return models.Homework{}, apperr.Store("update homework", err)
		}
	}
	s.m.homework[oid] = &next
	return next.Clone(), nil
}

func (s memoryHomework) DeleteHomework(_ context.Context, id string) (models.Homework, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	rec, ok := s.m.homework[oid]
	if !ok {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	delete(s.m.homework, oid)
	return rec.Clone(), nil
}

func (s memoryHomework) DeleteHomeworks(_ context.Context, ids []string) (int64, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	var n int64
	for _, oid := range memoryIDs(ids) {
		if _, ok := s.m.homework[oid]; ok {
			delete(s.m.homework, oid)
			n++
		}
	}
	return n, nil
}

type memoryGroups struct{ m *Memory }

func (s memoryGroups) GetGroup(_ context.Context, id string) (models.StudentGroup, error) {
	s.m.mutex.RLock()
	defer s.m.mutex.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.StudentGroup{}, apperr.NewNotFoundError(resourceGroup)
	}
	g, ok := s.m.groups[oid]
	if !ok {
		return models.StudentGroup{}, apperr.NewNotFoundError(resourceGroup)
	}
	out := *g
	out.Students = append([]string(nil), g.Students...)
	return out, nil
}

func (s memoryGroups) CreateGroup(_ context.Context, g models.StudentGroup) (models.StudentGroup, error) {
	s.m.mutex.Lock()
	defer s.m.mutex.Unlock()

	g.ID = primitive.NewObjectID()
	g.Students = append(make([]string, 0, len(g.Students)), g.Students...)
	stored := g
	stored.Students = append([]string(nil), g.Students...)
	s.m.groups[g.ID] = &stored
	return g, nil
}

func matchesTarget(studentID, groupID string, target models.Target) bool {
	switch target.Kind {
	case models.TargetIndividual:
		return studentID == target.ID
	case models.TargetGroup:
		return groupID == target.ID
	default:
		return false
	}
}
