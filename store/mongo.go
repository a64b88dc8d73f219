package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tutoring_backend/apperr"
	"tutoring_backend/db"
	"tutoring_backend/models"
)

// Mongo stores every collection in a document database.
type Mongo struct {
	database  *mongo.Database
	schedules *mongo.Collection
	homework  *mongo.Collection
	groups    *mongo.Collection
}

var _ Store = (*Mongo)(nil)

func NewMongo(database *mongo.Database) *Mongo {
	return &Mongo{
		database:  database,
		schedules: database.Collection(db.ScheduleCollection),
		homework:  database.Collection(db.HomeworkCollection),
		groups:    database.Collection(db.GroupCollection),
	}
}

func (m *Mongo) Schedules() ScheduleStore { return mongoSchedules{m} }
func (m *Mongo) Homework() HomeworkStore  { return mongoHomework{m} }
func (m *Mongo) Groups() GroupStore       { return mongoGroups{m} }

func (m *Mongo) Ping(ctx context.Context) error {
	return m.database.Client().Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.database.Client().Disconnect(ctx)
}

// mongoUpdate translates an Update into update operators. Keyed changes become
// dotted paths so only that entry of the mapping is touched.
func mongoUpdate(u *models.Update) bson.M {
	set, unset, push := bson.M{}, bson.M{}, bson.M{}
	for _, c := range u.Changes {
		path := c.Field
		if c.Key != "" {
			path += "." + c.Key
		}
		switch c.Op {
		case models.OpSet:
			set[path] = c.Value
		case models.OpUnset:
			unset[path] = ""
		case models.OpPush:
			push[path] = bson.M{"$each": c.Values}
		}
	}

	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	if len(push) > 0 {
		doc["$push"] = push
	}
	return doc
}

func targetFilter(target models.Target) bson.M {
	return bson.M{target.Kind.Field(): target.ID}
}

func objectIDs(ids []string) []primitive.ObjectID {
	return memoryIDs(ids)
}

// byID returns false when id cannot name any document.
func byID(id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid}, true
}

func findOne(ctx context.Context, coll *mongo.Collection, id, resource string, out interface{}) error {
	filter, ok := byID(id)
	if !ok {
		return apperr.NewNotFoundError(resource)
	}
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NewNotFoundError(resource)
	}
	return apperr.Store("find "+resource, err)
}

func updateOne(ctx context.Context, coll *mongo.Collection, id, resource string, u *models.Update, out interface{}) error {
	filter, ok := byID(id)
	if !ok {
		return apperr.NewNotFoundError(resource)
	}
	if u.Empty() {
		return findOne(ctx, coll, id, resource, out)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, filter, mongoUpdate(u), opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NewNotFoundError(resource)
	}
	return apperr.Store("update "+resource, err)
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id, resource string, out interface{}) error {
	filter, ok := byID(id)
	if !ok {
		return apperr.NewNotFoundError(resource)
	}
	err := coll.FindOneAndDelete(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NewNotFoundError(resource)
	}
	return apperr.Store("delete "+resource, err)
}

func deleteMany(ctx context.Context, coll *mongo.Collection, ids []string, resource string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, apperr.Store("delete "+resource+" items", err)
	}
	return res.DeletedCount, nil
}

type mongoSchedules struct{ m *Mongo }

func (s mongoSchedules) FindSchedules(ctx context.Context, target models.Target) ([]models.Schedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cur, err := s.m.schedules.Find(ctx, targetFilter(target), opts)
	if err != nil {
		return nil, apperr.Store("find schedule", err)
	}
	out := make([]models.Schedule, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Store("decode schedule", err)
	}
	return out, nil
}

func (s mongoSchedules) GetSchedule(ctx context.Context, id string) (models.Schedule, error) {
	var rec models.Schedule
	err := findOne(ctx, s.m.schedules, id, resourceSchedule, &rec)
	return rec, err
}

func (s mongoSchedules) CreateSchedule(ctx context.Context, rec models.Schedule) (models.Schedule, error) {
	rec.ID = primitive.NewObjectID()
	if _, err := s.m.schedules.InsertOne(ctx, rec); err != nil {
		return models.Schedule{}, apperr.Store("insert schedule", err)
	}
	return rec, nil
}

func (s mongoSchedules) UpdateSchedule(ctx context.Context, id string, u *models.Update) (models.Schedule, error) {
	var rec models.Schedule
	err := updateOne(ctx, s.m.schedules, id, resourceSchedule, u, &rec)
	return rec, err
}

func (s mongoSchedules) DeleteSchedule(ctx context.Context, id string) (models.Schedule, error) {
	var rec models.Schedule
	err := deleteOne(ctx, s.m.schedules, id, resourceSchedule, &rec)
	return rec, err
}

func (s mongoSchedules) DeleteSchedules(ctx context.Context, ids []string) (int64, error) {
	return deleteMany(ctx, s.m.schedules, ids, resourceSchedule)
}

type mongoHomework struct{ m *Mongo }

func (s mongoHomework) FindHomework(ctx context.Context, target models.Target) ([]models.Homework, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	cur, err := s.m.homework.Find(ctx, targetFilter(target), opts)
	if err != nil {
		return nil, apperr.Store("find homework", err)
	}
	out := make([]models.Homework, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Store("decode homework", err)
	}
	return out, nil
}

func (s mongoHomework) GetHomework(ctx context.Context, id string) (models.Homework, error) {
	var rec models.Homework
	err := findOne(ctx, s.m.homework, id, resourceHomework, &rec)
	return rec, err
}

func (s mongoHomework) CreateHomework(ctx context.Context, rec models.Homework) (models.Homework, error) {
	rec.ID = primitive.NewObjectID()
	if _, err := s.m.homework.InsertOne(ctx, rec); err != nil {
		return models.Homework{}, apperr.Store("insert homework", err)
	}
	return rec, nil
}

func (s mongoHomework) UpdateHomework(ctx context.Context, id string, u *models.Update) (models.Homework, error) {
	var rec models.Homework
	err := updateOne(ctx, s.m.homework, id, resourceHomework, u, &rec)
	return rec, err
}

func (s mongoHomework) DeleteHomework(ctx context.Context, id string) (models.Homework, error) {
	var rec models.Homework
	err := deleteOne(ctx, s.m.homework, id, resourceHomework, &rec)
	return rec, err
}

func (s mongoHomework) DeleteHomeworks(ctx context.Context, ids []string) (int64, error) {
	return deleteMany(ctx, s.m.homework, ids, resourceHomework)
}

type mongoGroups struct{ m *Mongo }

func (s mongoGroups) GetGroup(ctx context.Context, id string) (models.StudentGroup, error) {
	var g models.StudentGroup
	err := findOne(ctx, s.m.groups, id, resourceGroup, &g)
	return g, err
}

func (s mongoGroups) CreateGroup(ctx context.Context, g models.StudentGroup) (models.StudentGroup, error) {
	g.ID = primitive.NewObjectID()
	if g.Students == nil {
		g.Students = []string{}
	}
	if _, err := s.m.groups.InsertOne(ctx, g); err != nil {
		return models.StudentGroup{}, apperr.Store("insert group", err)
	}
	return g, nil
}
