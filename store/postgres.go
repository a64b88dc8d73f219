package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

// Postgres keeps records in relational tables. The variant fields
// (attendance, grade, grades, answer) live in JSONB columns so their shape
// matches the document store.
type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Schedules() ScheduleStore { return pgSchedules{p} }
func (p *Postgres) Homework() HomeworkStore  { return pgHomework{p} }
func (p *Postgres) Groups() GroupStore       { return pgGroups{p} }

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Close()
}

type columnKind int

const (
	columnText columnKind = iota
	columnNullableText
	columnInt
	columnTime
	columnNullableTime
	columnJSON
	columnTextArray
)

type column struct {
	name string
	kind columnKind
}

var columns = map[string]column{
	models.FieldStudentID:   {"student_id", columnNullableText},
	models.FieldGroupID:     {"group_id", columnNullableText},
	models.FieldDay:         {"day", columnText},
	models.FieldDate:        {"date", columnTime},
	models.FieldTime:        {"time", columnText},
	models.FieldDuration:    {"duration", columnInt},
	models.FieldSubject:     {"subject", columnText},
	models.FieldDescription: {"description", columnText},
	models.FieldAttendance:  {"attendance", columnJSON},
	models.FieldUpdatedAt:   {"updated_at", columnTime},
	models.FieldDueDate:     {"due_date", columnTime},
	models.FieldFiles:       {"files", columnTextArray},
	models.FieldAnswer:      {"answer", columnJSON},
	models.FieldGrade:       {"grade", columnJSON},
	models.FieldGrades:      {"grades", columnJSON},
	models.FieldSentAt:      {"sent_at", columnNullableTime},
}

// sqlUpdate builds the SET clause for u. Changes to the same column are
// folded into a single nested expression since a column may be assigned only
// once per statement. Placeholders start at $2; $1 is the record id.
func sqlUpdate(u *models.Update) (string, []interface{}, error) {
	args := []interface{}{}
	param := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args)+1)
	}

	exprs := map[string]string{}
	var order []string

	for _, c := range u.Changes {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("no column for field %q", c.Field)
		}
		cur, seen := exprs[col.name]
		if !seen {
			cur = col.name
			order = append(order, col.name)
		}

		var next string
		switch {
		case c.Op == models.OpSet && c.Key == "":
			v, err := columnValue(col, c.Value)
			if err != nil {
				return "", nil, err
			}
			switch col.kind {
			case columnJSON:
				next = fmt.Sprintf("NULLIF(%s::jsonb, 'null'::jsonb)", param(v))
			case columnNullableText:
				next = fmt.Sprintf("NULLIF(%s, '')", param(v))
			default:
				next = param(v)
			}
		case c.Op == models.OpSet:
			if col.kind != columnJSON {
				return "", nil, fmt.Errorf("field %q is not a mapping", c.Field)
			}
			raw, err := json.Marshal(c.Value)
			if err != nil {
				return "", nil, err
			}
			next = fmt.Sprintf("jsonb_set(COALESCE(NULLIF(%s, 'null'::jsonb), '{}'::jsonb), ARRAY[%s::text], %s::jsonb, true)",
				cur, param(c.Key), param(string(raw)))
		case c.Op == models.OpUnset && c.Key == "":
			switch col.kind {
			case columnText:
				next = "''"
			case columnJSON, columnNullableText, columnNullableTime:
				next = "NULL"
			default:
				return "", nil, fmt.Errorf("field %q cannot be unset", c.Field)
			}
		case c.Op == models.OpUnset:
			if col.kind != columnJSON {
				return "", nil, fmt.Errorf("field %q is not a mapping", c.Field)
			}
			next = fmt.Sprintf("(%s - %s::text)", cur, param(c.Key))
		case c.Op == models.OpPush:
			switch col.kind {
			case columnJSON:
				raw, err := json.Marshal(c.Values)
				if err != nil {
					return "", nil, err
				}
				next = fmt.Sprintf("(COALESCE(%s, '[]'::jsonb) || %s::jsonb)", cur, param(string(raw)))
			case columnTextArray:
				values := make([]string, 0, len(c.Values))
				for _, v := range c.Values {
					s, ok := v.(string)
					if !ok {
						return "", nil, fmt.Errorf("unexpected value %T for field %q", v, c.Field)
					}
					values = append(values, s)
				}
				next = fmt.Sprintf("array_cat(%s, %s::text[])", cur, param(pq.Array(values)))
			default:
				return "", nil, fmt.Errorf("field %q is not a list", c.Field)
			}
		default:
			return "", nil, fmt.Errorf("unsupported op %d on field %q", c.Op, c.Field)
		}
		exprs[col.name] = next
	}

	assignments := make([]string, 0, len(order))
	for _, name := range order {
		assignments = append(assignments, name+" = "+exprs[name])
	}
	return strings.Join(assignments, ", "), args, nil
}

func columnValue(col column, v interface{}) (interface{}, error) {
	switch col.kind {
	case columnJSON:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case columnTextArray:
		values, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("unexpected value %T for column %s", v, col.name)
		}
		return pq.Array(values), nil
	default:
		return v, nil
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func jsonArg(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	return string(raw), nil
}

func decodeJSON(raw []byte, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func parseID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(s))
}

func pgIDs(ids []string) []string {
	oids := memoryIDs(ids)
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

// validID reports whether id could name a stored row.
func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func deleteRows(ctx context.Context, db *sql.DB, table string, ids []string, resource string) (int64, error) {
	hex := pgIDs(ids)
	if len(hex) == 0 {
		return 0, nil
	}
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ANY($1)`, pq.Array(hex))
	if err != nil {
		return 0, apperr.Store("delete "+resource+" items", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store("delete "+resource+" items", err)
	}
	return n, nil
}

const scheduleColumns = `id, student_id, group_id, day, date, time, duration, subject, description, attendance, created_at, updated_at`

type pgSchedules struct{ p *Postgres }

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var (
		s                  models.Schedule
		id                 string
		studentID, groupID sql.NullString
		attendance         []byte
	)
	err := row.Scan(&id, &studentID, &groupID, &s.Day, &s.Date, &s.Time, &s.Duration,
		&s.Subject, &s.Description, &attendance, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return models.Schedule{}, err
	}
	if s.ID, err = parseID(id); err != nil {
		return models.Schedule{}, err
	}
	s.StudentID, s.GroupID = studentID.String, groupID.String
	if err := decodeJSON(attendance, &s.Attendance); err != nil {
		return models.Schedule{}, err
	}
	return s, nil
}

func (s pgSchedules) FindSchedules(ctx context.Context, target models.Target) ([]models.Schedule, error) {
	col := columns[target.Kind.Field()].name
	rows, err := s.p.db.QueryContext(ctx, `
        SELECT `+scheduleColumns+`
        FROM schedules
        WHERE `+col+` = $1
        ORDER BY date, time, id
    `, target.ID)
	if err != nil {
		return nil, apperr.Store("find schedule", err)
	}
	defer rows.Close()

	out := make([]models.Schedule, 0)
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, apperr.Store("scan schedule", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("find schedule", err)
	}
	return out, nil
}

func (s pgSchedules) GetSchedule(ctx context.Context, id string) (models.Schedule, error) {
	if !validID(id) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	rec, err := scanSchedule(s.p.db.QueryRowContext(ctx, `
        SELECT `+scheduleColumns+` FROM schedules WHERE id = $1
    `, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	return rec, apperr.Store("find schedule", err)
}

func (s pgSchedules) CreateSchedule(ctx context.Context, rec models.Schedule) (models.Schedule, error) {
	rec.ID = primitive.NewObjectID()
	attendance, err := jsonArg(rec.Attendance)
	if err != nil {
		return models.Schedule{}, apperr.Store("insert schedule", err)
	}
	_, err = s.p.db.ExecContext(ctx, `
        INSERT INTO schedules (`+scheduleColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, rec.ID.Hex(), nullString(rec.StudentID), nullString(rec.GroupID), rec.Day, rec.Date, rec.Time,
		rec.Duration, rec.Subject, rec.Description, attendance, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return models.Schedule{}, apperr.Store("insert schedule", err)
	}
	return rec, nil
}

func (s pgSchedules) UpdateSchedule(ctx context.Context, id string, u *models.Update) (models.Schedule, error) {
	if u.Empty() {
		return s.GetSchedule(ctx, id)
	}
	if !validID(id) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	set, args, err := sqlUpdate(u)
	if err != nil {
		return models.Schedule{}, apperr.Store("update schedule", err)
	}
	rec, err := scanSchedule(s.p.db.QueryRowContext(ctx,
		`UPDATE schedules SET `+set+` WHERE id = $1 RETURNING `+scheduleColumns,
		append([]interface{}{id}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	return rec, apperr.Store("update schedule", err)
}

func (s pgSchedules) DeleteSchedule(ctx context.Context, id string) (models.Schedule, error) {
	if !validID(id) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	rec, err := scanSchedule(s.p.db.QueryRowContext(ctx,
		`DELETE FROM schedules WHERE id = $1 RETURNING `+scheduleColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedule{}, apperr.NewNotFoundError(resourceSchedule)
	}
	return rec, apperr.Store("delete schedule", err)
}

func (s pgSchedules) DeleteSchedules(ctx context.Context, ids []string) (int64, error) {
	return deleteRows(ctx, s.p.db, "schedules", ids, resourceSchedule)
}

const homeworkColumns = `id, student_id, group_id, day, due_date, files, answer, grade, grades, uploaded_at, sent_at`

type pgHomework struct{ p *Postgres }

func scanHomework(row rowScanner) (models.Homework, error) {
	var (
		h                     models.Homework
		id                    string
		studentID, groupID    sql.NullString
		answer, grade, grades []byte
		sentAt                sql.NullTime
	)
	h.Files = []string{}
	err := row.Scan(&id, &studentID, &groupID, &h.Day, &h.DueDate, pq.Array(&h.Files),
		&answer, &grade, &grades, &h.UploadedAt, &sentAt)
	if err != nil {
		return models.Homework{}, err
	}
	if h.ID, err = parseID(id); err != nil {
		return models.Homework{}, err
	}
	h.StudentID, h.GroupID = studentID.String, groupID.String
	if h.Files == nil {
		h.Files = []string{}
	}
	h.Answer = []models.HomeworkAnswer{}
	if err := decodeJSON(answer, &h.Answer); err != nil {
		return models.Homework{}, err
	}
	if err := decodeJSON(grade, &h.Grade); err != nil {
		return models.Homework{}, err
	}
	if err := decodeJSON(grades, &h.Grades); err != nil {
		return models.Homework{}, err
	}
	if sentAt.Valid {
		h.SentAt = &sentAt.Time
	}
	return h, nil
}

func (s pgHomework) FindHomework(ctx context.Context, target models.Target) ([]models.Homework, error) {
	col := columns[target.Kind.Field()].name
	rows, err := s.p.db.QueryContext(ctx, `
        SELECT `+homeworkColumns+`
        FROM homework
        WHERE `+col+` = $1
        ORDER BY due_date, id
    `, target.ID)
	if err != nil {
		return nil, apperr.Store("find homework", err)
	}
	defer rows.Close()

	out := make([]models.Homework, 0)
	for rows.Next() {
		rec, err := scanHomework(rows)
		if err != nil {
			return nil, apperr.Store("scan homework", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("find homework", err)
	}
	return out, nil
}

func (s pgHomework) GetHomework(ctx context.Context, id string) (models.Homework, error) {
	if !validID(id) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	rec, err := scanHomework(s.p.db.QueryRowContext(ctx, `
        SELECT `+homeworkColumns+` FROM homework WHERE id = $1
    `, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	return rec, apperr.Store("find homework", err)
}

func (s pgHomework) CreateHomework(ctx context.Context, rec models.Homework) (models.Homework, error) {
	rec.ID = primitive.NewObjectID()
	if rec.Files == nil {
		rec.Files = []string{}
	}
	if rec.Answer == nil {
		rec.Answer = []models.HomeworkAnswer{}
	}
	answer, err := json.Marshal(rec.Answer)
	if err != nil {
		return models.Homework{}, apperr.Store("insert homework", err)
	}
	grade, err := jsonArg(rec.Grade)
	if err != nil {
		return models.Homework{}, apperr.Store("insert homework", err)
	}
	var grades interface{}
	if rec.Grades != nil {
		if grades, err = jsonArg(rec.Grades); err != nil {
			return models.Homework{}, apperr.Store("insert homework", err)
		}
	}
	var sentAt sql.NullTime
	if rec.SentAt != nil {
		sentAt = sql.NullTime{Time: *rec.SentAt, Valid: true}
	}
	_, err = s.p.db.ExecContext(ctx, `
        INSERT INTO homework (`+homeworkColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, rec.ID.Hex(), nullString(rec.StudentID), nullString(rec.GroupID), rec.Day, rec.DueDate,
		pq.Array(rec.Files), string(answer), grade, grades, rec.UploadedAt, sentAt)
	if err != nil {
		return models.Homework{}, apperr.Store("insert homework", err)
	}
	return rec, nil
}

func (s pgHomework) UpdateHomework(ctx context.Context, id string, u *models.Update) (models.Homework, error) {
	if u.Empty() {
		return s.GetHomework(ctx, id)
	}
	if !validID(id) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	set, args, err := sqlUpdate(u)
	if err != nil {
		return models.Homework{}, apperr.Store("update homework", err)
	}
	rec, err := scanHomework(s.p.db.QueryRowContext(ctx,
		`UPDATE homework SET `+set+` WHERE id = $1 RETURNING `+homeworkColumns,
		append([]interface{}{id}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	return rec, apperr.Store("update homework", err)
}

func (s pgHomework) DeleteHomework(ctx context.Context, id string) (models.Homework, error) {
	if !validID(id) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	rec, err := scanHomework(s.p.db.QueryRowContext(ctx,
		`DELETE FROM homework WHERE id = $1 RETURNING `+homeworkColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Homework{}, apperr.NewNotFoundError(resourceHomework)
	}
	return rec, apperr.Store("delete homework", err)
}

func (s pgHomework) DeleteHomeworks(ctx context.Context, ids []string) (int64, error) {
	return deleteRows(ctx, s.p.db, "homework", ids, resourceHomework)
}

type pgGroups struct{ p *Postgres }

func (s pgGroups) GetGroup(ctx context.Context, id string) (models.StudentGroup, error) {
	if !validID(id) {
		return models.StudentGroup{}, apperr.NewNotFoundError(resourceGroup)
	}
	var (
		g   models.StudentGroup
		hex string
	)
	g.Students = []string{}
	err := s.p.db.QueryRowContext(ctx, `
        SELECT id, name, students FROM student_groups WHERE id = $1
    `, id).Scan(&hex, &g.Name, pq.Array(&g.Students))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StudentGroup{}, apperr.NewNotFoundError(resourceGroup)
	}
	if err != nil {
		return models.StudentGroup{}, apperr.Store("find group", err)
	}
	if g.ID, err = parseID(hex); err != nil {
		return models.StudentGroup{}, apperr.Store("find group", err)
	}
	if g.Students == nil {
		g.Students = []string{}
	}
	return g, nil
}

func (s pgGroups) CreateGroup(ctx context.Context, g models.StudentGroup) (models.StudentGroup, error) {
	g.ID = primitive.NewObjectID()
	if g.Students == nil {
		g.Students = []string{}
	}
	_, err := s.p.db.ExecContext(ctx, `
        INSERT INTO student_groups (id, name, students)
        VALUES ($1, $2, $3)
    `, g.ID.Hex(), g.Name, pq.Array(g.Students))
	if err != nil {
		return models.StudentGroup{}, apperr.Store("insert group", err)
	}
	return g, nil
}
