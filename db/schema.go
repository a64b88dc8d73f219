package db

import (
	"context"
	"database/sql"
	"fmt"
)

const Schema = `
-- Create schedules table
CREATE TABLE IF NOT EXISTS schedules (
    id CHAR(24) PRIMARY KEY,
    student_id VARCHAR(64),
    group_id VARCHAR(64),
    day VARCHAR(16) NOT NULL DEFAULT '',
    date TIMESTAMPTZ NOT NULL,
    time VARCHAR(16) NOT NULL DEFAULT '',
    duration INTEGER NOT NULL CHECK (duration >= 30),
    subject VARCHAR(255) NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    attendance JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (student_id IS NOT NULL OR group_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS schedules_student_idx ON schedules (student_id, date, time);
CREATE INDEX IF NOT EXISTS schedules_group_idx ON schedules (group_id, date, time);

-- Create homework table
CREATE TABLE IF NOT EXISTS homework (
    id CHAR(24) PRIMARY KEY,
    student_id VARCHAR(64),
    group_id VARCHAR(64),
    day VARCHAR(16) NOT NULL DEFAULT '',
    due_date TIMESTAMPTZ NOT NULL,
    files TEXT[] NOT NULL DEFAULT '{}',
    answer JSONB NOT NULL DEFAULT '[]',
    grade JSONB,
    grades JSONB,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at TIMESTAMPTZ,
    CHECK (student_id IS NOT NULL OR group_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS homework_student_idx ON homework (student_id, due_date);
CREATE INDEX IF NOT EXISTS homework_group_idx ON homework (group_id, due_date);

-- Create student_groups table
CREATE TABLE IF NOT EXISTS student_groups (
    id CHAR(24) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    students TEXT[] NOT NULL DEFAULT '{}'
);
`

// InitSchema initializes the database schema
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("error initializing database schema: %w", err)
	}
	return nil
}
