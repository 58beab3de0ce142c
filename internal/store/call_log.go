package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type CallLog struct {
	ID              uuid.UUID      `db:"id"`
	CallSID         string         `db:"call_sid"`
	StreamSID       string         `db:"stream_sid"`
	Engine          string         `db:"engine"`
	VerifiedPatient sql.NullInt64  `db:"verified_patient"`
	Outcome         sql.NullString `db:"outcome"`
	StartedAt       string         `db:"started_at"`
	EndedAt         sql.NullString `db:"ended_at"`
}

const sqlInsertCallLog = `
INSERT INTO call_logs (call_sid, stream_sid, engine)
VALUES ($1, $2, $3)
RETURNING id, call_sid, stream_sid, engine, verified_patient, outcome, started_at, ended_at`

func (s *Store) InsertCallLog(ctx context.Context, callSID, streamSID, engine string) (*CallLog, error) {
	var log CallLog
	err := s.db.GetContext(ctx, &log, sqlInsertCallLog, callSID, streamSID, engine)
	if err != nil {
		s.logger.Error(ctx, "failed to insert call log", err)
		return nil, fmt.Errorf("failed to insert call log: %w", err)
	}
	return &log, nil
}

const sqlFinishCallLog = `
UPDATE call_logs
SET ended_at = NOW(), verified_patient = $2, outcome = $3
WHERE id = $1`

func (s *Store) FinishCallLog(ctx context.Context, id uuid.UUID, verifiedPatient sql.NullInt64, outcome string) error {
	_, err := s.db.ExecContext(ctx, sqlFinishCallLog, id, verifiedPatient, outcome)
	if err != nil {
		s.logger.Error(ctx, "failed to finish call log", err)
		return fmt.Errorf("failed to finish call log: %w", err)
	}
	return nil
}

const sqlGetRecentCallLogs = `
SELECT * FROM call_logs ORDER BY started_at DESC LIMIT $1`

func (s *Store) GetRecentCallLogs(ctx context.Context, limit int) ([]CallLog, error) {
	var logs []CallLog
	err := s.db.SelectContext(ctx, &logs, sqlGetRecentCallLogs, limit)
	if err != nil {
		s.logger.Error(ctx, "failed to get recent call logs", err)
		return nil, fmt.Errorf("failed to get recent call logs: %w", err)
	}
	return logs, nil
}
