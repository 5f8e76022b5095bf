package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Taycode/survey-app-api/model"
)

func (s *Store) CreateResponse(ctx context.Context, resp model.SurveyResponse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO survey_responses
			(id, survey_id, respondent, session_token, status, started_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.SurveyID, nullable(resp.Respondent), resp.SessionToken,
		resp.Status, resp.StartedAt, resp.IPAddress, resp.UserAgent,
	)
	return err
}

const responseColumns = `
	id, survey_id, COALESCE(respondent, ''), session_token, status,
	started_at, completed_at, COALESCE(last_section_id, ''), ip_address, user_agent`

func (s *Store) ResponseByToken(ctx context.Context, token string) (model.SurveyResponse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+responseColumns+`
		FROM survey_responses WHERE session_token = ?`,
		token,
	)
	resp, err := scanResponse(row)
	return resp, scanErr(err, "session", token)
}

func (s *Store) ResponseByID(ctx context.Context, id string) (model.SurveyResponse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+responseColumns+`
		FROM survey_responses WHERE id = ?`,
		id,
	)
	resp, err := scanResponse(row)
	return resp, scanErr(err, "response", id)
}

// ResponsesBySurvey lists a survey's responses, newest first, optionally
// filtered by status.
func (s *Store) ResponsesBySurvey(ctx context.Context, surveyID string, status model.ResponseStatus) ([]model.SurveyResponse, error) {
	query := `
		SELECT` + responseColumns + `
		FROM survey_responses WHERE survey_id = ?`
	args := []any{surveyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.SurveyResponse{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResponse(row scanner) (model.SurveyResponse, error) {
	var (
		resp        model.SurveyResponse
		completedAt sql.NullTime
	)
	err := row.Scan(&resp.ID, &resp.SurveyID, &resp.Respondent, &resp.SessionToken,
		&resp.Status, &resp.StartedAt, &completedAt, &resp.LastSectionID,
		&resp.IPAddress, &resp.UserAgent)
	if err != nil {
		return model.SurveyResponse{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		resp.CompletedAt = &t
	}
	return resp, nil
}

func (s *Store) SetLastSection(ctx context.Context, responseID, sectionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE survey_responses SET last_section_id = ? WHERE id = ?`,
		sectionID, responseID,
	)
	if err != nil {
		return err
	}
	return verifyHit(res, "response", responseID)
}

// CompleteResponse flips the response to completed and stamps the time.
// Guarding on status here makes the transition atomic under concurrent
// finish calls: only one of them hits a row.
func (s *Store) CompleteResponse(ctx context.Context, responseID string) (model.SurveyResponse, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE survey_responses SET status = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		model.ResponseCompleted, now, responseID, model.ResponseInProgress,
	)
	if err != nil {
		return model.SurveyResponse{}, err
	}
	if err = verifyHit(res, "response", responseID); err != nil {
		return model.SurveyResponse{}, err
	}
	return s.ResponseByID(ctx, responseID)
}

// SaveAnswer upserts the answer for (response, field). Sensitive non-empty
// values are encrypted; an encryption failure aborts the save. The unique
// key on (response_id, field_id) is the serialization point for duplicate
// submissions of the same session.
func (s *Store) SaveAnswer(ctx context.Context, responseID string, field model.Field, value string) error {
	id, err := newID()
	if err != nil {
		return err
	}

	var (
		plain     sql.NullString
		encrypted []byte
	)
	if field.Sensitive && value != "" {
		encrypted, err = s.enc.Encrypt(value)
		if err != nil {
			return err
		}
	} else {
		plain = sql.NullString{String: value, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO field_answers (id, response_id, field_id, value, encrypted_value, answered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (response_id, field_id) DO UPDATE SET
			value = excluded.value,
			encrypted_value = excluded.encrypted_value,
			answered_at = excluded.answered_at`,
		id, responseID, field.ID, plain, encrypted, time.Now().UTC(),
	)
	return err
}

func (s *Store) AnswersByResponse(ctx context.Context, responseID string) ([]model.FieldAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, response_id, field_id, value, encrypted_value, answered_at
		FROM field_answers WHERE response_id = ?`,
		responseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.FieldAnswer{}
	for rows.Next() {
		var (
			a         model.FieldAnswer
			plain     sql.NullString
			encrypted []byte
		)
		err = rows.Scan(&a.ID, &a.ResponseID, &a.FieldID, &plain, &encrypted, &a.AnsweredAt)
		if err != nil {
			return nil, err
		}
		if len(encrypted) > 0 {
			a.Value = model.EncryptedValue(encrypted)
		} else {
			a.Value = model.PlainValue(plain.String)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *Store) AnsweredSectionIDs(ctx context.Context, responseID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT f.section_id
		FROM field_answers a
		INNER JOIN fields f ON (a.field_id = f.id)
		WHERE a.response_id = ?`,
		responseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := map[string]bool{}
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		sections[id] = true
	}
	return sections, rows.Err()
}

// ResponseStats aggregates per-survey counters for the analytics service.
type ResponseStats struct {
	Total          int
	Completed      int
	InProgress     int
	AvgCompletion  sql.NullFloat64
	LastResponseAt sql.NullTime
}

func (s *Store) ResponseStatsBySurvey(ctx context.Context, surveyID string) (ResponseStats, error) {
	var stats ResponseStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END),
			AVG(CASE WHEN completed_at IS NOT NULL
				THEN (julianday(completed_at) - julianday(started_at)) * 86400 END),
			MAX(started_at)
		FROM survey_responses WHERE survey_id = ?`,
		surveyID,
	).Scan(&stats.Total, &stats.Completed, &stats.InProgress, &stats.AvgCompletion, &stats.LastResponseAt)
	return stats, err
}

func (s *Store) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	id, err := newID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, survey_id, email, sent_at)
		VALUES (?, ?, ?, ?)`,
		id, inv.SurveyID, inv.Email, now,
	)
	if err != nil {
		return err
	}
	inv.ID = id
	inv.SentAt = now
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
