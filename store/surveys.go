package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Taycode/survey-app-api/model"
)

func (s *Store) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	id, err := newID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO surveys (id, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, survey.Title, survey.Description, model.SurveyDraft, now, now,
	)
	if err != nil {
		return err
	}
	survey.ID = id
	survey.Status = model.SurveyDraft
	survey.CreatedAt = now
	survey.UpdatedAt = now
	return nil
}

func (s *Store) SurveyByID(ctx context.Context, id string) (model.Survey, error) {
	var survey model.Survey
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, created_at, updated_at
		FROM surveys WHERE id = ?`,
		id,
	).Scan(&survey.ID, &survey.Title, &survey.Description, &survey.Status, &survey.CreatedAt, &survey.UpdatedAt)
	return survey, scanErr(err, "survey", id)
}

func (s *Store) Surveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, created_at, updated_at
		FROM surveys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		var survey model.Survey
		err = rows.Scan(&survey.ID, &survey.Title, &survey.Description, &survey.Status, &survey.CreatedAt, &survey.UpdatedAt)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (s *Store) UpdateSurvey(ctx context.Context, survey model.Survey) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE surveys SET title = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		survey.Title, survey.Description, time.Now().UTC(), survey.ID,
	)
	if err != nil {
		return err
	}
	return verifyHit(res, "survey", survey.ID)
}

// SetSurveyStatus drives the draft -> published -> closed lifecycle. The
// allowed transition is checked by the caller.
func (s *Store) SetSurveyStatus(ctx context.Context, id string, status model.SurveyStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE surveys SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return verifyHit(res, "survey", id)
}

func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return verifyHit(res, "survey", id)
}

func (s *Store) CreateSection(ctx context.Context, section *model.Section) error {
	id, err := newID()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sections (id, survey_id, title, description, ord)
		VALUES (?, ?, ?, ?, ?)`,
		id, section.SurveyID, section.Title, section.Description, section.Order,
	)
	if err != nil {
		return err
	}
	section.ID = id
	return nil
}

func (s *Store) SectionByID(ctx context.Context, id string) (model.Section, error) {
	var section model.Section
	err := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, title, description, ord
		FROM sections WHERE id = ?`,
		id,
	).Scan(&section.ID, &section.SurveyID, &section.Title, &section.Description, &section.Order)
	return section, scanErr(err, "section", id)
}

func (s *Store) SectionsBySurvey(ctx context.Context, surveyID string) ([]model.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, title, description, ord
		FROM sections WHERE survey_id = ? ORDER BY ord`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		var section model.Section
		err = rows.Scan(&section.ID, &section.SurveyID, &section.Title, &section.Description, &section.Order)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

func (s *Store) UpdateSection(ctx context.Context, section model.Section) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sections SET title = ?, description = ?, ord = ? WHERE id = ?`,
		section.Title, section.Description, section.Order, section.ID,
	)
	if err != nil {
		return err
	}
	return verifyHit(res, "section", section.ID)
}

func (s *Store) DeleteSection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return verifyHit(res, "section", id)
}

func (s *Store) CreateField(ctx context.Context, field *model.Field) error {
	id, err := newID()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fields (id, section_id, label, field_type, required, sensitive, ord, has_dependencies)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		id, field.SectionID, field.Label, field.Type, field.Required, field.Sensitive, field.Order,
	)
	if err != nil {
		return err
	}
	field.ID = id
	field.HasDependencies = false
	return nil
}

func (s *Store) FieldByID(ctx context.Context, id string) (model.Field, error) {
	var field model.Field
	err := s.db.QueryRowContext(ctx, `
		SELECT id, section_id, label, field_type, required, sensitive, ord, has_dependencies
		FROM fields WHERE id = ?`,
		id,
	).Scan(&field.ID, &field.SectionID, &field.Label, &field.Type,
		&field.Required, &field.Sensitive, &field.Order, &field.HasDependencies)
	return field, scanErr(err, "field", id)
}

func (s *Store) FieldsBySection(ctx context.Context, sectionID string) ([]model.Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section_id, label, field_type, required, sensitive, ord, has_dependencies
		FROM fields WHERE section_id = ? ORDER BY ord`,
		sectionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []model.Field{}
	for rows.Next() {
		var field model.Field
		err = rows.Scan(&field.ID, &field.SectionID, &field.Label, &field.Type,
			&field.Required, &field.Sensitive, &field.Order, &field.HasDependencies)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

func (s *Store) UpdateField(ctx context.Context, field model.Field) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fields SET label = ?, field_type = ?, required = ?, sensitive = ?, ord = ?
		WHERE id = ?`,
		field.Label, field.Type, field.Required, field.Sensitive, field.Order, field.ID,
	)
	if err != nil {
		return err
	}
	return verifyHit(res, "field", field.ID)
}

func (s *Store) DeleteField(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fields WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return verifyHit(res, "field", id)
}

func (s *Store) CreateOption(ctx context.Context, opt *model.FieldOption) error {
	id, err := newID()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO field_options (id, field_id, label, value, ord)
		VALUES (?, ?, ?, ?, ?)`,
		id, opt.FieldID, opt.Label, opt.Value, opt.Order,
	)
	if err != nil {
		return err
	}
	opt.ID = id
	return nil
}

func (s *Store) OptionsByField(ctx context.Context, fieldID string) ([]model.FieldOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, field_id, label, value, ord
		FROM field_options WHERE field_id = ? ORDER BY ord`,
		fieldID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []model.FieldOption{}
	for rows.Next() {
		var opt model.FieldOption
		err = rows.Scan(&opt.ID, &opt.FieldID, &opt.Label, &opt.Value, &opt.Order)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (s *Store) DeleteOption(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM field_options WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return verifyHit(res, "field option", id)
}

func (s *Store) CreateRule(ctx context.Context, rule *model.ConditionalRule) error {
	id, err := newID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conditional_rules (id, target_type, target_id, source_field_id, operator, value, action, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, model.TargetType(rule.Target), rule.Target.TargetID(),
		rule.SourceFieldID, rule.Operator, rule.Value, rule.Action, now,
	)
	if err != nil {
		return err
	}
	rule.ID = id
	rule.CreatedAt = now
	return nil
}

// RulesBySurvey returns the survey's rules for one target type, ordered by
// creation so visibility folding is deterministic: the later-created of two
// conflicting rules wins.
func (s *Store) RulesBySurvey(ctx context.Context, surveyID, targetType string) ([]model.ConditionalRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.target_type, r.target_id, r.source_field_id, r.operator, r.value, r.action, r.created_at
		FROM conditional_rules r
		INNER JOIN fields f ON (r.source_field_id = f.id)
		INNER JOIN sections sec ON (f.section_id = sec.id)
		WHERE sec.survey_id = ? AND r.target_type = ?
		ORDER BY r.created_at, r.id`,
		surveyID, targetType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *Store) RuleByID(ctx context.Context, id string) (model.ConditionalRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_type, target_id, source_field_id, operator, value, action, created_at
		FROM conditional_rules WHERE id = ?`,
		id,
	)
	if err != nil {
		return model.ConditionalRule{}, err
	}
	defer rows.Close()

	rules, err := scanRules(rows)
	if err != nil {
		return model.ConditionalRule{}, err
	}
	if len(rules) == 0 {
		return model.ConditionalRule{}, notFound("rule", id)
	}
	return rules[0], nil
}

func scanRules(rows rowScanner) ([]model.ConditionalRule, error) {
	rules := []model.ConditionalRule{}
	for rows.Next() {
		var (
			rule               model.ConditionalRule
			targetType, target string
		)
		err := rows.Scan(&rule.ID, &targetType, &target,
			&rule.SourceFieldID, &rule.Operator, &rule.Value, &rule.Action, &rule.CreatedAt)
		if err != nil {
			return nil, err
		}
		rule.Target, err = model.ParseTarget(targetType, target)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conditional_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return verifyHit(res, "rule", id)
}

// CreateDependency inserts a dependency row and flips the dependent field's
// has_dependencies flag in the same transaction.
func (s *Store) CreateDependency(ctx context.Context, dep *model.FieldDependency) error {
	id, err := newID()
	if err != nil {
		return err
	}
	optionsJSON, err := json.Marshal(dep.Options)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO field_dependencies (id, dependent_field_id, source_field_id, source_value, options, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, dep.DependentFieldID, dep.SourceFieldID, dep.SourceValue, string(optionsJSON), now,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE fields SET has_dependencies = 1 WHERE id = ?`,
		dep.DependentFieldID,
	)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	dep.ID = id
	dep.CreatedAt = now
	return nil
}

func (s *Store) DependenciesByField(ctx context.Context, fieldID string) ([]model.FieldDependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dependent_field_id, source_field_id, source_value, options, created_at
		FROM field_dependencies WHERE dependent_field_id = ?
		ORDER BY created_at, id`,
		fieldID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deps := []model.FieldDependency{}
	for rows.Next() {
		var (
			dep         model.FieldDependency
			optionsJSON string
		)
		err = rows.Scan(&dep.ID, &dep.DependentFieldID, &dep.SourceFieldID,
			&dep.SourceValue, &optionsJSON, &dep.CreatedAt)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(optionsJSON), &dep.Options); err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

// DeleteDependency removes a dependency row and clears the field's
// has_dependencies flag when it was the last one.
func (s *Store) DeleteDependency(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var fieldID string
	err = tx.QueryRowContext(ctx, `
		SELECT dependent_field_id FROM field_dependencies WHERE id = ?`,
		id,
	).Scan(&fieldID)
	if err != nil {
		return scanErr(err, "dependency", id)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM field_dependencies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE fields SET has_dependencies = EXISTS (
			SELECT 1 FROM field_dependencies WHERE dependent_field_id = ?
		) WHERE id = ?`,
		fieldID, fieldID,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}
