package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is wrapped by store lookups that match no row. Callers test
// with errors.Is.
var ErrNotFound = errors.New("not found")

type SurveyStatus string

const (
	SurveyDraft     SurveyStatus = "draft"
	SurveyPublished SurveyStatus = "published"
	SurveyClosed    SurveyStatus = "closed"
)

type Survey struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      SurveyStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Section struct {
	ID          string `json:"id,omitempty"`
	SurveyID    string `json:"survey_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldDropdown FieldType = "dropdown"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
)

// HasOptions reports whether fields of this type carry a predefined option list.
func (t FieldType) HasOptions() bool {
	return t == FieldDropdown || t == FieldCheckbox || t == FieldRadio
}

type Field struct {
	ID        string    `json:"id,omitempty"`
	SectionID string    `json:"section_id,omitempty"`
	Label     string    `json:"label"`
	Type      FieldType `json:"field_type"`
	Required  bool      `json:"is_required"`
	Sensitive bool      `json:"is_sensitive"`
	Order     int       `json:"order"`
	// Set by the store whenever a FieldDependency targets this field.
	HasDependencies bool `json:"has_dependencies"`
}

type FieldOption struct {
	ID      string `json:"id,omitempty"`
	FieldID string `json:"field_id,omitempty"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Order   int    `json:"order"`
}

// Option is a label/value pair as rendered to respondents, either from a
// field's static FieldOption rows or from a dependency's option list.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
	OpIn          Operator = "in"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

type RuleAction string

const (
	ActionShow RuleAction = "show"
	ActionHide RuleAction = "hide"
)

// RuleTarget is the entity a conditional rule shows or hides: either a
// section or a field. The two cases are distinct types so a rule can never
// hold a dangling discriminator string.
type RuleTarget interface {
	TargetID() string
	targetType() string
}

type SectionTarget string

func (t SectionTarget) TargetID() string { return string(t) }
func (SectionTarget) targetType() string { return "section" }
func (t SectionTarget) String() string   { return "section " + string(t) }

type FieldTarget string

func (t FieldTarget) TargetID() string { return string(t) }
func (FieldTarget) targetType() string { return "field" }
func (t FieldTarget) String() string   { return "field " + string(t) }

// TargetType returns the wire/storage discriminator for a rule target.
func TargetType(t RuleTarget) string {
	return t.targetType()
}

// ParseTarget resolves a stored (type, id) pair into a RuleTarget.
func ParseTarget(targetType, targetID string) (RuleTarget, error) {
	switch targetType {
	case "section":
		return SectionTarget(targetID), nil
	case "field":
		return FieldTarget(targetID), nil
	default:
		return nil, fmt.Errorf("unknown rule target type %q", targetType)
	}
}

type ConditionalRule struct {
	ID            string     `json:"id,omitempty"`
	Target        RuleTarget `json:"-"`
	SourceFieldID string     `json:"source_field"`
	Operator      Operator   `json:"operator"`
	Value         string     `json:"value"`
	Action        RuleAction `json:"action"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}

type FieldDependency struct {
	ID               string    `json:"id,omitempty"`
	DependentFieldID string    `json:"dependent_field"`
	SourceFieldID    string    `json:"source_field"`
	SourceValue      string    `json:"source_value"`
	Options          []Option  `json:"dependent_options"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

type ResponseStatus string

const (
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
)

type SurveyResponse struct {
	ID            string         `json:"id"`
	SurveyID      string         `json:"survey_id"`
	Respondent    string         `json:"respondent,omitempty"`
	SessionToken  string         `json:"-"`
	Status        ResponseStatus `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	LastSectionID string         `json:"last_section,omitempty"`
	IPAddress     string         `json:"-"`
	UserAgent     string         `json:"-"`
}

// AnswerValue is the stored value of a FieldAnswer: plaintext for ordinary
// fields, ciphertext for sensitive ones. Exactly one case exists per answer.
type AnswerValue interface {
	isAnswerValue()
}

type PlainValue string

func (PlainValue) isAnswerValue() {}

type EncryptedValue []byte

func (EncryptedValue) isAnswerValue() {}

type FieldAnswer struct {
	ID         string      `json:"id"`
	ResponseID string      `json:"response_id"`
	FieldID    string      `json:"field_id"`
	Value      AnswerValue `json:"-"`
	AnsweredAt time.Time   `json:"answered_at"`
}

type Invitation struct {
	ID       string    `json:"id"`
	SurveyID string    `json:"survey_id"`
	Email    string    `json:"email"`
	SentAt   time.Time `json:"sent_at"`
}
