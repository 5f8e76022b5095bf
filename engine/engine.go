// Package engine implements the conditional logic and submission flow:
// rule evaluation, section/field visibility, dependent option filtering,
// section validation, progress tracking and the response lifecycle.
//
// The engine is stateless: every operation loads answers and rules fresh
// from the store, so concurrent sessions need no coordination beyond the
// store's atomic answer upsert.
package engine

import (
	"context"
	"errors"

	"github.com/Taycode/survey-app-api/model"
)

var (
	// ErrNoSession means the session token does not match any response.
	ErrNoSession = errors.New("session not found")
	// ErrNoSection means the section does not exist in the response's survey.
	ErrNoSection = errors.New("section not found")
	// ErrSurveyNotOpen means the survey is absent or not published.
	ErrSurveyNotOpen = errors.New("survey not found or not published")
	// ErrNotInProgress means the response was already completed.
	ErrNotInProgress = errors.New("survey response is not in progress")
)

// Store is the persistence surface the engine depends on. *store.Store
// implements it; tests use an in-memory fake.
type Store interface {
	SurveyByID(ctx context.Context, id string) (model.Survey, error)
	SectionsBySurvey(ctx context.Context, surveyID string) ([]model.Section, error)
	SectionByID(ctx context.Context, id string) (model.Section, error)
	FieldsBySection(ctx context.Context, sectionID string) ([]model.Field, error)
	OptionsByField(ctx context.Context, fieldID string) ([]model.FieldOption, error)
	// RulesBySurvey returns every conditional rule whose source field belongs
	// to the survey and whose target is of the given type, in creation order.
	RulesBySurvey(ctx context.Context, surveyID, targetType string) ([]model.ConditionalRule, error)
	// DependenciesByField returns dependency rows in creation order.
	DependenciesByField(ctx context.Context, fieldID string) ([]model.FieldDependency, error)

	CreateResponse(ctx context.Context, resp model.SurveyResponse) error
	ResponseByToken(ctx context.Context, token string) (model.SurveyResponse, error)
	SetLastSection(ctx context.Context, responseID, sectionID string) error
	CompleteResponse(ctx context.Context, responseID string) (model.SurveyResponse, error)

	AnswersByResponse(ctx context.Context, responseID string) ([]model.FieldAnswer, error)
	// SaveAnswer upserts the answer for (response, field), encrypting the
	// value when the field is sensitive.
	SaveAnswer(ctx context.Context, responseID string, field model.Field, value string) error
	// AnsweredSectionIDs returns the sections having at least one answer.
	AnsweredSectionIDs(ctx context.Context, responseID string) (map[string]bool, error)
}

// Decrypter recovers the plaintext of an encrypted answer value.
type Decrypter interface {
	Decrypt(data []byte) (string, error)
}

type Engine struct {
	store Store
	dec   Decrypter
}

func New(store Store, dec Decrypter) *Engine {
	return &Engine{store: store, dec: dec}
}
