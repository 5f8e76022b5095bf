package engine

import (
	"context"
	"errors"
	"time"

	"github.com/Taycode/survey-app-api/model"
	"github.com/gofrs/uuid"
)

// StartInfo carries respondent metadata captured when a session begins.
type StartInfo struct {
	Respondent string
	IPAddress  string
	UserAgent  string
}

// SubmitResult is the outcome of a clean section submission.
type SubmitResult struct {
	IsComplete bool     `json:"is_complete"`
	Progress   Progress `json:"progress"`
}

// Start opens a new response session against a published survey and returns
// it with a fresh opaque session token. Any other survey status, or an
// unknown survey, yields ErrSurveyNotOpen.
func (e *Engine) Start(ctx context.Context, surveyID string, info StartInfo) (model.SurveyResponse, error) {
	survey, err := e.store.SurveyByID(ctx, surveyID)
	if errors.Is(err, model.ErrNotFound) {
		return model.SurveyResponse{}, ErrSurveyNotOpen
	}
	if err != nil {
		return model.SurveyResponse{}, err
	}
	if survey.Status != model.SurveyPublished {
		return model.SurveyResponse{}, ErrSurveyNotOpen
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.SurveyResponse{}, err
	}
	token, err := uuid.NewV4()
	if err != nil {
		return model.SurveyResponse{}, err
	}

	resp := model.SurveyResponse{
		ID:           id.String(),
		SurveyID:     survey.ID,
		Respondent:   info.Respondent,
		SessionToken: token.String(),
		Status:       model.ResponseInProgress,
		StartedAt:    time.Now().UTC(),
		IPAddress:    info.IPAddress,
		UserAgent:    info.UserAgent,
	}
	if err := e.store.CreateResponse(ctx, resp); err != nil {
		return model.SurveyResponse{}, err
	}
	return resp, nil
}

// Resume looks up the response session for a presented token.
func (e *Engine) Resume(ctx context.Context, token string) (model.SurveyResponse, error) {
	resp, err := e.store.ResponseByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.SurveyResponse{}, ErrNoSession
	}
	return resp, err
}

// SubmitSection validates and saves one section's answers for an in-progress
// response. On validation failure the error map comes back with a nil
// result; on success the result reports updated progress and whether every
// visible section now has answers.
func (e *Engine) SubmitSection(ctx context.Context, resp model.SurveyResponse, sectionID string, answers []AnswerInput) (*SubmitResult, map[string]string, error) {
	if resp.Status != model.ResponseInProgress {
		return nil, nil, ErrNotInProgress
	}

	section, err := e.store.SectionByID(ctx, sectionID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, ErrNoSection
	}
	if err != nil {
		return nil, nil, err
	}
	if section.SurveyID != resp.SurveyID {
		return nil, nil, ErrNoSection
	}

	ok, errs, err := e.ValidateAndApply(ctx, section, answers, resp)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, errs, nil
	}

	progress, err := e.Progress(ctx, resp)
	if err != nil {
		return nil, nil, err
	}
	current, err := e.CurrentSection(ctx, resp)
	if err != nil {
		return nil, nil, err
	}
	return &SubmitResult{IsComplete: current.IsComplete, Progress: progress}, nil, nil
}

// Finish transitions an in-progress response to completed and stamps the
// completion time. A second call fails with ErrNotInProgress; finish is
// deliberately not idempotent.
func (e *Engine) Finish(ctx context.Context, resp model.SurveyResponse) (model.SurveyResponse, error) {
	if resp.Status != model.ResponseInProgress {
		return model.SurveyResponse{}, ErrNotInProgress
	}
	return e.store.CompleteResponse(ctx, resp.ID)
}
