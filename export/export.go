// Package export renders a survey's responses as CSV or JSON and hands the
// result to a delivery collaborator, normally off the request path.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Taycode/survey-app-api/engine"
	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/model"
	"github.com/Taycode/survey-app-api/store"
)

// Delivery receives a finished export file. Implementations may mail it,
// upload it, or drop it on disk.
type Delivery interface {
	Deliver(ctx context.Context, filename, contentType string, content []byte) error
}

// DirDelivery writes export files into a local directory.
type DirDelivery struct {
	Dir string
}

func (d DirDelivery) Deliver(_ context.Context, filename, _ string, content []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.Dir, filename), content, 0o644)
}

type Exporter struct {
	store  *store.Store
	engine *engine.Engine
}

func New(st *store.Store, eng *engine.Engine) *Exporter {
	return &Exporter{store: st, engine: eng}
}

// File is one rendered export.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Render produces the export synchronously. Format is "csv" or "json".
func (e *Exporter) Render(ctx context.Context, surveyID, format string) (File, error) {
	survey, err := e.store.SurveyByID(ctx, surveyID)
	if err != nil {
		return File{}, err
	}

	fields, err := e.surveyFields(ctx, survey.ID)
	if err != nil {
		return File{}, err
	}
	responses, err := e.store.ResponsesBySurvey(ctx, survey.ID, "")
	if err != nil {
		return File{}, err
	}

	switch format {
	case "json":
		return e.renderJSON(ctx, survey, fields, responses)
	case "csv", "":
		return e.renderCSV(ctx, survey, fields, responses)
	default:
		return File{}, fmt.Errorf("unsupported export format %q", format)
	}
}

// Run renders and delivers in the calling goroutine; use `go Run(...)` to
// trigger without awaiting. Failures are logged, not surfaced.
func (e *Exporter) Run(ctx context.Context, surveyID, format string, delivery Delivery) {
	file, err := e.Render(ctx, surveyID, format)
	if err != nil {
		log.Errorf("export.render: survey=%s: %s", surveyID, err)
		return
	}
	if err := delivery.Deliver(ctx, file.Name, file.ContentType, file.Content); err != nil {
		log.Errorf("export.deliver: survey=%s file=%s: %s", surveyID, file.Name, err)
		return
	}
	log.Infof("export.done: survey=%s file=%s responses exported", surveyID, file.Name)
}

// exportField pairs a field with its section title for column headers.
type exportField struct {
	model.Field
	SectionTitle string
}

func (e *Exporter) surveyFields(ctx context.Context, surveyID string) ([]exportField, error) {
	sections, err := e.store.SectionsBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	fields := []exportField{}
	for _, section := range sections {
		sectionFields, err := e.store.FieldsBySection(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range sectionFields {
			fields = append(fields, exportField{Field: f, SectionTitle: section.Title})
		}
	}
	return fields, nil
}

func (e *Exporter) renderCSV(ctx context.Context, survey model.Survey, fields []exportField, responses []model.SurveyResponse) (File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Response ID", "Survey", "Respondent", "Status", "Started At", "Completed At"}
	for _, f := range fields {
		header = append(header, f.SectionTitle+" - "+f.Label)
	}
	if err := w.Write(header); err != nil {
		return File{}, err
	}

	for _, resp := range responses {
		answers, err := e.engine.Answers(ctx, resp.ID)
		if err != nil {
			return File{}, err
		}

		row := []string{
			resp.ID,
			survey.Title,
			respondentLabel(resp),
			string(resp.Status),
			resp.StartedAt.Format(time.RFC3339),
			formatCompleted(resp),
		}
		for _, f := range fields {
			row = append(row, answers[f.ID])
		}
		if err := w.Write(row); err != nil {
			return File{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, err
	}

	return File{
		Name:        exportName(survey.ID, "csv"),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

type jsonResponse struct {
	model.SurveyResponse
	Answers map[string]string `json:"answers"`
}

func (e *Exporter) renderJSON(ctx context.Context, survey model.Survey, fields []exportField, responses []model.SurveyResponse) (File, error) {
	out := make([]jsonResponse, len(responses))
	for i, resp := range responses {
		answers, err := e.engine.Answers(ctx, resp.ID)
		if err != nil {
			return File{}, err
		}
		out[i] = jsonResponse{SurveyResponse: resp, Answers: answers}
	}

	content, err := json.MarshalIndent(map[string]any{
		"export_date": time.Now().UTC().Format(time.RFC3339),
		"survey": map[string]string{
			"id":    survey.ID,
			"title": survey.Title,
		},
		"total_count": len(responses),
		"responses":   out,
	}, "", "  ")
	if err != nil {
		return File{}, err
	}

	return File{
		Name:        exportName(survey.ID, "json"),
		ContentType: "application/json",
		Content:     content,
	}, nil
}

func respondentLabel(resp model.SurveyResponse) string {
	if resp.Respondent != "" {
		return resp.Respondent
	}
	return "Anonymous"
}

func formatCompleted(resp model.SurveyResponse) string {
	if resp.CompletedAt == nil {
		return ""
	}
	return resp.CompletedAt.Format(time.RFC3339)
}

func exportName(surveyID, ext string) string {
	return fmt.Sprintf("survey_%s_%s.%s", surveyID, time.Now().Format("20060102_150405"), ext)
}
