package engine

import (
	"context"

	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/model"
)

// Answers returns every answer of the response as fieldID -> plain value.
// Encrypted values are decrypted; when decryption fails the answer is left
// out of the map, so rule evaluation sees the field as unanswered. Empty
// stored values are omitted as well.
func (e *Engine) Answers(ctx context.Context, responseID string) (map[string]string, error) {
	answers, err := e.store.AnswersByResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(answers))
	for _, a := range answers {
		switch v := a.Value.(type) {
		case model.PlainValue:
			if v != "" {
				values[a.FieldID] = string(v)
			}
		case model.EncryptedValue:
			plain, err := e.dec.Decrypt(v)
			if err != nil {
				// Treated as unanswered rather than failing the whole
				// operation, but worth a trace: it means stored ciphertext
				// no longer decrypts under the configured key.
				log.Warnf("engine.answers.decrypt: response=%s field=%s: %s", a.ResponseID, a.FieldID, err)
				continue
			}
			if plain != "" {
				values[a.FieldID] = plain
			}
		}
	}
	return values, nil
}
