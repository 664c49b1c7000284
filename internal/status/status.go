// Package status interprets homework review statuses into notification text.
package status

import (
	"encoding/json"
	"fmt"

	"homework_bot/internal/domain"
)

// Review status codes the API is documented to return.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"
)

// verdicts maps each recognized status code to its human-readable verdict.
// The sentences are product copy and stay in Russian.
var verdicts = map[string]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Message extracts the review status from a raw homework record and formats
// the change notification. The record must carry a homework_name and a status
// from the verdict vocabulary.
func Message(record json.RawMessage) (string, error) {
	var hw struct {
		Name   *string `json:"homework_name"`
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(record, &hw); err != nil {
		return "", domain.Errorf(domain.KindShape, "homework record is not a JSON object: %w", err)
	}

	if hw.Name == nil {
		return "", domain.Errorf(domain.KindMissingKey, "homework record is missing the homework_name key")
	}
	if hw.Status == nil || *hw.Status == "" {
		return "", domain.Errorf(domain.KindEmptyStatus, "homework %q has an empty status", *hw.Name)
	}

	verdict, ok := verdicts[*hw.Status]
	if !ok {
		return "", domain.Errorf(domain.KindUnknownVerdict, "homework %q has an undocumented status %q", *hw.Name, *hw.Status)
	}

	return fmt.Sprintf("Изменился статус проверки работы %q. %s", *hw.Name, verdict), nil
}
