package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-entityform/pkg/store"
)

// ProblemError is a non-2xx response, decoded from problem+json when possible.
type ProblemError struct {
	Status  int
	Title   string
	Detail  string
	Message string
	Fields  map[string][]string
}

var _ store.FieldErrorer = (*ProblemError)(nil)

func (e *ProblemError) Error() string {
	text := strings.TrimSpace(e.Detail)
	if text == "" {
		text = strings.TrimSpace(e.Title)
	}
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("httpapi: %d %s", e.Status, text)
}

// FieldErrors implements store.FieldErrorer.
func (e *ProblemError) FieldErrors() map[string][]string {
	return e.Fields
}

// Is maps 404 responses onto store.ErrNotFound.
func (e *ProblemError) Is(target error) bool {
	return target == store.ErrNotFound && e.Status == http.StatusNotFound
}

type problemBody struct {
	Title       string `json:"title"`
	Detail      string `json:"detail"`
	Message     string `json:"message"`
	FieldErrors []struct {
		ObjectName string `json:"objectName"`
		Field      string `json:"field"`
		Message    string `json:"message"`
	} `json:"fieldErrors"`
}

func decodeProblem(status int, data []byte) error {
	problem := &ProblemError{Status: status}

	var body problemBody
	if err := json.Unmarshal(data, &body); err != nil {
		if text := strings.TrimSpace(string(data)); text != "" && len(text) < 512 {
			problem.Detail = text
		}
		return problem
	}

	problem.Title = body.Title
	problem.Detail = body.Detail
	problem.Message = body.Message
	for _, fe := range body.FieldErrors {
		field := strings.TrimSpace(fe.Field)
		if field == "" {
			continue
		}
		if problem.Fields == nil {
			problem.Fields = make(map[string][]string)
		}
		msg := strings.TrimSpace(fe.Message)
		if msg == "" {
			msg = "invalid"
		}
		problem.Fields[field] = append(problem.Fields[field], msg)
	}
	return problem
}

// IsProblem reports whether err carries a ProblemError with the status.
func IsProblem(err error, status int) bool {
	var problem *ProblemError
	return errors.As(err, &problem) && problem.Status == status
}
