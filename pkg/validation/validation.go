// Package validation evaluates form field rules against draft values before
// anything reaches the remote store.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-entityform/pkg/datetime"
	"github.com/goliatone/go-entityform/pkg/model"
)

// Default messages, used when a rule does not carry its own.
const (
	MessageRequired  = "This field is required."
	MessageMinLength = "This field is required to be at least %d characters."
	MessageMaxLength = "This field cannot be longer than %d characters."
	MessagePattern   = "This field should follow pattern %s."
	MessageEmail     = "Your email is invalid."
	MessageEqualTo   = "This field must match %s."
	MessageDate      = "This field should be a date."
	MessageDateTime  = "This field should be a date and time."
)

var (
	validate = validator.New()
	patterns sync.Map
)

// Errors collects messages keyed by field name.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether no field failed.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Validate runs every field's rules against values and returns the failures.
// Values hold strings for text-like inputs and bools for checkboxes; missing
// keys read as empty. The result is nil when all rules pass.
func Validate(form model.FormSpec, values map[string]any) Errors {
	errs := make(Errors)
	for _, field := range form.Fields {
		if field.ReadOnly {
			continue
		}
		for _, msg := range Field(field, values[field.Name], values) {
			errs.Add(field.Name, msg)
		}
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// Field validates a single value. values is consulted for cross-field rules.
func Field(field model.FieldSpec, value any, values map[string]any) []string {
	if field.Kind == model.KindBoolean {
		return nil
	}

	text := asText(value)
	empty := strings.TrimSpace(text) == ""

	var out []string
	if empty && field.IsRequired() {
		out = append(out, requiredMessage(field))
	}

	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength:
			n, ok := rule.IntParam("value")
			if !ok || empty {
				continue
			}
			if utf8.RuneCountInString(text) < n {
				out = append(out, message(rule, fmt.Sprintf(MessageMinLength, n)))
			}
		case model.ValidationRuleMaxLength:
			n, ok := rule.IntParam("value")
			if !ok || empty {
				continue
			}
			if utf8.RuneCountInString(text) > n {
				out = append(out, message(rule, fmt.Sprintf(MessageMaxLength, n)))
			}
		case model.ValidationRulePattern:
			if empty {
				continue
			}
			expr := rule.Params["pattern"]
			re, err := compile(expr)
			if err != nil || !re.MatchString(text) {
				out = append(out, message(rule, fmt.Sprintf(MessagePattern, expr)))
			}
		case model.ValidationRuleEmail:
			if empty {
				continue
			}
			if err := validate.Var(text, "email"); err != nil {
				out = append(out, message(rule, MessageEmail))
			}
		case model.ValidationRuleEqualTo:
			target := strings.TrimSpace(rule.Params["field"])
			if text != asText(values[target]) {
				out = append(out, message(rule, fmt.Sprintf(MessageEqualTo, target)))
			}
		}
	}

	if !empty {
		switch field.Kind {
		case model.KindDate:
			if err := validate.Var(strings.TrimSpace(text), "datetime="+datetime.DateLayout); err != nil {
				out = append(out, MessageDate)
			}
		case model.KindDateTime:
			if _, _, err := datetime.ParseEditable(text, nil); err != nil {
				out = append(out, MessageDateTime)
			}
		}
	}

	return out
}

func requiredMessage(field model.FieldSpec) string {
	for _, rule := range field.Validations {
		if rule.Kind == model.ValidationRuleRequired {
			return message(rule, MessageRequired)
		}
	}
	return MessageRequired
}

func message(rule model.ValidationRule, fallback string) string {
	if msg := rule.Message(); msg != "" {
		return msg
	}
	return fallback
}

func compile(expr string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patterns.Store(expr, re)
	return re, nil
}

func asText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
