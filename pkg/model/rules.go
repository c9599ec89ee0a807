package model

import "strconv"

// Required builds a required rule with an optional message.
func Required(message string) ValidationRule {
	return rule(ValidationRuleRequired, message, nil)
}

// MinLength builds a minimum length rule.
func MinLength(n int, message string) ValidationRule {
	return rule(ValidationRuleMinLength, message, map[string]string{"value": strconv.Itoa(n)})
}

// MaxLength builds a maximum length rule.
func MaxLength(n int, message string) ValidationRule {
	return rule(ValidationRuleMaxLength, message, map[string]string{"value": strconv.Itoa(n)})
}

// Pattern builds a regular expression rule.
func Pattern(expr, message string) ValidationRule {
	return rule(ValidationRulePattern, message, map[string]string{"pattern": expr})
}

// Email builds an email address rule.
func Email(message string) ValidationRule {
	return rule(ValidationRuleEmail, message, nil)
}

// EqualTo builds a cross-field equality rule against the named sibling.
func EqualTo(field, message string) ValidationRule {
	return rule(ValidationRuleEqualTo, message, map[string]string{"field": field})
}

func rule(kind, message string, params map[string]string) ValidationRule {
	if message != "" {
		if params == nil {
			params = make(map[string]string, 1)
		}
		params["message"] = message
	}
	return ValidationRule{Kind: kind, Params: params}
}
