package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate reports every configuration problem at once. An empty slice means
// the configuration is usable.
func (c *Config) Validate() []string {
	problems := []string{}

	sections := []struct {
		name  string
		value interface{}
	}{
		{"App", c.App},
		{"Ai", c.Ai},
		{"Retrieval", c.Retrieval},
	}
	for _, s := range sections {
		problems = append(problems, describe(s.name, validate.Struct(s.value))...)
	}

	switch c.App.SessionStore {
	case "redis":
		if c.App.RedisURL == "" {
			problems = append(problems, "App.RedisURL is required when the session store is redis")
		}
	case "postgres":
		if c.Database.Connection == "" {
			problems = append(problems, "Database.Connection is required when the session store is postgres")
		}
	}

	if c.Ai.LLMProvider == "openai" && c.Ai.OpenAIAPIKey == "" {
		problems = append(problems, "Ai.OpenAIAPIKey is required when the LLM provider is openai")
	}

	if c.Retrieval.EnableScoreFilter && c.Retrieval.WarnThreshold < c.Retrieval.MinSimilarityScore {
		problems = append(problems, fmt.Sprintf(
			"Retrieval.WarnThreshold (%.2f) is below Retrieval.MinSimilarityScore (%.2f) and would never fire",
			c.Retrieval.WarnThreshold, c.Retrieval.MinSimilarityScore,
		))
	}

	return problems
}

func describe(section string, err error) []string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s: %v", section, err)}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(section+"."+fe.Field(), fe))
	}
	return messages
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got %v)", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got %q)", field, fe.Value())
	case "numeric":
		return fmt.Sprintf("%s must be numeric (got %q)", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}
