package model

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/olebedev/when"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventForm holds the raw values posted by the admin form.
type EventForm struct {
	Title        string
	Address      string
	RegisterLink string
	MoreInfoLink string
	Date         string
	TimeFrom     string
	Audience     []string
}

type eventInput struct {
	Title        string   `validate:"required,max=200"`
	Date         string   `validate:"omitempty,datetime=2006-01-02"`
	TimeFrom     string   `validate:"max=100"`
	RegisterLink string   `validate:"omitempty,http_url"`
	MoreInfoLink string   `validate:"omitempty,http_url"`
	Audience     []string `validate:"dive,oneof=Industry Students Educators Community"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	spacePattern      = regexp.MustCompile(`\s+`)
	lineSpacePattern  = regexp.MustCompile(`[ \t\f\v]+`)
	urlSchemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
	ErrEventFormField = errors.New("invalid event form")
)

// FormError names the fields of an EventForm that failed validation.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("invalid event form fields: %s", strings.Join(e.Fields, ", "))
}

func (e *FormError) Unwrap() error {
	return ErrEventFormField
}

// ToEvent sanitizes the form and writes every editable field onto target.
// Dates are accepted as YYYY-MM-DD or as a phrase like "next friday",
// resolved against now.
func (f EventForm) ToEvent(target *Event, now time.Time, parser *when.Parser) error {
	date, err := resolveEventDate(f.Date, now, parser)
	if err != nil {
		return &FormError{Fields: []string{"Date"}}
	}

	input := eventInput{
		Title:        sanitizeText(f.Title),
		Date:         date,
		TimeFrom:     sanitizeText(f.TimeFrom),
		RegisterLink: sanitizeURL(f.RegisterLink),
		MoreInfoLink: sanitizeURL(f.MoreInfoLink),
		Audience:     sanitizeAudience(f.Audience),
	}
	if err := validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("EventForm.ToEvent: %w", err)
		}
		formErr := &FormError{}
		for _, fieldErr := range validationErrs {
			formErr.Fields = append(formErr.Fields, fieldErr.Field())
		}
		return formErr
	}

	target.Title = input.Title
	target.Date = input.Date
	target.TimeFrom = input.TimeFrom
	target.Address = sanitizeTextarea(f.Address)
	target.RegisterLink = input.RegisterLink
	target.MoreInfoLink = input.MoreInfoLink
	target.Audience = input.Audience
	return nil
}

func resolveEventDate(raw string, now time.Time, parser *when.Parser) (string, error) {
	raw = sanitizeText(raw)
	if raw == "" {
		return "", nil
	}
	if date, err := time.ParseInLocation(EventDateLayout, raw, now.Location()); err == nil {
		return date.Format(EventDateLayout), nil
	}
	if parser == nil {
		return "", fmt.Errorf("resolveEventDate: can't parse %q", raw)
	}
	result, err := parser.Parse(raw, now)
	switch {
	case err != nil:
		return "", fmt.Errorf("resolveEventDate: %w", err)
	case result == nil:
		return "", fmt.Errorf("resolveEventDate: no date found in %q", raw)
	}
	return result.Time.In(now.Location()).Format(EventDateLayout), nil
}

// strips tags, collapses every run of whitespace into one space
func sanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// like sanitizeText but keeps line breaks
func sanitizeTextarea(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(lineSpacePattern.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Anything that isn't an http(s) URL is dropped. Bare hosts get "http://".
func sanitizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !urlSchemePattern.MatchString(s) {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// trims and title-cases each tag, duplicates are dropped, order is kept
func sanitizeAudience(tags []string) []string {
	caser := cases.Title(language.English)
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = caser.String(sanitizeText(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
