package entities

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"arrangement/internal/domain/validation"
)

const (
	MaxParticipantsCeiling = 5000
	maxShortnameLength     = 100
	maxAnswerLength        = 500
	maxQuestionLength      = 500
	minQuestionLength      = 5
)

var (
	fieldValidator = validator.New()
	hexColorRe     = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func length(s string) int { return utf8.RuneCountInString(s) }

func ParseTitle(value string) validation.Result[string] {
	return validation.Validate(value,
		validation.Check("Tittel må ha minst tre tegn", length(value) < 3),
		validation.Check("Tittel kan ha maks 60 tegn", length(value) > 60),
	)
}

func ParseLocation(value string) validation.Result[string] {
	return validation.Validate(value,
		validation.Check("Sted må ha minst tre tegn", length(value) < 3),
		validation.Check("Sted kan ha maks 60 tegn", length(value) > 60),
	)
}

func ParseDescription(value string) validation.Result[string] {
	return validation.Validate(value,
		validation.Check("Beskrivelse må ha minst tre tegn", length(value) < 3),
	)
}

// ParseProgram accepts an empty program as "no program".
func ParseProgram(value string) validation.Result[string] {
	if value == "" {
		return validation.Ok(value)
	}
	return validation.Validate(value,
		validation.Check("Programmet må ha minst 5 tegn", length(value) < 5),
	)
}

// ParseHost validates the organizer name.
func ParseHost(value string) validation.Result[string] {
	return validation.Validate(value,
		validation.Check("Arrangør må ha minst tre tegn", length(value) < 3),
		validation.Check("Arrangør kan ha maks 50 tegn", length(value) > 50),
	)
}

// ParseName validates a participant name.
func ParseName(value string) validation.Result[string] {
	return validation.Validate(value,
		validation.Check("Navn må ha minst tre tegn", length(value) < 3),
		validation.Check("Navn kan ha maks 60 tegn", length(value) > 60),
	)
}

// ParseShortname accepts an empty value, which opts out of a custom URL.
func ParseShortname(value string) validation.Result[string] {
	if value == "" {
		return validation.Ok(value)
	}
	return validation.Validate(value,
		validation.Check("Kortnavn kan ikke inneholde URL-reserverte tegn som /, ? og #",
			strings.ContainsAny(value, "/?#%")),
		validation.Check("Kortnavn kan ikke være over 100 tegn", length(value) > maxShortnameLength),
	)
}

func ParseCustomHexColor(value string) validation.Result[string] {
	if value == "" {
		return validation.Ok(value)
	}
	return validation.Validate(value,
		validation.Check("Farge må være på formatet #RRGGBB", !hexColorRe.MatchString(value)),
	)
}

// Email is a parsed e-mail address.
type Email struct {
	Address string `json:"email"`
}

func (e Email) String() string { return e.Address }

func ParseEditEmail(value string) validation.Result[Email] {
	trimmed := strings.TrimSpace(value)
	return validation.Validate(Email{Address: trimmed},
		validation.Check("E-post må være en gyldig adresse",
			fieldValidator.Var(trimmed, "required,email") != nil),
	)
}

func ToEditEmail(e Email) string { return e.Address }

func ToEmailWriteModel(e Email) string { return e.Address }
