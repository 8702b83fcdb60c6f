package entities

import (
	"strconv"
	"strings"

	"arrangement/internal/domain/validation"
)

// Question is asked to every participant of an event. ID is assigned by the
// server; zero means the question has not been saved yet.
type Question struct {
	ID       int    `json:"id,omitempty"`
	Question string `json:"question"`
	Required bool   `json:"required"`
}

func ParseQuestion(q Question) validation.Result[Question] {
	return validation.Validate(q,
		validation.Check("Spørsmål til deltaker må ha minst 5 tegn", length(q.Question) < minQuestionLength),
		validation.Check("Spørsmål til deltaker kan ha maks 500 tegn", length(q.Question) > maxQuestionLength),
	)
}

func ParseQuestions(qs []Question) validation.Result[[]Question] {
	var c validation.Collector
	out := make([]Question, 0, len(qs))
	for i, q := range qs {
		out = append(out, validation.Field(&c, strconv.Itoa(i), ParseQuestion(q)))
	}
	return validation.Finish(&c, out)
}

// Answer is one participant's answer to one question.
type Answer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// ParseAnswer checks an answer against its question.
func ParseAnswer(q Question, a Answer) validation.Result[Answer] {
	return validation.Validate(a,
		validation.Check("Du må svare på dette spørsmålet", q.Required && strings.TrimSpace(a.Answer) == ""),
		validation.Check("Svar kan ha maks 500 tegn", length(a.Answer) > maxAnswerLength),
	)
}

// ParseAnswers matches answers to questions by id. Questions without an
// answer are treated as answered with an empty string.
func ParseAnswers(questions []Question, answers []Answer) validation.Result[[]Answer] {
	byID := make(map[int]Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}
	var c validation.Collector
	out := make([]Answer, 0, len(questions))
	for _, q := range questions {
		a, ok := byID[q.ID]
		if !ok {
			a = Answer{QuestionID: q.ID}
		}
		out = append(out, validation.Field(&c, strconv.Itoa(q.ID), ParseAnswer(q, a)))
	}
	return validation.Finish(&c, out)
}

// JoinAlternatives serializes the picked alternatives of a multiple choice
// question into a single answer string.
func JoinAlternatives(picked []string) string {
	return strings.Join(picked, ", ")
}
