package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"

	"quiz-runner-service/internal/domain"
)

// questionDoc is the raw question document shape as stored. Historically
// documents carried options as an ordered list, as an object keyed by index
// or letter, or as separate named fields (optA/optionA/A); all of those are
// normalized here, at the boundary, so the rest of the system only ever
// sees the canonical fixed-size list.
type questionDoc struct {
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer int             `json:"correctAnswer"`
	MediaURL      string          `json:"mediaURL"`
	MediaType     string          `json:"mediaType"`

	OptA string `json:"optA"`
	OptB string `json:"optB"`
	OptC string `json:"optC"`
	OptD string `json:"optD"`

	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`

	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

var optionLetters = [domain.OptionCount]string{"A", "B", "C", "D"}

// parseQuestionDoc normalizes one raw document into a canonical Question.
// id and seq come from the surrounding row, not the document.
func parseQuestionDoc(id string, seq int64, raw []byte) (domain.Question, error) {
	var doc questionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Question{}, fmt.Errorf("question %s: %w", id, err)
	}

	options, err := normalizeOptions(doc)
	if err != nil {
		return domain.Question{}, fmt.Errorf("question %s: %w", id, err)
	}
	if doc.CorrectAnswer < 0 || doc.CorrectAnswer >= domain.OptionCount {
		return domain.Question{}, fmt.Errorf("question %s: correct answer %d out of range", id, doc.CorrectAnswer)
	}

	question := domain.Question{
		ID:            id,
		Prompt:        doc.Question,
		Options:       options,
		CorrectOption: doc.CorrectAnswer,
		Seq:           seq,
	}
	if doc.MediaURL != "" {
		question.Media = &domain.MediaRef{URL: doc.MediaURL, Kind: mediaKind(doc.MediaType)}
	}
	return question, nil
}

func normalizeOptions(doc questionDoc) ([]string, error) {
	options := make([]string, domain.OptionCount)

	switch {
	case len(doc.Options) > 0 && string(doc.Options) != "null":
		// List form, or object form keyed by index/letter.
		var list []string
		if err := json.Unmarshal(doc.Options, &list); err == nil {
			if len(list) != domain.OptionCount {
				return nil, fmt.Errorf("expected %d options, got %d", domain.OptionCount, len(list))
			}
			copy(options, list)
			break
		}
		var keyed map[string]string
		if err := json.Unmarshal(doc.Options, &keyed); err != nil {
			return nil, fmt.Errorf("unsupported options shape: %w", err)
		}
		for i := range options {
			if text, ok := keyed[strconv.Itoa(i)]; ok {
				options[i] = text
				continue
			}
			options[i] = keyed[optionLetters[i]]
		}
	default:
		// Separate named fields: optA, then optionA, then bare A.
		named := [domain.OptionCount][3]string{
			{doc.OptA, doc.OptionA, doc.A},
			{doc.OptB, doc.OptionB, doc.B},
			{doc.OptC, doc.OptionC, doc.C},
			{doc.OptD, doc.OptionD, doc.D},
		}
		for i, candidates := range named {
			for _, text := range candidates {
				if text != "" {
					options[i] = text
					break
				}
			}
		}
	}

	for i, text := range options {
		if text == "" {
			return nil, fmt.Errorf("option %s missing", optionLetters[i])
		}
	}
	return options, nil
}

func mediaKind(raw string) domain.MediaKind {
	switch domain.MediaKind(raw) {
	case domain.MediaVideo:
		return domain.MediaVideo
	case domain.MediaAnimation:
		return domain.MediaAnimation
	default:
		return domain.MediaImage
	}
}
