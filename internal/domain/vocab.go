package domain

import "strings"

// WordEntry is one generated vocabulary item. The JSON keys match the
// schema the text generator is asked to honour.
type WordEntry struct {
	Word               string `json:"word"`
	Pronunciation      string `json:"pronunciation"`
	Meaning            string `json:"meaning"`
	ExampleSentence    string `json:"exampleSentence"`
	ExampleTranslation string `json:"exampleTranslation"`
}

// Topic is a human-readable vocabulary category label.
type Topic string

func (t Topic) String() string { return string(t) }

// Topics is the fixed, ordered set of selectable topics.
var Topics = []Topic{
	"School Life (학교 생활)",
	"Family & Friends (가족과 친구)",
	"Hobbies (취미)",
	"Food & Cooking (음식)",
	"Travel & Places (여행)",
	"Daily Routine (일상)",
	"Emotions (감정)",
	"Animals (동물)",
	"Weather (날씨)",
	"Jobs (직업)",
}

// DefaultTopic is selected for new sessions that do not ask for one.
func DefaultTopic() Topic { return Topics[0] }

func (t Topic) IsValid() bool {
	for _, known := range Topics {
		if known == t {
			return true
		}
	}
	return false
}

// ParseTopic resolves a topic label. Matching is exact after trimming, with
// a fallback on the English part alone ("Animals" selects "Animals (동물)").
func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("topic", "required")
	}
	if t := Topic(s); t.IsValid() {
		return t, nil
	}
	for _, known := range Topics {
		if strings.EqualFold(englishLabel(known), s) {
			return known, nil
		}
	}
	return "", NewValidationError("topic", "unknown topic")
}

func englishLabel(t Topic) string {
	label := string(t)
	if i := strings.Index(label, " ("); i >= 0 {
		return label[:i]
	}
	return label
}
