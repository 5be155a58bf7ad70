package gateway

import (
	"fmt"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

func buildVocabularyPrompt(topic domain.Topic, count int) string {
	return fmt.Sprintf(`Generate a list of %d English vocabulary words suitable for a Korean Middle School Year 1 student (Grade 7) related to the topic: "%s".
For each word, provide:
1. The English word.
2. A simple phonetic guide (e.g., [apple]).
3. The Korean meaning (definition).
4. A simple example sentence using the word.
5. The Korean translation of the example sentence.

Ensure the difficulty level is appropriate for beginners/intermediate learners (CEFR A1/A2).`, count, topic)
}

var wordEntryFields = []string{"word", "pronunciation", "meaning", "exampleSentence", "exampleTranslation"}

func vocabularySchema() *provider.Schema {
	props := make(map[string]*provider.Schema, len(wordEntryFields))
	for _, f := range wordEntryFields {
		props[f] = &provider.Schema{Type: provider.TypeString}
	}
	required := make([]string, len(wordEntryFields))
	copy(required, wordEntryFields)

	return &provider.Schema{
		Type: provider.TypeArray,
		Items: &provider.Schema{
			Type:       provider.TypeObject,
			Properties: props,
			Required:   required,
		},
	}
}
