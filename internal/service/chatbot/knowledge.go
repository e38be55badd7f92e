package chatbot

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"docvault/internal/domain/services"
)

//go:embed knowledge.yaml
var knowledgeFile []byte

// Answer is a canned reply chosen when the query contains one of Keywords.
type Answer struct {
	Keywords []string `yaml:"keywords"`
	Text     string   `yaml:"text"`
}

// Knowledge is the static data behind the assistant: product blurb,
// stopwords, role descriptions, canned answers and the model catalog.
type Knowledge struct {
	Product       string               `yaml:"product"`
	Stopwords     []string             `yaml:"stopwords"`
	RoleSkills    map[string]string    `yaml:"role_skills"`
	DefaultSkill  string               `yaml:"default_skill"`
	Answers       []Answer             `yaml:"answers"`
	DefaultAnswer string               `yaml:"default_answer"`
	Models        []services.ChatModel `yaml:"models"`

	stopwords map[string]struct{}
}

// LoadKnowledge parses the embedded knowledge base
func LoadKnowledge() (*Knowledge, error) {
	return ParseKnowledge(knowledgeFile)
}

func ParseKnowledge(data []byte) (*Knowledge, error) {
	var kb Knowledge
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal knowledge base: %w", err)
	}
	if len(kb.Models) == 0 {
		return nil, fmt.Errorf("knowledge base defines no models")
	}
	kb.stopwords = make(map[string]struct{}, len(kb.Stopwords))
	for _, w := range kb.Stopwords {
		kb.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return &kb, nil
}

func (k *Knowledge) isStopword(word string) bool {
	_, ok := k.stopwords[word]
	return ok
}

// Skill describes what people with the role do
func (k *Knowledge) Skill(role string) string {
	if s, ok := k.RoleSkills[strings.ToLower(role)]; ok {
		return s
	}
	return k.DefaultSkill
}

// Model returns the catalog entry for id
func (k *Knowledge) Model(id string) (services.ChatModel, bool) {
	for _, m := range k.Models {
		if m.ID == id {
			return m, true
		}
	}
	return services.ChatModel{}, false
}

// CannedAnswer returns the first answer whose keyword occurs in the query,
// or the default answer.
func (k *Knowledge) CannedAnswer(query string) string {
	lower := strings.ToLower(query)
	for _, a := range k.Answers {
		for _, kw := range a.Keywords {
			if strings.Contains(lower, kw) {
				return a.Text
			}
		}
	}
	return k.DefaultAnswer
}
