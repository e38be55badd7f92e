// Package chatbot answers free-text questions from the user directory and
// the documents the caller is allowed to read.
package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	"docvault/internal/domain/services"
	"docvault/internal/domain/services/llm"
)

const (
	dataPrompt = "You are a helpful AI assistant in a document management system. " +
		"Answer naturally and conversationally based on the database information provided. " +
		"If asking about a person, mention their role, department, and relevant details."
	productPrompt = "You are a helpful assistant for a document management system. " +
		"Only answer questions related to the following features:\n%s\nKeep responses concise and helpful."
)

// ProviderSource looks up a completion provider by name.
type ProviderSource interface {
	Get(name string) (llm.Provider, bool)
}

// Options tune answer generation.
type Options struct {
	DefaultModel string
	MaxTokens    int64
	Timeout      time.Duration
}

// results is one retrieval pass.
type results struct {
	users     []models.User
	documents []docsystem.Document
	content   []docsystem.ContentHit
}

func (r *results) empty() bool {
	return len(r.users) == 0 && len(r.documents) == 0 && len(r.content) == 0
}

type chatbotService struct {
	users       repositories.UserRepository
	departments services.DepartmentService
	docs        docsysRepo.DocumentRepository
	composer    services.QueryComposer
	providers   ProviderSource
	kb          *Knowledge
	opts        Options
	logger      *slog.Logger
	now         func() time.Time
}

// NewChatbotService creates the chatbot. providers may be nil, in which case
// every answer comes from the built-in fallbacks.
func NewChatbotService(
	users repositories.UserRepository,
	departments services.DepartmentService,
	docs docsysRepo.DocumentRepository,
	composer services.QueryComposer,
	providers ProviderSource,
	kb *Knowledge,
	opts Options,
	logger *slog.Logger,
) services.ChatbotService {
	if opts.DefaultModel == "" {
		opts.DefaultModel = kb.Models[0].ID
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 300
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &chatbotService{
		users:       users,
		departments: departments,
		docs:        docs,
		composer:    composer,
		providers:   providers,
		kb:          kb,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *chatbotService) Models() []services.ChatModel {
	return slices.Clone(s.kb.Models)
}

func (s *chatbotService) Chat(ctx context.Context, user models.CurrentUser, req *services.ChatRequest) (*services.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if err := validation.Validate(message, validation.Required, validation.RuneLength(1, config.MaxChatMessageLength)); err != nil {
		return nil, fmt.Errorf("%w: message %v", domain.ErrValidation, err)
	}
	modelID := req.Model
	if modelID == "" {
		modelID = s.opts.DefaultModel
	}
	model, ok := s.kb.Model(modelID)
	if !ok {
		return nil, domain.Validation("unknown model %q", modelID)
	}

	keywords := s.kb.ExtractKeywords(message)
	found, err := s.search(ctx, user, keywords)
	if err != nil {
		return nil, err
	}

	answer := s.answer(ctx, message, model, found)
	s.logger.Debug("chat answered",
		"user_id", user.ID,
		"keywords", keywords,
		"users", len(found.users),
		"documents", len(found.documents),
		"content", len(found.content),
	)

	return &services.ChatResponse{
		Query:    message,
		Keywords: keywords,
		Response: answer,
		Model:    model.ID,
		DataFound: services.DataFound{
			Users:           len(found.users),
			Documents:       len(found.documents),
			DocumentContent: len(found.content),
		},
		Sources:   found.content,
		Timestamp: s.now().UTC(),
	}, nil
}

// search runs the three lookups concurrently. Document lookups carry the
// caller's access scope; the user directory is visible to everyone.
func (s *chatbotService) search(ctx context.Context, user models.CurrentUser, keywords []string) (*results, error) {
	found := &results{
		users:     []models.User{},
		documents: []docsystem.Document{},
		content:   []docsystem.ContentHit{},
	}
	if len(keywords) == 0 {
		return found, nil
	}

	scope, err := s.composer.DocumentScope(ctx, user)
	if err != nil {
		return nil, err
	}

	var withContent []docsystem.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.users.Search(gctx, keywords, config.ChatUserResults)
		if err != nil {
			return fmt.Errorf("search users: %w", err)
		}
		found.users = users
		return nil
	})
	g.Go(func() error {
		docs, err := s.docs.List(gctx, docsystem.DocumentQuery{
			Scope:         scope,
			MetadataTerms: keywords,
			Sort:          docsystem.DefaultDocumentSort,
			Limit:         config.ChatDocumentResults,
		})
		if err != nil {
			return fmt.Errorf("search document metadata: %w", err)
		}
		found.documents = docs
		return nil
	})
	g.Go(func() error {
		docs, err := s.docs.SearchContent(gctx, docsystem.DocumentQuery{
			Scope:        scope,
			ContentTerms: keywords,
			Sort:         docsystem.DefaultDocumentSort,
			Limit:        config.ChatContentResults,
		})
		if err != nil {
			return fmt.Errorf("search document content: %w", err)
		}
		withContent = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	re := termMatcher(keywords)
	for _, d := range withContent {
		found.content = append(found.content, docsystem.ContentHit{
			DocumentID:   d.ID,
			OriginalName: d.OriginalName,
			FolderID:     d.FolderID,
			Snippet:      snippet(d.Content, re, config.ChatSnippetRadius),
		})
	}

	depts := map[string]*models.Department{}
	for i := range found.users {
		id := found.users[i].DepartmentID
		if id == "" {
			continue
		}
		dept, ok := depts[id]
		if !ok {
			var err error
			dept, err = s.departments.Resolve(ctx, id)
			if err != nil {
				s.logger.Warn("department lookup failed", "user_id", found.users[i].ID, "department_id", id, "error", err)
			}
			depts[id] = dept
		}
		found.users[i].Department = dept
	}
	return found, nil
}

// answer asks the model when one is configured and falls back to
// deterministic text otherwise or on failure.
func (s *chatbotService) answer(ctx context.Context, query string, model services.ChatModel, found *results) string {
	if found.empty() {
		prompt := &llm.CompletionRequest{
			System:    fmt.Sprintf(productPrompt, s.kb.Product),
			Prompt:    query,
			MaxTokens: s.opts.MaxTokens / 2,
		}
		if text, ok := s.complete(ctx, model, prompt); ok {
			return text
		}
		return s.kb.CannedAnswer(query)
	}

	prompt := &llm.CompletionRequest{
		System:    dataPrompt,
		Prompt:    fmt.Sprintf("Question: %s\n\nDatabase Information:\n%s", query, contextData(found)),
		MaxTokens: s.opts.MaxTokens,
	}
	if text, ok := s.complete(ctx, model, prompt); ok {
		return text
	}
	return s.fallback(found)
}

func (s *chatbotService) complete(ctx context.Context, model services.ChatModel, req *llm.CompletionRequest) (string, bool) {
	if s.providers == nil {
		return "", false
	}
	provider, ok := s.providers.Get(model.Provider)
	if !ok {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	req.Model = model.Model
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("completion failed, using fallback", "provider", provider.Name(), "model", model.Model, "error", err)
		return "", false
	}
	if resp.Text == "" {
		return "", false
	}
	return resp.Text, true
}

func (s *chatbotService) fallback(found *results) string {
	if len(found.users) > 0 {
		u := found.users[0]
		dept := "system"
		if u.Department != nil {
			dept = u.Department.DisplayName
		}
		return fmt.Sprintf("%s is a %s in the %s department. %s You can reach them at %s.",
			u.Name, u.Role, dept, s.kb.Skill(string(u.Role)), u.Email)
	}

	if len(found.content) > 0 {
		hit := found.content[0]
		return fmt.Sprintf("I found relevant information in the document %q. Here's what I found: %s Would you like me to search for more specific information?",
			hit.OriginalName, hit.Snippet)
	}

	var types, names []string
	for i, d := range found.documents {
		sub := d.MimeType
		if _, after, ok := strings.Cut(d.MimeType, "/"); ok {
			sub = after
		}
		if !slices.Contains(types, sub) {
			types = append(types, sub)
		}
		if i < 3 {
			names = append(names, d.OriginalName)
		}
	}
	return fmt.Sprintf("I found %d document(s) related to your query. These include %s files. Recent documents: %s. Would you like me to help you find something specific?",
		len(found.documents), strings.Join(types, ", "), strings.Join(names, ", "))
}

func contextData(found *results) string {
	var b strings.Builder
	if len(found.users) > 0 {
		b.WriteString("Users found:\n")
		for _, u := range found.users {
			dept := "Unknown"
			if u.Department != nil {
				dept = u.Department.DisplayName
			}
			fmt.Fprintf(&b, "- %s: %s in %s department (%s)\n", u.Name, u.Role, dept, u.Email)
		}
	}
	if len(found.documents) > 0 {
		b.WriteString("Documents found:\n")
		for _, d := range found.documents {
			fmt.Fprintf(&b, "- %s (%s) - Created: %s\n", d.OriginalName, d.MimeType, d.CreatedAt.Format(time.DateOnly))
		}
	}
	if len(found.content) > 0 {
		b.WriteString("Document content found:\n")
		for _, h := range found.content {
			fmt.Fprintf(&b, "- %s: %s\n", h.OriginalName, h.Snippet)
		}
	}
	return b.String()
}
