package services

import (
	"context"
	"time"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
)

// ChatbotService answers questions over the documents a user may read
type ChatbotService interface {
	Chat(ctx context.Context, user models.CurrentUser, req *ChatRequest) (*ChatResponse, error)

	// Models returns the configured model catalog
	Models() []ChatModel
}

type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type ChatModel struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"-" yaml:"model"`
}

// DataFound counts the retrieval hits behind an answer
type DataFound struct {
	Users           int `json:"users"`
	Documents       int `json:"documents"`
	DocumentContent int `json:"document_content"`
}

type ChatResponse struct {
	Query     string                 `json:"query"`
	Keywords  []string               `json:"keywords"`
	Response  string                 `json:"response"`
	Model     string                 `json:"model"`
	DataFound DataFound              `json:"data_found"`
	Sources   []docsystem.ContentHit `json:"sources"`
	Timestamp time.Time              `json:"timestamp"`
}
