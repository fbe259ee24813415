package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"codechat-service/internal/models"
	"codechat-service/internal/repositories"
	"codechat-service/internal/runner"
)

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) UpsertProfile(ctx context.Context, userID int, displayName, avatarGlyph string) (models.Profile, error) {
	args := m.Called(ctx, userID, displayName, avatarGlyph)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) BulkProfiles(ctx context.Context, ids []int) ([]models.Profile, error) {
	args := m.Called(ctx, ids)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

type GroupMessageRepositoryMock struct {
	mock.Mock
}

func (m *GroupMessageRepositoryMock) CreateGroupMessage(ctx context.Context, senderID int, text, codeContent, codeLanguage *string) (models.GroupMessage, error) {
	args := m.Called(ctx, senderID, text, codeContent, codeLanguage)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) ListGroupMessages(ctx context.Context) ([]models.GroupMessage, error) {
	args := m.Called(ctx)
	var msgs []models.GroupMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.GroupMessage)
	}
	return msgs, args.Error(1)
}

func (m *GroupMessageRepositoryMock) GetGroupMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID, senderID, codeContent)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) DeleteGroupMessage(ctx context.Context, messageID int, senderID int) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

type DirectMessageRepositoryMock struct {
	mock.Mock
}

func (m *DirectMessageRepositoryMock) CreateDirectMessage(ctx context.Context, senderID, receiverID int, text, codeContent, codeLanguage *string) (models.DirectMessage, error) {
	args := m.Called(ctx, senderID, receiverID, text, codeContent, codeLanguage)
	var msg models.DirectMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.DirectMessage)
	}
	return msg, args.Error(1)
}

func (m *DirectMessageRepositoryMock) ListConversation(ctx context.Context, userID, partnerID int) ([]models.DirectMessage, error) {
	args := m.Called(ctx, userID, partnerID)
	var msgs []models.DirectMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.DirectMessage)
	}
	return msgs, args.Error(1)
}

func (m *DirectMessageRepositoryMock) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var convs []models.Conversation
	if val := args.Get(0); val != nil {
		convs = val.([]models.Conversation)
	}
	return convs, args.Error(1)
}

func (m *DirectMessageRepositoryMock) GetDirectMessage(ctx context.Context, messageID int, userID int) (models.DirectMessage, error) {
	args := m.Called(ctx, messageID, userID)
	var msg models.DirectMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.DirectMessage)
	}
	return msg, args.Error(1)
}

func (m *DirectMessageRepositoryMock) UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.DirectMessage, error) {
	args := m.Called(ctx, messageID, senderID, codeContent)
	var msg models.DirectMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.DirectMessage)
	}
	return msg, args.Error(1)
}

func (m *DirectMessageRepositoryMock) DeleteDirectMessage(ctx context.Context, messageID int, senderID int) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

type SnippetRepositoryMock struct {
	mock.Mock
}

func (m *SnippetRepositoryMock) CreateSnippet(ctx context.Context, ownerID int, title, code string) (models.Snippet, error) {
	args := m.Called(ctx, ownerID, title, code)
	var snippet models.Snippet
	if val := args.Get(0); val != nil {
		snippet = val.(models.Snippet)
	}
	return snippet, args.Error(1)
}

func (m *SnippetRepositoryMock) ListSnippets(ctx context.Context, ownerID int) ([]models.Snippet, error) {
	args := m.Called(ctx, ownerID)
	var snippets []models.Snippet
	if val := args.Get(0); val != nil {
		snippets = val.([]models.Snippet)
	}
	return snippets, args.Error(1)
}

func (m *SnippetRepositoryMock) GetSnippet(ctx context.Context, snippetID int, ownerID int) (models.Snippet, error) {
	args := m.Called(ctx, snippetID, ownerID)
	var snippet models.Snippet
	if val := args.Get(0); val != nil {
		snippet = val.(models.Snippet)
	}
	return snippet, args.Error(1)
}

func (m *SnippetRepositoryMock) UpdateSnippet(ctx context.Context, snippetID int, ownerID int, code, lastOutput *string) (models.Snippet, error) {
	args := m.Called(ctx, snippetID, ownerID, code, lastOutput)
	var snippet models.Snippet
	if val := args.Get(0); val != nil {
		snippet = val.(models.Snippet)
	}
	return snippet, args.Error(1)
}

func (m *SnippetRepositoryMock) DeleteSnippet(ctx context.Context, snippetID int, ownerID int) error {
	args := m.Called(ctx, snippetID, ownerID)
	return args.Error(0)
}

type EngineMock struct {
	mock.Mock
	EngineName string
}

func (m *EngineMock) Name() string {
	if m.EngineName != "" {
		return m.EngineName
	}
	return "mock"
}

func (m *EngineMock) Execute(ctx context.Context, req runner.ExecuteRequest) (*runner.ExecuteResult, error) {
	args := m.Called(ctx, req)
	var result *runner.ExecuteResult
	if val := args.Get(0); val != nil {
		result = val.(*runner.ExecuteResult)
	}
	return result, args.Error(1)
}

var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.GroupMessageRepository = (*GroupMessageRepositoryMock)(nil)
var _ repositories.DirectMessageRepository = (*DirectMessageRepositoryMock)(nil)
var _ repositories.SnippetRepository = (*SnippetRepositoryMock)(nil)
var _ runner.Engine = (*EngineMock)(nil)
