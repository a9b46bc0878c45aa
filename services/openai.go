package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	defaultSuggestModel = openai.GPT4oMini
	tokenEncoding       = "cl100k_base"
)

const suggestSystemPrompt = `You extract entities from personal notes.
Return a JSON object {"entities": [...]} listing short strings for every person, organisation,
place, date, product, project or topic mentioned. Copy each entity as written. No explanations.`

var DefaultOpenAIClient = sync.OnceValue(func() *openai.Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		panic("OPENAI_API_KEY is not set, please set it in MCP Config")
	}

	return NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"))
})

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint. An empty
// baseURL keeps the default API host.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)

	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(config)
}

// Suggester asks a chat model for free-text entity strings to merge into a
// hybrid extraction.
type Suggester struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *logrus.Logger
}

// NewSuggester creates a Suggester. maxTokens bounds the note length sent to
// the model; zero sends the whole note.
func NewSuggester(client *openai.Client, model string, maxTokens int) *Suggester {
	if model == "" {
		model = defaultSuggestModel
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Suggester{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// NewSuggesterFromEnv builds a Suggester from OPENAI_API_KEY, OPENAI_BASE_URL,
// ENTITY_AI_MODEL and ENTITY_AI_MAX_TOKENS. It returns nil when no API key is set.
func NewSuggesterFromEnv() *Suggester {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil
	}

	maxTokens, _ := strconv.Atoi(os.Getenv("ENTITY_AI_MAX_TOKENS"))
	return NewSuggester(DefaultOpenAIClient(), os.Getenv("ENTITY_AI_MODEL"), maxTokens)
}

// Suggest returns entity strings the model found in text
func (s *Suggester) Suggest(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt, err := s.truncate(text)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, errors.Wrap(err, "request entity suggestions")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	entities, err := parseSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"model":    s.model,
		"entities": len(entities),
	}).Debug("Received entity suggestions")
	return entities, nil
}

func (s *Suggester) truncate(text string) (string, error) {
	if s.maxTokens <= 0 {
		return text, nil
	}

	encoding, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return "", fmt.Errorf("failed to get encoding: %v", err)
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= s.maxTokens {
		return text, nil
	}
	return encoding.Decode(tokens[:s.maxTokens]), nil
}

// parseSuggestions accepts {"entities": [...]} or a bare array of strings.
// Non-string items are skipped.
func parseSuggestions(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("model returned invalid JSON: %.80s", content)
	}

	list := gjson.Parse(content)
	if list.IsObject() {
		list = list.Get("entities")
	}
	if !list.IsArray() {
		return nil, errors.New("model response has no entities array")
	}

	entities := make([]string, 0)
	list.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String {
			entities = append(entities, value.String())
		}
		return true
	})
	return entities, nil
}
