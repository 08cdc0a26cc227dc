// Package ai implements the AI companion: crisis screening, an
// OpenAI-compatible chat completions client and an offline fallback.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
)

// Reply sources
const (
	SourceModel   = "model"
	SourceOffline = "offline"
	SourceCrisis  = "crisis"
)

// MaxMessageLength bounds a single user message
const MaxMessageLength = 2000

// maxHistory is how many prior turns are forwarded to the model
const maxHistory = 12

const systemPrompt = `You are MindBridge, a warm and supportive wellbeing companion.
Listen carefully, reflect feelings back, and suggest small practical steps such as
breathing exercises, journaling or reaching out to a peer supporter.
You are not a therapist and never diagnose. Keep replies under 120 words.`

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = fmt.Errorf("message must be at most %d characters", MaxMessageLength)
)

var crisisKeywords = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"want to die",
	"self harm",
	"self-harm",
	"hurt myself",
	"no reason to live",
}

// CrisisResources are returned whenever a message trips crisis screening
var CrisisResources = []dto.CrisisResource{
	{Name: "988 Suicide & Crisis Lifeline (US)", Contact: "Call or text 988"},
	{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
	{Name: "International Association for Suicide Prevention", Contact: "https://www.iasp.info/resources/Crisis_Centres/"},
}

const crisisReply = "I'm really sorry you're feeling this way, and I'm glad you told me. " +
	"You deserve support right now from someone who can help. Please reach out to one of the " +
	"crisis lines below, or contact your local emergency number if you are in immediate danger."

// IsCrisis reports whether text mentions self-harm or suicide
func IsCrisis(text string) bool {
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))
	for _, kw := range crisisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Companion produces replies for the AI chat endpoint
type Companion struct {
	client *openai.Client
	model  string
}

// NewCompanion builds a companion. Without an API key every reply is offline.
func NewCompanion(cfg config.AIConfig) *Companion {
	c := &Companion{model: cfg.Model}
	if cfg.APIKey == "" {
		return c
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}

// Reply answers req. Crisis messages short-circuit the model; model errors
// degrade to the offline reply.
func (c *Companion) Reply(ctx context.Context, req dto.AIChatRequest) (dto.AIChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return dto.AIChatResponse{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return dto.AIChatResponse{}, ErrMessageTooLong
	}

	if IsCrisis(message) {
		return dto.AIChatResponse{
			Reply:     crisisReply,
			Crisis:    true,
			Resources: CrisisResources,
			Source:    SourceCrisis,
		}, nil
	}

	if c.client != nil {
		reply, err := c.complete(ctx, message, req.History)
		if err == nil {
			return dto.AIChatResponse{Reply: reply, Source: SourceModel}, nil
		}
		log.Printf("[ai] completion failed, using offline reply: %v", err)
	}

	return dto.AIChatResponse{Reply: OfflineReply(message), Source: SourceOffline}, nil
}

func (c *Companion) complete(ctx context.Context, message string, history []dto.AIChatTurn) (string, error) {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, turn := range history {
		if turn.Role != openai.ChatMessageRoleUser && turn.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type offlineTopic struct {
	keywords []string
	reply    string
}

var offlineTopics = []offlineTopic{
	{
		keywords: []string{"anxious", "anxiety", "panic", "nervous", "worried"},
		reply: "It sounds like anxiety is weighing on you. Try breathing in for four counts, " +
			"holding for four and breathing out for six, a few times. What is the thought that keeps coming back?",
	},
	{
		keywords: []string{"sad", "depressed", "down", "hopeless", "empty"},
		reply: "I'm sorry things feel heavy right now. Small steps count: a short walk, a glass of water, " +
			"or writing one line in your journal. Would it help to talk with a peer supporter today?",
	},
	{
		keywords: []string{"stress", "stressed", "overwhelmed", "pressure", "burnout"},
		reply: "That sounds like a lot to carry. It can help to list what is on your plate and pick just one " +
			"thing to do next. What feels most urgent to you?",
	},
	{
		keywords: []string{"lonely", "alone", "isolated"},
		reply: "Feeling alone is hard. You don't have to go through this by yourself. " +
			"The peer support page lists people who have been where you are and are ready to listen.",
	},
	{
		keywords: []string{"sleep", "insomnia", "tired", "exhausted"},
		reply: "Rest matters so much for how we feel. A wind-down routine without screens, and writing " +
			"down what's on your mind before bed, can make it easier to switch off.",
	},
	{
		keywords: []string{"grateful", "thankful", "happy", "better"},
		reply:    "I'm really glad to hear that. Consider capturing it as a gratitude entry so you can come back to it on harder days.",
	},
}

const defaultOfflineReply = "Thank you for sharing that with me. I'm here to listen. " +
	"Can you tell me a little more about how you're feeling right now?"

// OfflineReply returns a deterministic supportive reply keyed on the first
// matching topic.
func OfflineReply(message string) string {
	lower := strings.ToLower(message)
	for _, topic := range offlineTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return topic.reply
			}
		}
	}
	return defaultOfflineReply
}
