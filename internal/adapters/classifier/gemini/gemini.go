package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/murmurhq/murmur/internal/adapters"
	"github.com/murmurhq/murmur/internal/adapters/classifier"
)

type API struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *log.Entry
}

const DefaultModel = "gemini-2.5-flash-lite"

const systemPrompt = `You are a content moderation system. Given a user message, respond with a comma-separated list of every category that applies, chosen strictly from this list:
%s
If no category applies, respond with exactly "none". Respond with the list only, no explanations.`

func NewGemini(apiKey, model string, logger *log.Entry) adapters.Classifier {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Fatalf("Error creating client: %v", err)
	}
	if model == "" {
		model = DefaultModel
	}
	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(0)
	generativeModel.ResponseMIMEType = "text/plain"
	return &API{
		client: client,
		model:  generativeModel,
		logger: logger,
	}
}

func (g *API) Classify(ctx context.Context, text string) (adapters.Classification, error) {
	prompt := fmt.Sprintf(systemPrompt, strings.Join(classifier.Known, "\n")) + "\n\nMessage:\n" + text
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return adapters.Classification{}, err
	}

	var answer strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if textPart, ok := part.(genai.Text); ok {
				answer.WriteString(string(textPart))
			}
		}
		break
	}

	return parseAnswer(answer.String()), nil
}

func parseAnswer(answer string) adapters.Classification {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" || answer == "none" {
		return adapters.Classification{}
	}

	known := make(map[string]struct{}, len(classifier.Known))
	for _, c := range classifier.Known {
		known[c] = struct{}{}
	}

	var categories []string
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if _, ok := known[part]; ok {
			categories = append(categories, part)
		}
	}

	return adapters.Classification{
		Flagged:    len(categories) > 0,
		Categories: categories,
	}
}
