package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/adapters"
	"github.com/murmurhq/murmur/internal/adapters/classifier"
)

type API struct {
	client *openai.Client
	model  string
	logger *log.Entry
}

const DefaultModel = "omni-moderation-latest"

func NewOpenAI(apiKey, model, baseURL string, logger *log.Entry) adapters.Classifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &API{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

func (o *API) Classify(ctx context.Context, text string) (adapters.Classification, error) {
	resp, err := o.client.Moderations(ctx, openai.ModerationRequest{
		Model: o.model,
		Input: text,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			o.logger.WithError(err).Warn("moderation quota exceeded")
			return adapters.Classification{}, adapters.ErrQuotaExceeded
		}
		return adapters.Classification{}, err
	}
	if len(resp.Results) == 0 {
		return adapters.Classification{}, nil
	}

	result := resp.Results[0]
	return adapters.Classification{
		Flagged:    result.Flagged,
		Categories: flaggedCategories(result.Categories),
	}, nil
}

func flaggedCategories(c openai.ResultCategories) []string {
	flagged := []struct {
		name string
		set  bool
	}{
		{classifier.CategoryHate, c.Hate},
		{classifier.CategoryHateThreatening, c.HateThreatening},
		{classifier.CategoryHarassment, c.Harassment},
		{classifier.CategoryHarassmentThreatening, c.HarassmentThreatening},
		{classifier.CategorySelfHarm, c.SelfHarm},
		{classifier.CategorySelfHarmIntent, c.SelfHarmIntent},
		{classifier.CategorySelfHarmInstructions, c.SelfHarmInstructions},
		{classifier.CategorySexual, c.Sexual},
		{classifier.CategorySexualMinors, c.SexualMinors},
		{classifier.CategoryViolence, c.Violence},
		{classifier.CategoryViolenceGraphic, c.ViolenceGraphic},
	}

	var out []string
	for _, f := range flagged {
		if f.set {
			out = append(out, f.name)
		}
	}
	return out
}
