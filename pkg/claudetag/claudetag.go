// Package claudetag generates semantic tags for a media asset from its
// listing metadata using the Anthropic API. It serves sources whose assets
// cannot be analyzed by the media-insight service (e.g. not yet downloaded),
// trading visual grounding for availability.
package claudetag

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const systemPrompt = `You label stock media clips for a short-form video asset library.
Given a clip's title and metadata, reply with ONLY a comma-separated list of
lowercase tags describing its likely content, mood, and use. No explanations.`

// Client suggests tags from asset metadata.
type Client interface {
	SuggestTags(ctx context.Context, title, mediaKind string, metadata map[string]any, topK int) ([]string, error)
}

type sdkClient struct {
	client sdk.Client
	model  string
}

// NewClient creates a tagger backed by the Anthropic SDK.
func NewClient(apiKey, model string) Client {
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *sdkClient) SuggestTags(ctx context.Context, title, mediaKind string, metadata map[string]any, topK int) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Kind: %s\nTitle: %s\n", mediaKind, title)
	for k, v := range metadata {
		fmt.Fprintf(&b, "%s: %v\n", k, v)
	}
	fmt.Fprintf(&b, "Return at most %d tags.", topK)

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 256,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(b.String())),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "claudetag: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return ParseTags(text, topK), nil
}

// ParseTags splits a comma-separated model response into clean tags, capped
// at topK.
func ParseTags(text string, topK int) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(text, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		tag = strings.Trim(tag, ".\"'")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if topK > 0 && len(tags) >= topK {
			break
		}
	}
	return tags
}
