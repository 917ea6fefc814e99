// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// Generated image dimensions.
const (
	imageWidth  = 1920
	imageHeight = 1080
)

// enhanceInstruction asks the lite model to turn a casual request
// (shorthand, any language) into a detailed English image prompt.
const enhanceInstruction = "You improve prompts for an AI image generator. " +
	"Rewrite the user's request as one detailed English image prompt: expand abbreviations, " +
	"translate to English if needed, and add concrete visual detail. " +
	"Reply with the improved prompt only, no commentary.\n\nRequest: "

// =============================================================================
// IMAGE BACKEND
// =============================================================================

// ImageBackend serves the image family: an enhancement pass over the prompt
// (soft-failing to the original), then Pollinations generation. Progress is
// surfaced through OnDelta as staged status text; the terminal content is
// the image markdown.
type ImageBackend struct {
	client   *Client
	enhancer *LLM7Backend
}

// NewImageBackend creates the image generation adapter.
func NewImageBackend(client *Client) *ImageBackend {
	return &ImageBackend{
		client:   client,
		enhancer: NewLLM7Backend(client, client.opts.LiteModel),
	}
}

// Invoke enhances the prompt, generates the image, and returns markdown
// embedding the result.
func (b *ImageBackend) Invoke(ctx context.Context, req Request) (string, error) {
	req.emit("Refining your prompt...")

	prompt := b.enhancePrompt(ctx, req.Message)
	req.emit("Prompt ready: \"" + prompt + "\"\n\nGenerating image...")

	imageURL, err := b.GenerateURL(ctx, prompt)
	if err != nil {
		return "", err
	}

	return "![Generated image](" + imageURL + ")", nil
}

// GenerateURL builds the generation URL for an already-final prompt and
// triggers generation upstream. The returned URL is the deliverable; the
// provider renders the image on first fetch.
func (b *ImageBackend) GenerateURL(ctx context.Context, prompt string) (string, error) {
	imageURL := b.client.opts.PollinationsBaseURL + "/prompt/" + url.PathEscape(prompt) +
		"?width=" + strconv.Itoa(imageWidth) +
		"&height=" + strconv.Itoa(imageHeight) +
		"&nologo=true"

	if err := b.client.fetch(ctx, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}

// enhancePrompt runs the enhancement pass. Any failure falls back to the
// original prompt; generation must not die on a nicety.
func (b *ImageBackend) enhancePrompt(ctx context.Context, prompt string) string {
	enhanced, err := b.enhancer.Invoke(ctx, Request{Message: enhanceInstruction + prompt})
	if err != nil || enhanced == "" {
		b.client.log.Debug("prompt enhancement failed, using original", zap.Error(err))
		return prompt
	}
	return enhanced
}

// EnhancePrompt exposes the enhancement pass for the HTTP proxy.
func (b *ImageBackend) EnhancePrompt(ctx context.Context, prompt string) string {
	return b.enhancePrompt(ctx, prompt)
}
