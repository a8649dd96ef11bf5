// Package planner turns natural-language requests into operation plans by
// prompting a Gemini model with the registered field kinds and the current
// schema, and parsing its structured JSON reply.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/fieldagent/fieldagent/internal/discovery"
	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Planner produces an operation plan from a natural-language prompt.
type Planner interface {
	Plan(ctx context.Context, prompt string) (*model.PlanDocument, error)
}

// Gemini is the genai-backed planner.
type Gemini struct {
	client    *genai.Client
	model     string
	registry  *registry.Registry
	discovery *discovery.Service
	logger    *slog.Logger
}

// NewGemini builds a planner talking to the Gemini API.
func NewGemini(ctx context.Context, apiKey, modelName string, reg *registry.Registry, disc *discovery.Service, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("planner API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{
		client:    client,
		model:     modelName,
		registry:  reg,
		discovery: disc,
		logger:    logger,
	}, nil
}

// Plan asks the model for a plan, parses it, and validates it before
// handing it back.
func (g *Gemini) Plan(ctx context.Context, prompt string) (*model.PlanDocument, error) {
	project, err := g.discovery.Project(ctx)
	if err != nil {
		return nil, fmt.Errorf("gathering project context: %w", err)
	}

	system := buildSystemPrompt(g.registry, project)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: responseSchema(g.registry),
		Temperature:        genai.Ptr[float32](0.2),
	}

	g.logger.Debug("requesting plan", "model", g.model, "promptLen", len(prompt))
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}
	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("model returned an empty plan")
	}

	plan, err := ParsePlan([]byte(text))
	if err != nil {
		return nil, err
	}
	g.logger.Info("plan generated", "operations", len(plan.Operations))
	return plan, nil
}
