package agent

import (
	"context"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/askdoc/askdoc/internal/session"
)

// Generator produces a model response for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// GenkitGenerator is the production Generator backed by a Genkit model.
// Model name and temperature are mutable at runtime; changes take
// effect on the next Generate call.
type GenkitGenerator struct {
	g *genkit.Genkit

	mu          sync.RWMutex
	modelName   string
	temperature float64
}

// NewGenkitGenerator creates a generator for the named model, e.g.
// "googleai/gemini-2.0-flash" or "ollama/llama3".
func NewGenkitGenerator(g *genkit.Genkit, modelName string, temperature float64) *GenkitGenerator {
	return &GenkitGenerator{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
	}
}

// SetModel switches the model used by subsequent calls.
func (gg *GenkitGenerator) SetModel(name string) {
	gg.mu.Lock()
	gg.modelName = name
	gg.mu.Unlock()
}

// SetTemperature changes the sampling temperature for subsequent calls.
func (gg *GenkitGenerator) SetTemperature(t float64) {
	gg.mu.Lock()
	gg.temperature = t
	gg.mu.Unlock()
}

// Generate renders the prompt as system + history + user messages and
// runs the model.
func (gg *GenkitGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	gg.mu.RLock()
	modelName := gg.modelName
	temperature := gg.temperature
	gg.mu.RUnlock()

	messages := make([]*ai.Message, 0, len(prompt.History)+1)
	for _, turn := range prompt.History {
		switch turn.Role {
		case session.RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(turn.Content)))
		default:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(turn.Content)))
		}
	}
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(prompt.User)))

	opts := []ai.GenerateOption{
		ai.WithModelName(modelName),
		ai.WithSystem(prompt.System),
		ai.WithMessages(messages...),
	}
	if temperature > 0 {
		opts = append(opts, ai.WithConfig(&ai.GenerationCommonConfig{Temperature: temperature}))
	}

	response, err := genkit.Generate(ctx, gg.g, opts...)
	if err != nil {
		return "", err
	}
	return response.Text(), nil
}
