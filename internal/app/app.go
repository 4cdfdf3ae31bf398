// Package app provides application initialization and dependency wiring.
//
// App is the container that orchestrates all components: it initializes
// Genkit with the configured AI provider, opens the PostgreSQL pool
// (running migrations first), and assembles the knowledge store,
// retriever, indexer, session store, agent and HTTP server.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdoc/askdoc/internal/agent"
	"github.com/askdoc/askdoc/internal/api"
	"github.com/askdoc/askdoc/internal/config"
	"github.com/askdoc/askdoc/internal/knowledge"
	"github.com/askdoc/askdoc/internal/log"
	"github.com/askdoc/askdoc/internal/rag"
	"github.com/askdoc/askdoc/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	// Pipeline components
	Knowledge *knowledge.Store
	Retriever *rag.Retriever
	Indexer   *rag.Indexer
	Sessions  *session.Store
	Agent     *agent.Agent
	Server    *api.Server

	// Lifecycle management
	cancel    context.CancelFunc
	dbCleanup func()
}

// Close gracefully shuts down all resources. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	if a.dbCleanup != nil {
		a.dbCleanup()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}

	return nil
}
