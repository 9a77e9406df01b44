// Package backend selects and constructs the configured graph substrate.
package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
	graph_inmemory "github.com/archivegraph/archivegraph-go-components/internal/graph/inmemory"
	graph_mongodb "github.com/archivegraph/archivegraph-go-components/internal/graph/mongodb"
	graph_postgresql "github.com/archivegraph/archivegraph-go-components/internal/graph/postgresql"
)

// Backend identifiers accepted in graph.backend configuration.
const (
	BackendInMemory   = "inmemory"
	BackendPostgreSQL = "postgresql"
	BackendMongoDB    = "mongodb"
)

// NewStoreFromConfig constructs the graph store selected by the
// configuration.
func NewStoreFromConfig(ctx context.Context, cfg *common.Config) (graph.Store, error) {
	switch cfg.Graph.Backend {
	case BackendInMemory, "":
		log.Println("🗄️  Using in-memory graph backend")
		return graph_inmemory.NewInMemoryGraphDatabase()
	case BackendPostgreSQL:
		log.Printf("🗄️  Connecting to Postgres graph at %s:%d/%s",
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
		return graph_postgresql.NewPostgreSQLGraphDatabase(
			cfg.Postgres.DSN(),
			cfg.Postgres.MaxOpenConnections,
			cfg.Postgres.MaxIdleConnections,
			cfg.Postgres.ConnMaxLifetimeMinutes,
		)
	case BackendMongoDB:
		log.Printf("🗄️  Connecting to MongoDB graph database '%s'", cfg.Mongo.Database)
		return graph_mongodb.NewMongoDBGraphDatabase(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	default:
		return nil, fmt.Errorf("unknown graph backend '%s'", cfg.Graph.Backend)
	}
}
