package topology

import "github.com/meshpulse/meshpulse/pkg/types"

// Default returns the built-in sample topology: a production and a
// staging environment with a small web stack between them.
func Default() *Topology {
	return &Topology{
		Nodes: []Node{
			{ID: "prod-env", Type: NodeTypeEnvironment, Name: "Production"},
			{ID: "staging-env", Type: NodeTypeEnvironment, Name: "Staging"},
			{
				ID:      "frontend-app",
				Type:    NodeTypeService,
				Parent:  "prod-env",
				Name:    "React Frontend",
				Tech:    "React",
				Version: "2.1.0",
				Status:  types.StatusHealthy,
			},
			{
				ID:      "user-api",
				Type:    NodeTypeService,
				Parent:  "prod-env",
				Name:    "User API",
				Tech:    "Node.js",
				Version: "1.8.2",
				Status:  types.StatusHealthy,
			},
			{
				ID:      "auth-service",
				Type:    NodeTypeService,
				Parent:  "prod-env",
				Name:    "Auth Service",
				Tech:    "Go",
				Version: "1.5.0",
				Status:  types.StatusDegraded,
			},
			{
				ID:      "postgres-db",
				Type:    NodeTypeService,
				Parent:  "prod-env",
				Name:    "PostgreSQL DB",
				Tech:    "PostgreSQL",
				Version: "14.2",
				Status:  types.StatusHealthy,
			},
			{
				ID:      "redis-cache",
				Type:    NodeTypeService,
				Parent:  "prod-env",
				Name:    "Redis Cache",
				Tech:    "Redis",
				Version: "7.0",
				Status:  types.StatusOffline,
			},
			{
				ID:      "staging-api",
				Type:    NodeTypeService,
				Parent:  "staging-env",
				Name:    "Staging User API",
				Tech:    "Node.js",
				Version: "1.9.0-rc",
				Status:  types.StatusHealthy,
			},
		},
		Connections: []Connection{
			{ID: "conn-1", Source: "frontend-app", Target: "user-api", Status: types.StatusHealthy},
			{ID: "conn-2", Source: "user-api", Target: "postgres-db", Status: types.StatusHealthy},
			{ID: "conn-3", Source: "user-api", Target: "auth-service", Status: types.StatusDegraded},
			{ID: "conn-4", Source: "user-api", Target: "redis-cache", Status: types.StatusOffline},
			{ID: "conn-5", Source: "auth-service", Target: "postgres-db", Status: types.StatusHealthy},
			{ID: "conn-6", Source: "staging-api", Target: "postgres-db", Status: types.StatusHealthy},
		},
	}
}
