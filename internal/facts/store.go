package facts

import (
	"context"

	id "muster/pkg/domain"
)

// Store is the fact inventory port. Implementations: the in-memory store in
// this package (tests, single-node dev) and the postgres store in
// internal/storage.
type Store interface {
	// Categories.
	CategoryByID(ctx context.Context, categoryID id.CategoryID) (*Category, error)
	CategoryByName(ctx context.Context, name string) (*Category, error)

	// Facts. FindOrCreateFact resolves by (category, value) identity and
	// creates the fact when absent.
	FactByID(ctx context.Context, factID id.FactID) (*Fact, error)
	FactsByIDs(ctx context.Context, factIDs []id.FactID) (map[id.FactID]*Fact, error)
	FindFact(ctx context.Context, categoryID id.CategoryID, value string) (*Fact, error)
	FindOrCreateFact(ctx context.Context, input *Fact) (*Fact, error)
	UpdateFact(ctx context.Context, factID id.FactID, value, description string) error
	DeleteFact(ctx context.Context, factID id.FactID) error

	// Machines.
	MachineFacts(ctx context.Context, machineID id.MachineID) ([]id.FactID, error)
	MachineProject(ctx context.Context, machineID id.MachineID) (id.ProjectID, error)
	MachineStatus(ctx context.Context, machineID id.MachineID) (string, error)
	Machines(ctx context.Context) ([]Machine, error)
}
