package factset

import (
	"context"

	id "muster/pkg/domain"
)

// Store persists fact-set definitions. Implementations: the in-memory store
// in this package and the postgres store in internal/storage.
type Store interface {
	FactSets(ctx context.Context) ([]FactSet, error)
	FactSetByID(ctx context.Context, setID id.FactSetID) (*FactSet, error)
	FactSetByName(ctx context.Context, name string) (*FactSet, error)
	CreateFactSet(ctx context.Context, set *FactSet) (*FactSet, error)
	UpdateFactSet(ctx context.Context, set *FactSet) error
	DeleteFactSet(ctx context.Context, setID id.FactSetID) error
}
