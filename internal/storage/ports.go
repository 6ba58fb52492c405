package storage

import (
	"muster/internal/facts"
	"muster/internal/factset"
	"muster/internal/policy"
	"muster/internal/rollout"
	"muster/internal/scope"
)

// The single Store serves every module port.
var (
	_ facts.Store     = (*Store)(nil)
	_ factset.Store   = (*Store)(nil)
	_ policy.Catalog  = (*Store)(nil)
	_ rollout.Catalog = (*Store)(nil)
	_ scope.Catalog   = (*Store)(nil)
)
