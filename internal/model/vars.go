// Package model holds the per-table persistence layer: one
// custom-wraps-default pair per entity in the spec's data model,
// following the shape goctl emits for a go-zero service (see
// internal/model/positionsmodel.go in the source this was adapted
// from). Hot-path lookups (agents, positions) get a cache-aside layer
// via sqlc.CachedConn; append-only audit tables (logs, quotes) talk to
// sqlx.SqlConn directly since there is nothing worth caching on a row
// that is written once and read back rarely.
package model

import "github.com/zeromicro/go-zero/core/stores/sqlx"

// ErrNotFound is returned by FindOne-style lookups when no row matches.
var ErrNotFound = sqlx.ErrNotFound
