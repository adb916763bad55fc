package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vendor-notices/internal/domain/targets"
)

// TargetTable describe dónde vive cada tipo de inventario. Los nombres son
// constantes de código, nunca input del usuario.
type TargetTable struct {
	Kind          targets.Kind
	Table         string
	IDColumn      string
	DisplayColumn string
}

// DefaultTargetTables cubre los tipos conocidos en compilación.
var DefaultTargetTables = []TargetTable{
	{Kind: targets.KindCircuit, Table: "circuits", IDColumn: "id", DisplayColumn: "cid"},
	{Kind: targets.KindDevice, Table: "devices", IDColumn: "id", DisplayColumn: "name"},
	{Kind: targets.KindSite, Table: "sites", IDColumn: "id", DisplayColumn: "name"},
	{Kind: targets.KindPowerFeed, Table: "power_feeds", IDColumn: "id", DisplayColumn: "name"},
	{Kind: targets.KindVirtualMachine, Table: "virtual_machines", IDColumn: "id", DisplayColumn: "name"},
}

// TableResolver resuelve refs de un tipo contra su tabla de inventario.
type TableResolver struct {
	db    *sql.DB
	query string
}

func NewTableResolver(db *sql.DB, t TargetTable) *TableResolver {
	return &TableResolver{
		db: db,
		query: fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s::text = $1`,
			t.DisplayColumn, t.Table, t.IDColumn),
	}
}

func (r *TableResolver) Lookup(ctx context.Context, id string) (targets.Entity, error) {
	var display string
	if err := r.db.QueryRowContext(ctx, r.query, id).Scan(&display); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return targets.Entity{}, targets.ErrNotFound
		}
		return targets.Entity{}, err
	}
	return targets.Entity{Display: display}, nil
}

// RegisterTargetResolvers registra un resolver por tabla en el registry.
func RegisterTargetResolvers(reg *targets.Registry, db *sql.DB, tables []TargetTable) {
	for _, t := range tables {
		reg.Register(t.Kind, NewTableResolver(db, t))
	}
}
