//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Unit(
		id STRING,
		discovery INT64,
		level INT64,
		position INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS REQUIRES(FROM Unit TO Unit)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddUnit inserts or replaces a Unit node.
func (s *KuzuStore) AddUnit(_ context.Context, node UnitNode) error {
	return s.exec(
		`MERGE (u:Unit {id: $id})
		 SET u.discovery = $discovery, u.level = $level, u.position = $position`,
		map[string]any{
			"id":        node.ID,
			"discovery": int64(node.Discovery),
			"level":     int64(node.Level),
			"position":  int64(node.Position),
		},
	)
}

// AddEdge inserts a REQUIRES relationship from the requiring unit to the
// required unit.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	return s.exec(
		`MATCH (a:Unit {id: $requiring}), (b:Unit {id: $required})
		 CREATE (a)-[:REQUIRES]->(b)`,
		map[string]any{
			"requiring": edge.Requiring,
			"required":  edge.Required,
		},
	)
}

// ---------- Read operations ----------

// GetUnit retrieves a single Unit node by ID, or returns nil if not found.
func (s *KuzuStore) GetUnit(_ context.Context, id string) (*UnitNode, error) {
	rows, err := s.query(
		"MATCH (u:Unit {id: $id}) RETURN u.id, u.discovery, u.level, u.position",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &UnitNode{
		ID:        toString(r[0]),
		Discovery: toInt(r[1]),
		Level:     toInt(r[2]),
		Position:  toInt(r[3]),
	}, nil
}

// GetAllUnits returns every Unit node ordered by discovery index.
func (s *KuzuStore) GetAllUnits(_ context.Context) ([]UnitNode, error) {
	rows, err := s.query(
		`MATCH (u:Unit)
		 RETURN u.id, u.discovery, u.level, u.position
		 ORDER BY u.discovery`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	units := make([]UnitNode, 0, len(rows))
	for _, r := range rows {
		units = append(units, UnitNode{
			ID:        toString(r[0]),
			Discovery: toInt(r[1]),
			Level:     toInt(r[2]),
			Position:  toInt(r[3]),
		})
	}
	return units, nil
}

// GetAllEdges returns every REQUIRES edge ordered by the requiring unit's
// discovery index.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	rows, err := s.query(
		`MATCH (a:Unit)-[:REQUIRES]->(b:Unit)
		 RETURN b.id, a.id
		 ORDER BY a.discovery, b.discovery`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge{Required: toString(r[0]), Requiring: toString(r[1])})
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over REQUIRES edges starting from the given
// unit, up to maxDepth hops (DefaultMaxDepth when not positive). It returns
// one DependencyChain per reachable unit.
func (s *KuzuStore) GetDependencies(_ context.Context, id string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{id: true}
	queue := []bfsEntry{{path: []string{id}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.unitNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// unitNeighbors returns immediate neighbors along REQUIRES edges, ordered by
// discovery index.
func (s *KuzuStore) unitNeighbors(id string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:Unit {id: $id})-[:REQUIRES]->(b:Unit) RETURN b.id ORDER BY b.discovery"
	case DirectionDownstream:
		cypher = "MATCH (a:Unit)-[:REQUIRES]->(b:Unit {id: $id}) RETURN a.id ORDER BY a.discovery"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns unit and edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	units, err := s.count("MATCH (u:Unit) RETURN count(u)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:REQUIRES]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{UnitCount: units, EdgeCount: edges}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows. Each row is a
// []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// KuzuDB returns typed Go values (int64, string); these coerce any.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
