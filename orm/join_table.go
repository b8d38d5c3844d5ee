package orm

import (
	"context"
	"fmt"
	"strings"
)

// JoinPair is one row of a many-to-many link table.
type JoinPair[S, T comparable] struct {
	Source S
	Target T
}

// ChunkKeys drops duplicate keys and splits the rest into IN lists that
// fit db's bind parameter limit, so a preload over thousands of parents
// still works on SQL Server. It returns nil for no keys.
func ChunkKeys[K comparable](db Querier, keys []K) [][]K {
	size := maxBindParams(db.dialect())
	seen := make(map[K]bool, len(keys))
	var chunks [][]K
	var chunk []K
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if len(chunk) == size {
			chunks = append(chunks, chunk)
			chunk = nil
		}
		chunk = append(chunk, k)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// QueryJoinTable reads the (sourceCol, targetCol) links of every source key
// in sourceIDs, one statement per ChunkKeys chunk.
func QueryJoinTable[S, T comparable](
	ctx context.Context, db Querier, table, sourceCol, targetCol string, sourceIDs []S,
) ([]JoinPair[S, T], error) {
	d := db.dialect()

	var pairs []JoinPair[S, T]
	for _, ids := range ChunkKeys(db, sourceIDs) {
		query, args := joinTableQuery(d, table, sourceCol, targetCol, ids)

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		for rows.Next() {
			var p JoinPair[S, T]
			if err := rows.Scan(&p.Source, &p.Target); err != nil {
				_ = rows.Close()
				return nil, err //nolint:wrapcheck // pass through
			}
			pairs = append(pairs, p)
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
	}
	return pairs, nil
}

func joinTableQuery[S comparable](d Dialect, table, sourceCol, targetCol string, ids []S) (string, []any) {
	qi := d.QuoteIdent
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IN (%s)",
		qi(sourceCol), qi(targetCol), qi(table), qi(sourceCol),
		strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "),
	)
	return rewritePlaceholders(d, query), args
}

// UniqueTargets returns the distinct targets of pairs in first-seen order.
func UniqueTargets[S, T comparable](pairs []JoinPair[S, T]) []T {
	seen := make(map[T]bool, len(pairs))
	var targets []T
	for _, p := range pairs {
		if !seen[p.Target] {
			seen[p.Target] = true
			targets = append(targets, p.Target)
		}
	}
	return targets
}

// GroupBySource maps each source key to its targets.
func GroupBySource[S, T comparable](pairs []JoinPair[S, T]) map[S][]T {
	grouped := make(map[S][]T)
	for _, p := range pairs {
		grouped[p.Source] = append(grouped[p.Source], p.Target)
	}
	return grouped
}
