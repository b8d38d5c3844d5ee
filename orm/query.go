package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ormkit/ormgen/scope"
)

// ScanFunc scans a single row into T.
// Generated per-type by ormgen.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// ColumnValueFunc extracts column names and their values from a *T.
// When includesPK is false the primary key column is excluded (for INSERT
// with auto-increment).
type ColumnValueFunc[T any] func(t *T, includesPK bool) (columns []string, values []any)

// SetPKFunc sets the auto-generated primary key on *T after INSERT.
// May be nil when the primary key is not auto-generated.
type SetPKFunc[T any] func(t *T, id int64)

// PreloaderFunc executes a preload query and assigns results to the parent slice.
// Generated per-relation by ormgen.
type PreloaderFunc[T any] func(ctx context.Context, db Querier, results []T) error

// DefaultsFunc fills client-side default values (e.g. generated UUID keys)
// on *T before it is inserted.
type DefaultsFunc[T any] func(t *T)

// TimestampFunc sets created/updated timestamp fields on *T.
type TimestampFunc[T any] func(t *T, now time.Time)

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// JoinConfig holds the metadata needed to build a JOIN clause at runtime.
type JoinConfig struct {
	TargetTable  string
	TargetColumn string
	SourceTable  string
	SourceColumn string

	// SelectColumns are target columns added to the SELECT list as
	// "<relation>__<column>" so the generated scan func can fill the
	// relation field from the same row.
	SelectColumns []string
}

// Query represents a pending query against a single table.
// All builder methods return a new Query; the receiver is never modified.
type Query[T any] struct {
	db          Querier
	table       string
	columns     []string
	pk          string
	scan        ScanFunc[T]
	colValPairs ColumnValueFunc[T]
	setPK       SetPKFunc[T]

	wheres      []whereClause
	orderBys    []string
	joins       []string
	joined      []string
	joinSelects []string
	selects     *string
	limit       *int
	offset      *int

	joinDefs   map[string]JoinConfig
	preloaders map[string]PreloaderFunc[T]
	preloads   []string

	defaults    DefaultsFunc[T]
	createdCols []string
	setCreated  TimestampFunc[T]
	setUpdated  TimestampFunc[T]
}

type whereClause struct {
	clause string
	args   []any
}

// NewQuery is called by generated factory functions.
func NewQuery[T any](
	db Querier,
	table string,
	columns []string,
	pk string,
	scan ScanFunc[T],
	colValPairs ColumnValueFunc[T],
	setPK SetPKFunc[T],
) *Query[T] {
	return &Query[T]{
		db:          db,
		table:       table,
		columns:     columns,
		pk:          pk,
		scan:        scan,
		colValPairs: colValPairs,
		setPK:       setPK,
	}
}

// RegisterJoin registers a named join definition for use with Join/LeftJoin.
func (q *Query[T]) RegisterJoin(name string, cfg JoinConfig) {
	if q.joinDefs == nil {
		q.joinDefs = make(map[string]JoinConfig)
	}
	q.joinDefs[name] = cfg
}

// RegisterPreloader registers a named preloader for use with Preload.
func (q *Query[T]) RegisterPreloader(name string, fn PreloaderFunc[T]) {
	if q.preloaders == nil {
		q.preloaders = make(map[string]PreloaderFunc[T])
	}
	q.preloaders[name] = fn
}

// RegisterDefaults registers a hook run on every row before INSERT.
func (q *Query[T]) RegisterDefaults(fn DefaultsFunc[T]) {
	q.defaults = fn
}

// RegisterTimestamps registers the timestamp setters. createdCols are
// left untouched by Update and by the update half of Upsert.
func (q *Query[T]) RegisterTimestamps(createdCols []string, setCreated, setUpdated TimestampFunc[T]) {
	q.createdCols = createdCols
	q.setCreated = setCreated
	q.setUpdated = setUpdated
}

// Table returns the table name the query targets.
func (q *Query[T]) Table() string { return q.table }

// Columns returns the model's column names.
func (q *Query[T]) Columns() []string { return append([]string(nil), q.columns...) }

// clone returns a shallow copy with slices copied to avoid aliasing.
func (q *Query[T]) clone() *Query[T] {
	q2 := *q
	q2.wheres = append([]whereClause(nil), q.wheres...)
	q2.orderBys = append([]string(nil), q.orderBys...)
	q2.joins = append([]string(nil), q.joins...)
	q2.joined = append([]string(nil), q.joined...)
	q2.joinSelects = append([]string(nil), q.joinSelects...)
	q2.preloads = append([]string(nil), q.preloads...)
	return &q2
}

// --- Builder methods ---

func (q *Query[T]) Where(clause string, args ...any) *Query[T] {
	q2 := q.clone()
	q2.wheres = append(q2.wheres, whereClause{clause, args})
	return q2
}

// OrderBy appends an ORDER BY expression. An expression that is already
// present, in either direction, is not added again.
func (q *Query[T]) OrderBy(clause string) *Query[T] {
	q2 := q.clone()
	q2.orderBys = appendOrder(q2.orderBys, clause)
	return q2
}

// OrderByRelation orders by a column of the named relation. The relation
// is INNER JOINed unless it was already joined.
func (q *Query[T]) OrderByRelation(name, column string, dir Direction) *Query[T] {
	cfg, ok := q.joinDefs[name]
	if !ok {
		return q
	}
	q2 := q
	if !q.hasJoin(name) {
		q2 = q.Join(name)
	}
	return q2.OrderBy(q.qi(cfg.TargetTable) + "." + q.qi(column) + " " + string(dir))
}

func (q *Query[T]) Limit(n int) *Query[T] {
	q2 := q.clone()
	q2.limit = &n
	return q2
}

func (q *Query[T]) Offset(n int) *Query[T] {
	q2 := q.clone()
	q2.offset = &n
	return q2
}

func (q *Query[T]) Select(columns string) *Query[T] {
	q2 := q.clone()
	q2.selects = &columns
	return q2
}

// Join adds an INNER JOIN for the named relation.
func (q *Query[T]) Join(name string) *Query[T] {
	return q.addJoin("INNER JOIN", name)
}

// LeftJoin adds a LEFT JOIN for the named relation.
func (q *Query[T]) LeftJoin(name string) *Query[T] {
	return q.addJoin("LEFT JOIN", name)
}

func (q *Query[T]) addJoin(joinType, name string) *Query[T] {
	cfg, ok := q.joinDefs[name]
	if !ok || q.hasJoin(name) {
		return q
	}
	clause := fmt.Sprintf(
		"%s %s ON %s.%s = %s.%s",
		joinType,
		q.qi(cfg.TargetTable),
		q.qi(cfg.TargetTable), q.qi(cfg.TargetColumn),
		q.qi(cfg.SourceTable), q.qi(cfg.SourceColumn),
	)
	q2 := q.clone()
	q2.joins = append(q2.joins, clause)
	q2.joined = append(q2.joined, name)
	for _, col := range cfg.SelectColumns {
		q2.joinSelects = append(q2.joinSelects, fmt.Sprintf(
			"%s.%s AS %s", q.qi(cfg.TargetTable), q.qi(col), q.qi(name+"__"+col),
		))
	}
	return q2
}

func (q *Query[T]) hasJoin(name string) bool {
	for _, j := range q.joined {
		if j == name {
			return true
		}
	}
	return false
}

// Preload registers a relation to be eagerly loaded after the main query.
func (q *Query[T]) Preload(name string) *Query[T] {
	q2 := q.clone()
	q2.preloads = append(q2.preloads, name)
	return q2
}

// Scopes applies the given scope.Scope values to the query.
func (q *Query[T]) Scopes(scopes ...scope.Scope) *Query[T] {
	q2 := q.clone()
	for _, s := range scopes {
		s.Apply(q2)
	}
	return q2
}

// --- scope.Applier implementation ---

func (q *Query[T]) ApplyWhere(clause string, args []any) {
	q.wheres = append(q.wheres, whereClause{clause, args})
}

func (q *Query[T]) ApplyOrderBy(clause string) {
	q.orderBys = appendOrder(q.orderBys, clause)
}

func (q *Query[T]) ApplyLimit(n int)  { q.limit = &n }
func (q *Query[T]) ApplyOffset(n int) { q.offset = &n }

func (q *Query[T]) ApplySelect(columns string) {
	q.selects = &columns
}

var _ scope.Applier = (*Query[any])(nil)

// --- Terminal methods ---

// All executes a SELECT and returns all matching rows.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	query, args := q.buildSelect()
	query, args = q.rewrite(query, args)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()

	var result []T
	for rows.Next() {
		item, err := q.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}

	for _, name := range q.preloads {
		fn, ok := q.preloaders[name]
		if !ok {
			return nil, fmt.Errorf("orm: unknown preload %q", name)
		}
		if err := fn(ctx, q.db, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// First executes a SELECT limited to one row and returns it.
// Returns ErrNotFound if no rows match.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	q2 := q.Limit(1)
	items, err := q2.All(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(items) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return items[0], nil
}

// Count returns the number of rows matching the current query conditions.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	query, args := q.buildCount()
	query, args = q.rewrite(query, args)

	var count int64
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, errors.New("orm: COUNT returned no rows")
	}
	if err := rows.Scan(&count); err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	return count, rows.Err() //nolint:wrapcheck // pass through
}

// Exists returns true if at least one row matches the current query conditions.
func (q *Query[T]) Exists(ctx context.Context) (bool, error) {
	count, err := q.Limit(1).Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new row. If setPK is set, the primary key is populated
// via RETURNING (PostgreSQL), OUTPUT (SQL Server) or LastInsertId (MySQL).
func (q *Query[T]) Create(ctx context.Context, t *T) error {
	q.beforeCreate(ctx, t)

	includesPK := q.setPK == nil
	columns, values := q.colValPairs(t, includesPK)

	returning := q.db.dialect().UseReturning() && q.setPK != nil
	query := q.buildInsert(columns, returning)
	query, values = q.rewrite(query, values)

	if returning {
		rows, err := q.db.QueryContext(ctx, query, values...)
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err //nolint:wrapcheck // pass through
			}
			return errors.New("orm: INSERT returned no rows")
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err //nolint:wrapcheck // pass through
		}
		q.setPK(t, id)
		return rows.Err() //nolint:wrapcheck // pass through
	}

	result, err := q.db.ExecContext(ctx, query, values...)
	if err != nil {
		return err //nolint:wrapcheck // pass through
	}

	if q.setPK != nil {
		id, err := result.LastInsertId()
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		q.setPK(t, id)
	}
	return nil
}

// CreateAll inserts multiple rows with as few INSERT statements as the
// dialect's bind parameter limit allows.
// If setPK is set, primary keys are populated for each row. SQL Server does
// not return OUTPUT rows in VALUES order, so there such rows are inserted
// one statement each.
func (q *Query[T]) CreateAll(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		q.beforeCreate(ctx, item)
	}

	d := q.db.dialect()
	_, isMSSQL := d.(mssqlDialect)
	includesPK := q.setPK == nil
	columns, _ := q.colValPairs(items[0], includesPK)
	if len(columns) == 0 || (isMSSQL && q.setPK != nil) {
		// No multi-row DEFAULT VALUES, and no ordered OUTPUT on SQL Server.
		for _, item := range items {
			if err := q.createPrepared(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}

	batch := len(items)
	if limit := maxBindParams(d); len(columns)*batch > limit {
		batch = max(1, limit/len(columns))
	}
	if limit := maxBatchRows(d); limit > 0 && batch > limit {
		batch = limit
	}
	for start := 0; start < len(items); start += batch {
		end := min(start+batch, len(items))
		if err := q.insertBatch(ctx, columns, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// createPrepared is Create without the defaults/timestamps hooks, which
// CreateAll has already applied.
func (q *Query[T]) createPrepared(ctx context.Context, t *T) error {
	q2 := q.clone()
	q2.defaults, q2.setCreated, q2.setUpdated = nil, nil, nil
	return q2.Create(ctx, t)
}

func (q *Query[T]) insertBatch(ctx context.Context, columns []string, items []*T) error {
	includesPK := q.setPK == nil

	var allValues []any
	for _, item := range items {
		_, vals := q.colValPairs(item, includesPK)
		allValues = append(allValues, vals...)
	}

	returning := q.db.dialect().UseReturning() && q.setPK != nil
	query := q.buildBatchInsert(columns, len(items), returning)
	query, allValues = q.rewrite(query, allValues)

	if returning {
		rows, err := q.db.QueryContext(ctx, query, allValues...)
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		defer func() { _ = rows.Close() }()
		for i := 0; rows.Next() && i < len(items); i++ {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err //nolint:wrapcheck // pass through
			}
			q.setPK(items[i], id)
		}
		return rows.Err() //nolint:wrapcheck // pass through
	}

	result, err := q.db.ExecContext(ctx, query, allValues...)
	if err != nil {
		return err //nolint:wrapcheck // pass through
	}

	if q.setPK != nil {
		firstID, err := result.LastInsertId()
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		for i, item := range items {
			q.setPK(item, firstID+int64(i))
		}
	}
	return nil
}

// Upsert inserts a row or updates it on primary key conflict.
// All non-PK columns except created timestamps are updated on conflict.
// The primary key must be set on t before calling Upsert.
func (q *Query[T]) Upsert(ctx context.Context, t *T) error {
	q.beforeCreate(ctx, t)
	columns, values := q.colValPairs(t, true) // always include PK

	returning := q.db.dialect().UseReturning() && q.setPK != nil
	query := q.buildUpsert(columns, returning)
	query, values = q.rewrite(query, values)

	if returning {
		rows, err := q.db.QueryContext(ctx, query, values...)
		if err != nil {
			return err //nolint:wrapcheck // pass through
		}
		defer func() { _ = rows.Close() }()
		if rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err //nolint:wrapcheck // pass through
			}
			q.setPK(t, id)
		}
		return rows.Err() //nolint:wrapcheck // pass through
	}

	_, err := q.db.ExecContext(ctx, query, values...)
	return err //nolint:wrapcheck // pass through
}

// Update updates the row identified by the primary key of t.
// All non-PK columns except created timestamps are SET.
func (q *Query[T]) Update(ctx context.Context, t *T) error {
	if q.setUpdated != nil {
		q.setUpdated(t, now(ctx))
	}
	allCols, allVals := q.colValPairs(t, true)

	var setCols []string
	var setVals []any
	var pkVal any
	for i, col := range allCols {
		switch {
		case col == q.pk:
			pkVal = allVals[i]
		case q.isCreatedCol(col):
		default:
			setCols = append(setCols, col)
			setVals = append(setVals, allVals[i])
		}
	}
	if pkVal == nil {
		return ErrMissingPrimaryKey
	}

	setVals = append(setVals, pkVal)
	query := q.buildUpdate(setCols)
	query, setVals = q.rewrite(query, setVals)

	_, err := q.db.ExecContext(ctx, query, setVals...)
	return err //nolint:wrapcheck // pass through
}

// Delete deletes rows matching the accumulated WHERE clauses.
// Returns an error if no WHERE clauses are set (safety guard).
func (q *Query[T]) Delete(ctx context.Context) error {
	if len(q.wheres) == 0 {
		return ErrMissingWhere
	}
	query, args := q.buildDelete()
	query, args = q.rewrite(query, args)

	_, err := q.db.ExecContext(ctx, query, args...)
	return err //nolint:wrapcheck // pass through
}

// CreateRelated links child to parent and inserts child. Generated
// Create<Parent><Relation> helpers call it for has_many and has_one
// relations.
func CreateRelated[P, C any](ctx context.Context, q *Query[C], parent *P, child *C, link func(parent *P, child *C)) error {
	link(parent, child)
	return q.Create(ctx, child)
}

func (q *Query[T]) beforeCreate(ctx context.Context, t *T) {
	if q.defaults != nil {
		q.defaults(t)
	}
	if q.setCreated == nil && q.setUpdated == nil {
		return
	}
	ts := now(ctx)
	if q.setCreated != nil {
		q.setCreated(t, ts)
	}
	if q.setUpdated != nil {
		q.setUpdated(t, ts)
	}
}

func (q *Query[T]) isCreatedCol(col string) bool {
	for _, c := range q.createdCols {
		if c == col {
			return true
		}
	}
	return false
}

// --- SQL building ---

// qi quotes an identifier (table/column name) using the dialect.
func (q *Query[T]) qi(name string) string {
	return q.db.dialect().QuoteIdent(name)
}

// quoteColumns joins column names with dialect-aware quoting.
func (q *Query[T]) quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q.qi(c)
	}
	return strings.Join(quoted, ", ")
}

// selectList returns the default SELECT list. Base columns are qualified
// with the table name once a join could make them ambiguous.
func (q *Query[T]) selectList() string {
	if len(q.joins) == 0 {
		return q.quoteColumns(q.columns)
	}
	parts := make([]string, 0, len(q.columns)+len(q.joinSelects))
	for _, c := range q.columns {
		parts = append(parts, q.qi(q.table)+"."+q.qi(c))
	}
	parts = append(parts, q.joinSelects...)
	return strings.Join(parts, ", ")
}

func (q *Query[T]) buildSelect() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")

	if q.selects != nil {
		b.WriteString(*q.selects)
	} else {
		b.WriteString(q.selectList())
	}

	b.WriteString(" FROM ")
	b.WriteString(q.qi(q.table))

	for _, j := range q.joins {
		b.WriteByte(' ')
		b.WriteString(j)
	}

	args := q.appendWhere(&b)

	if len(q.orderBys) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBys, ", "))
	}

	b.WriteString(q.db.dialect().Paginate(q.limit, q.offset, len(q.orderBys) > 0))

	return b.String(), args
}

func (q *Query[T]) buildCount() (string, []any) {
	d := q.db.dialect()
	paginated := q.limit != nil || q.offset != nil
	if _, ok := d.(mssqlDialect); ok && paginated {
		// OFFSET/FETCH needs ORDER BY, which an aggregate cannot carry,
		// so count over the paginated rows instead.
		var inner strings.Builder
		inner.WriteString("SELECT 1 AS ")
		inner.WriteString(q.qi("one"))
		inner.WriteString(" FROM ")
		inner.WriteString(q.qi(q.table))
		for _, j := range q.joins {
			inner.WriteByte(' ')
			inner.WriteString(j)
		}
		args := q.appendWhere(&inner)
		if len(q.orderBys) > 0 {
			inner.WriteString(" ORDER BY ")
			inner.WriteString(strings.Join(q.orderBys, ", "))
		}
		inner.WriteString(d.Paginate(q.limit, q.offset, len(q.orderBys) > 0))
		return "SELECT COUNT(*) FROM (" + inner.String() + ") AS " + q.qi("counted"), args
	}

	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(q.qi(q.table))

	for _, j := range q.joins {
		b.WriteByte(' ')
		b.WriteString(j)
	}

	args := q.appendWhere(&b)

	b.WriteString(d.Paginate(q.limit, q.offset, false))

	return b.String(), args
}

func (q *Query[T]) buildInsert(columns []string, returning bool) string {
	return q.buildBatchInsert(columns, 1, returning)
}

func (q *Query[T]) buildBatchInsert(columns []string, rowCount int, returning bool) string {
	d := q.db.dialect()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(q.qi(q.table))

	if len(columns) == 0 {
		if _, ok := d.(mysqlDialect); ok {
			b.WriteString(" () VALUES ()")
			return b.String()
		}
		if returning {
			b.WriteString(d.OutputClause(q.pk))
		}
		b.WriteString(" DEFAULT VALUES")
		if returning {
			b.WriteString(d.ReturningClause(q.pk))
		}
		return b.String()
	}

	fmt.Fprintf(&b, " (%s)", q.quoteColumns(columns))
	if returning {
		b.WriteString(d.OutputClause(q.pk))
	}

	ph := make([]string, len(columns))
	for i := range ph {
		ph[i] = "?"
	}
	oneRow := "(" + strings.Join(ph, ", ") + ")"

	rows := make([]string, rowCount)
	for i := range rows {
		rows[i] = oneRow
	}
	b.WriteString(" VALUES ")
	b.WriteString(strings.Join(rows, ", "))

	if returning {
		b.WriteString(d.ReturningClause(q.pk))
	}
	return b.String()
}

func (q *Query[T]) buildUpsert(columns []string, returning bool) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	var updateCols []string
	for _, col := range columns {
		if col != q.pk && !q.isCreatedCol(col) {
			updateCols = append(updateCols, col)
		}
	}

	d := q.db.dialect()
	if _, ok := d.(mssqlDialect); ok {
		return q.buildMerge(columns, updateCols, placeholders, returning)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		q.qi(q.table),
		q.quoteColumns(columns),
		strings.Join(placeholders, ", "),
	)

	if _, ok := d.(mysqlDialect); ok {
		if len(updateCols) == 0 {
			fmt.Fprintf(&b, " ON DUPLICATE KEY UPDATE %s = %s", q.qi(q.pk), q.qi(q.pk))
			return b.String()
		}
		sets := make([]string, len(updateCols))
		for i, col := range updateCols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", q.qi(col), q.qi(col))
		}
		fmt.Fprintf(&b, " ON DUPLICATE KEY UPDATE %s", strings.Join(sets, ", "))
		return b.String()
	}

	if len(updateCols) == 0 {
		fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", q.qi(q.pk))
	} else {
		sets := make([]string, len(updateCols))
		for i, col := range updateCols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", q.qi(col), q.qi(col))
		}
		fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", q.qi(q.pk), strings.Join(sets, ", "))
	}
	if returning {
		b.WriteString(d.ReturningClause(q.pk))
	}
	return b.String()
}

// buildMerge renders SQL Server's upsert. MERGE must end with a semicolon.
func (q *Query[T]) buildMerge(columns, updateCols, placeholders []string, returning bool) string {
	d := q.db.dialect()
	target, source := q.qi("target"), q.qi("source")

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE INTO %s AS %s USING (VALUES (%s)) AS %s (%s) ON %s.%s = %s.%s",
		q.qi(q.table), target,
		strings.Join(placeholders, ", "),
		source, q.quoteColumns(columns),
		target, q.qi(q.pk), source, q.qi(q.pk),
	)

	if len(updateCols) > 0 {
		sets := make([]string, len(updateCols))
		for i, col := range updateCols {
			sets[i] = fmt.Sprintf("%s.%s = %s.%s", target, q.qi(col), source, q.qi(col))
		}
		fmt.Fprintf(&b, " WHEN MATCHED THEN UPDATE SET %s", strings.Join(sets, ", "))
	}

	values := make([]string, len(columns))
	for i, col := range columns {
		values[i] = source + "." + q.qi(col)
	}
	fmt.Fprintf(&b, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		q.quoteColumns(columns), strings.Join(values, ", "))

	if returning {
		b.WriteString(d.OutputClause(q.pk))
	}
	b.WriteByte(';')
	return b.String()
}

func (q *Query[T]) buildUpdate(setCols []string) string {
	sets := make([]string, len(setCols))
	for i, col := range setCols {
		sets[i] = q.qi(col) + " = ?"
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = ?",
		q.qi(q.table),
		strings.Join(sets, ", "),
		q.qi(q.pk),
	)
}

func (q *Query[T]) buildDelete() (string, []any) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(q.qi(q.table))
	args := q.appendWhere(&b)
	return b.String(), args
}

func (q *Query[T]) appendWhere(b *strings.Builder) []any {
	if len(q.wheres) == 0 {
		return nil
	}

	var args []any
	b.WriteString(" WHERE ")
	for i, w := range q.wheres {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(w.clause)
		args = append(args, w.args...)
	}
	return args
}

// rewrite converts ? placeholders to dialect-specific placeholders.
// For MySQL this is a no-op. For PostgreSQL, ? becomes $1, $2, etc.; for
// SQL Server @p1, @p2, etc.
func (q *Query[T]) rewrite(query string, args []any) (string, []any) {
	return rewritePlaceholders(q.db.dialect(), query), args
}

// appendOrder adds clause unless an equivalent ordering expression is
// already present.
func appendOrder(orders []string, clause string) []string {
	key := orderKey(clause)
	for _, o := range orders {
		if orderKey(o) == key {
			return orders
		}
	}
	return append(orders, clause)
}

// orderKey normalises an ORDER BY expression for comparison: quoting,
// case, whitespace and a trailing direction are ignored.
func orderKey(clause string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '`', '"', '[', ']':
			return -1
		}
		return r
	}, strings.ToLower(clause))
	fields := strings.Fields(stripped)
	if n := len(fields); n > 1 && (fields[n-1] == "asc" || fields[n-1] == "desc") {
		fields = fields[:n-1]
	}
	return strings.Join(fields, " ")
}

// maxBindParams is the number of bind parameters a single statement may
// carry. SQL Server allows 2100, two of which sp_executesql takes for the
// statement text and its parameter list.
func maxBindParams(d Dialect) int {
	if _, ok := d.(mssqlDialect); ok {
		return 2098
	}
	return 65535
}

// maxBatchRows caps the rows of one multi-row VALUES list; 0 means no cap.
func maxBatchRows(d Dialect) int {
	if _, ok := d.(mssqlDialect); ok {
		return 1000
	}
	return 0
}
