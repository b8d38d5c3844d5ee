package regress

import (
	"context"
	"regexp"
	"strings"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ormkit/ormgen/internal/regress/model"
	"github.com/ormkit/ormgen/orm"
	"github.com/ormkit/ormgen/scope"
)

// MSSQLSuite holds the regressions specific to the SQL Server dialect.
var MSSQLSuite = Suite{
	Name:  "[MSSQL Specific] Regressions",
	Guard: regexp.MustCompile(`^mssql`),
	Scenarios: []Scenario{
		{Name: "does not duplicate columns in ORDER BY statement", Issue: "#9008", Run: noDuplicateOrderByColumns},
		{Name: "sets the varchar(max) length correctly on describeTable", Run: describeVarcharMax},
		{Name: "sets the char(10) length correctly on describeTable", Run: describeChar10},
		{Name: "saves value bigger than 2147483647", Issue: "#11245", Run: savesBigInt},
		{Name: "saves boolean is true", Issue: "#12090", Run: savesBooleanTrue},
	},
}

// Suites lists every suite the regress command knows about.
func Suites() []Suite {
	return []Suite{MSSQLSuite}
}

func noDuplicateOrderByColumns(ctx context.Context, t require.TestingT, env *Env) {
	db := env.DB
	require.NoError(t, orm.Sync(ctx, db, orm.SyncOptions{Force: true}, model.UsersTable, model.LoginLogsTable))

	names := []string{"Vayom", "Shaktimaan", "Nikita", "Aryamaan"}
	users := make([]*model.User, len(names))
	for i, name := range names {
		users[i] = &model.User{UserName: name}
	}
	require.NoError(t, model.Users(db).CreateAll(ctx, users))

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range users {
		g.Go(func() error {
			return model.CreateUserLoginLog(gctx, db, u, &model.LoginLog{})
		})
	}
	require.NoError(t, g.Wait())

	d := db.Dialect()
	userName := d.QuoteIdent(model.UsersTable.Name) + "." + d.QuoteIdent("username")

	env.Reset()
	logs, err := model.LoginLogs(db).
		Join("User").
		// users.username is ordered twice so the ORDER BY de-duplication has work to do.
		Scopes(scope.Like(userName, "%maan%"), scope.OrderBy(userName+" DESC")).
		OrderByRelation("User", "username", orm.Desc).
		Offset(0).
		Limit(10).
		All(ctx)
	require.NoError(t, err)

	require.Len(t, logs, 2)
	require.NotNil(t, logs[0].User)
	require.NotNil(t, logs[1].User)
	require.Equal(t, "Shaktimaan", logs[0].User.UserName)
	require.Equal(t, "Aryamaan", logs[1].User.UserName)

	stmt, ok := env.Recorder.Last("SELECT")
	require.True(t, ok, "no SELECT recorded")
	orderBy := orderByClause(stmt.SQL)
	require.Equal(t, 1, strings.Count(orderBy, userName), "ORDER BY clause: %s", orderBy)
}

// orderByClause returns the expressions of the outermost ORDER BY of
// query, without any OFFSET/FETCH that follows them.
func orderByClause(query string) string {
	i := strings.LastIndex(query, "ORDER BY")
	if i < 0 {
		return ""
	}
	clause := query[i+len("ORDER BY"):]
	if j := strings.Index(clause, " OFFSET "); j >= 0 {
		clause = clause[:j]
	}
	return strings.TrimSpace(clause)
}

func describeVarcharMax(ctx context.Context, t require.TestingT, env *Env) {
	describeUserName(ctx, t, env, model.WideTextsTable, "(MAX)")
}

func describeChar10(ctx context.Context, t require.TestingT, env *Env) {
	describeUserName(ctx, t, env, model.FixedTextsTable, "(10)")
}

func describeUserName(ctx context.Context, t require.TestingT, env *Env, table orm.Table, wantLength string) {
	require.NoError(t, orm.Sync(ctx, env.DB, orm.SyncOptions{Force: true}, table))

	cols, err := orm.DescribeTable(ctx, env.DB, table.Name)
	require.NoError(t, err)

	col, ok := cols["username"]
	require.True(t, ok, "username missing from %v", cols)
	require.Contains(t, col.Type, wantLength)
}

func savesBigInt(ctx context.Context, t require.TestingT, env *Env) {
	require.NoError(t, orm.Sync(ctx, env.DB, orm.SyncOptions{Force: true}, model.BigIntRecordsTable))

	const businessID int64 = 2147483648
	rec := &model.BigIntRecord{BusinessID: businessID}
	require.NoError(t, model.BigIntRecords(env.DB).Create(ctx, rec))
	require.NotZero(t, rec.ID)

	got, err := model.BigIntRecords(env.DB).Where("id = ?", rec.ID).First(ctx)
	require.NoError(t, err)
	require.Equal(t, businessID, got.BusinessID)
}

func savesBooleanTrue(ctx context.Context, t require.TestingT, env *Env) {
	require.NoError(t, orm.Sync(ctx, env.DB, orm.SyncOptions{Force: true}, model.BooleanRecordsTable))

	rec := &model.BooleanRecord{Status: true}
	require.NoError(t, model.BooleanRecords(env.DB).Create(ctx, rec))
	require.NotZero(t, rec.ID)

	got, err := model.BooleanRecords(env.DB).Where("id = ?", rec.ID).First(ctx)
	require.NoError(t, err)
	require.True(t, got.Status)
}
