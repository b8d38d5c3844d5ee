package orm

// TableNamer lets a model pick its table name instead of the pluralised
// snake_case one the generator infers, e.g. "Users" or "dbo.LoginLogs".
type TableNamer interface {
	TableName() string
}

// ResolveTableName returns T's TableName when T or *T implements
// TableNamer, and inferred otherwise. Generated code calls it so a
// TableName method added after generation still takes effect.
func ResolveTableName[T any](inferred string) string {
	if tn, ok := any(new(T)).(TableNamer); ok {
		return tn.TableName()
	}
	return inferred
}
