package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/ormkit/ormgen/internal/naming"
	"github.com/ormkit/ormgen/orm"
)

// FieldInfo holds parsed metadata for one struct field.
type FieldInfo struct {
	Name          string // Go field name, e.g. "ID"
	Column        string // DB column name from `db:"id"` tag
	GoType        string // Go type as string, e.g. "int", "string", "time.Time"
	PrimaryKey    bool   // true if tag contains "primaryKey"
	AutoIncrement bool   // true if tag contains "autoIncrement"
	NotNull       bool   // true if tag contains "notNull"
	Size          int    // from "size:N"; orm.SizeMax for "size:max"
	Type          string // from "type:T"; empty means inferred from GoType
	Default       string // from "default:G"; only "uuid" is supported
	CreatedAt     bool   // "createdAt" option or the CreatedAt convention
	UpdatedAt     bool   // "updatedAt" option or the UpdatedAt convention
}

// RelationInfo holds parsed metadata for a `rel` tagged field.
type RelationInfo struct {
	FieldName        string // "Posts"
	TargetType       string // "Post", without package qualifier
	TargetImportPath string // import path when the target lives in another package
	RelType          string // "has_many", "has_one", "belongs_to" or "many_to_many"
	ForeignKey       string // "user_id"
	JoinTable        string // many_to_many only
	References       string // many_to_many only
	IsPointer        bool   // *Target
	IsSlice          bool   // []Target
}

// StructInfo holds parsed metadata for the target struct.
type StructInfo struct {
	Name      string         // Go struct name, e.g. "User"
	Package   string         // Package name, e.g. "model"
	Fields    []FieldInfo    // Non-skipped db fields
	Relations []RelationInfo // rel-tagged fields
	TableName string         // Set by the caller

	// Imports maps the source file's import names to paths so field
	// types can be re-qualified in a different destination package.
	Imports map[string]string
}

// PrimaryKeyField returns the primary key field, or an error if none or
// multiple are defined.
func (s *StructInfo) PrimaryKeyField() (*FieldInfo, error) {
	var pk *FieldInfo
	for i := range s.Fields {
		if s.Fields[i].PrimaryKey {
			if pk != nil {
				return nil, fmt.Errorf("multiple primary keys: %s and %s", pk.Name, s.Fields[i].Name)
			}
			pk = &s.Fields[i]
		}
	}
	if pk == nil {
		return nil, fmt.Errorf("no primary key defined for %s", s.Name)
	}
	return pk, nil
}

// FieldByColumn returns the field mapped to column.
func (s *StructInfo) FieldByColumn(column string) (*FieldInfo, bool) {
	for i := range s.Fields {
		if s.Fields[i].Column == column {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Parse reads the Go file at path and returns StructInfo for every struct
// that has at least one column field.
func Parse(filePath string) ([]*StructInfo, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	pkg := file.Name.Name
	imports := fileImports(file)
	var infos []*StructInfo
	var parseErr error

	ast.Inspect(file, func(n ast.Node) bool {
		if parseErr != nil {
			return false
		}
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}

		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}

		info := &StructInfo{Name: ts.Name.Name, Package: pkg, Imports: imports}
		for _, field := range st.Fields.List {
			if err := parseField(info, field, imports); err != nil {
				parseErr = fmt.Errorf("%s: %w", ts.Name.Name, err)
				return false
			}
		}
		if len(info.Fields) == 0 {
			return true
		}

		infos = append(infos, info)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return infos, nil
}

// ParseType parses filePath and returns the struct named typeName.
func ParseType(filePath, typeName string) (*StructInfo, error) {
	infos, err := Parse(filePath)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name == typeName {
			return info, nil
		}
	}
	return nil, fmt.Errorf("type %s not found in %s", typeName, filePath)
}

// fileImports maps each import's local name to its path.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := path[strings.LastIndex(path, "/")+1:]
		if imp.Name != nil {
			name = imp.Name.Name
		}
		imports[name] = path
	}
	return imports
}

func parseField(info *StructInfo, field *ast.Field, imports map[string]string) error {
	if len(field.Names) == 0 {
		return nil // embedded field, skip
	}

	name := field.Names[0].Name

	// Skip unexported fields.
	if !field.Names[0].IsExported() {
		return nil
	}

	var tag reflect.StructTag
	if field.Tag != nil {
		tag = reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
	}

	if relTag, ok := tag.Lookup("rel"); ok {
		rel, err := parseRelation(name, field.Type, relTag, imports)
		if err != nil {
			return err
		}
		info.Relations = append(info.Relations, rel)
		return nil
	}

	goType := typeToString(field.Type)

	// Defaults: column inferred from field name, ID field is primary key.
	fi := FieldInfo{
		Name:       name,
		Column:     naming.CamelToSnake(name),
		GoType:     goType,
		PrimaryKey: name == "ID",
		CreatedAt:  name == "CreatedAt" && isTimeType(goType),
		UpdatedAt:  name == "UpdatedAt" && isTimeType(goType),
	}

	// Override with db tag if present.
	if dbTag, ok := tag.Lookup("db"); ok {
		if dbTag == "-" {
			return nil // explicitly skipped
		}
		if err := applyDBTag(&fi, dbTag); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}

	info.Fields = append(info.Fields, fi)
	return nil
}

// applyDBTag applies `db:"column[,option...]"` to fi.
func applyDBTag(fi *FieldInfo, dbTag string) error {
	parts := strings.Split(dbTag, ",")
	if parts[0] != "" {
		fi.Column = parts[0]
	}
	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), ":")
		switch key {
		case "primaryKey":
			fi.PrimaryKey = true
		case "autoIncrement":
			fi.AutoIncrement = true
		case "notNull":
			fi.NotNull = true
		case "createdAt":
			fi.CreatedAt = true
		case "updatedAt":
			fi.UpdatedAt = true
		case "size":
			if strings.EqualFold(value, "max") {
				fi.Size = orm.SizeMax
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid size %q", value)
			}
			fi.Size = n
		case "type":
			if _, err := orm.ParseColumnType(value); err != nil {
				return err //nolint:wrapcheck // already prefixed
			}
			fi.Type = strings.ToLower(value)
		case "default":
			if value != "uuid" {
				return fmt.Errorf("unsupported default %q", value)
			}
			fi.Default = value
		case "":
		default:
			return fmt.Errorf("unknown db tag option %q", key)
		}
	}
	return nil
}

// parseRelation parses `rel:"kind,foreign_key:col[,join_table:t,references:c]"`.
func parseRelation(fieldName string, expr ast.Expr, relTag string, imports map[string]string) (RelationInfo, error) {
	parts := strings.Split(relTag, ",")
	rel := RelationInfo{FieldName: fieldName, RelType: strings.TrimSpace(parts[0])}

	switch rel.RelType {
	case "has_many", "has_one", "belongs_to", "many_to_many":
	default:
		return RelationInfo{}, fmt.Errorf("field %s: unknown relation %q", fieldName, rel.RelType)
	}

	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), ":")
		switch key {
		case "foreign_key":
			rel.ForeignKey = value
		case "join_table":
			rel.JoinTable = value
		case "references":
			rel.References = value
		default:
			return RelationInfo{}, fmt.Errorf("field %s: unknown rel tag option %q", fieldName, key)
		}
	}
	if rel.ForeignKey == "" {
		return RelationInfo{}, fmt.Errorf("field %s: rel tag needs foreign_key", fieldName)
	}
	if rel.RelType == "many_to_many" && (rel.JoinTable == "" || rel.References == "") {
		return RelationInfo{}, fmt.Errorf("field %s: many_to_many needs join_table and references", fieldName)
	}

	t := expr
	if arr, ok := t.(*ast.ArrayType); ok && arr.Len == nil {
		rel.IsSlice = true
		t = arr.Elt
	}
	if star, ok := t.(*ast.StarExpr); ok {
		rel.IsPointer = true
		t = star.X
	}
	switch tt := t.(type) {
	case *ast.Ident:
		rel.TargetType = tt.Name
	case *ast.SelectorExpr:
		rel.TargetType = tt.Sel.Name
		if pkg, ok := tt.X.(*ast.Ident); ok {
			rel.TargetImportPath = imports[pkg.Name]
		}
	default:
		return RelationInfo{}, fmt.Errorf("field %s: unsupported relation type %s", fieldName, typeToString(expr))
	}
	return rel, nil
}

// ColumnType resolves the orm.ColumnType for f: the explicit `type:`
// option, or one inferred from the Go type.
func (f FieldInfo) ColumnType() orm.ColumnType {
	if f.Type != "" {
		if t, err := orm.ParseColumnType(f.Type); err == nil {
			return t
		}
	}
	switch strings.TrimPrefix(f.GoType, "*") {
	case "int", "int8", "int16", "int32", "uint", "uint8", "uint16", "uint32", "sql.NullInt32", "sql.NullInt16":
		return orm.Integer
	case "int64", "uint64", "sql.NullInt64":
		return orm.BigInt
	case "bool", "sql.NullBool":
		return orm.Boolean
	case "string", "sql.NullString":
		return orm.String
	case "time.Time", "sql.NullTime":
		return orm.Timestamp
	case "uuid.UUID", "mssql.UniqueIdentifier", "[16]byte":
		return orm.UUID
	default:
		return orm.Text
	}
}

// IsAutoIncrement reports whether the database generates the column's
// value. Integer primary keys are auto-increment unless they carry a
// client-side default.
func (f FieldInfo) IsAutoIncrement() bool {
	return f.AutoIncrement || (f.PrimaryKey && f.Default == "" && isIntType(f.GoType))
}

func isTimeType(goType string) bool {
	return strings.TrimPrefix(goType, "*") == "time.Time"
}

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", typeToString(t.Len), typeToString(t.Elt))
	case *ast.BasicLit:
		return t.Value
	default:
		return fmt.Sprintf("%T", expr)
	}
}
