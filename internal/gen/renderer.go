package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/ormkit/ormgen/internal/naming"
	"github.com/ormkit/ormgen/orm"
)

// RenderOption controls the output of RenderFile.
type RenderOption struct {
	DestPkg      string        // output package name (empty = same as source)
	SourceImport string        // import path for source package (required when DestPkg is set)
	PeerInfos    []*StructInfo // other structs in the same package (for join scan field lookups)
}

// Render generates the Go source code for a single StructInfo.
// The returned bytes are formatted by gofmt.
func Render(info *StructInfo) ([]byte, error) {
	return RenderFile([]*StructInfo{info}, RenderOption{})
}

// RenderFile generates a single Go source file for all given StructInfos.
// The returned bytes are formatted by gofmt.
func RenderFile(infos []*StructInfo, opt RenderOption) ([]byte, error) {
	if len(infos) == 0 {
		return nil, errors.New("no structs to render")
	}

	pkg := opt.DestPkg
	if pkg == "" {
		pkg = infos[0].Package
	}

	typePrefix := ""
	if opt.SourceImport != "" {
		// e.g. "github.com/example/model" → "model."
		parts := strings.Split(opt.SourceImport, "/")
		typePrefix = parts[len(parts)-1] + "."
	}

	// allInfos includes both the structs to render and peer structs from the
	// same package. Peers are used only for join scan field lookups.
	allInfos := infos
	if len(opt.PeerInfos) > 0 {
		allInfos = make([]*StructInfo, 0, len(infos)+len(opt.PeerInfos))
		allInfos = append(allInfos, infos...)
		allInfos = append(allInfos, opt.PeerInfos...)
	}

	structs := make([]templateData, 0, len(infos))
	imports := newImportSet(opt.SourceImport)

	for _, info := range infos {
		pk, err := info.PrimaryKeyField()
		if err != nil {
			return nil, err
		}
		q := qualifier{prefix: typePrefix, source: info.Imports, imports: imports}

		createdAtFields := filterFields(info.Fields, func(f FieldInfo) bool { return f.CreatedAt })
		updatedAtFields := filterFields(info.Fields, func(f FieldInfo) bool { return f.UpdatedAt })
		hasTimestamps := len(createdAtFields) > 0 || len(updatedAtFields) > 0

		defaultFields, err := buildDefaultFields(info, q)
		if err != nil {
			return nil, err
		}

		relations := buildRelationData(info, pk, typePrefix, opt.SourceImport, opt.DestPkg, allInfos, q)
		factory := naming.SnakeToCamel(info.TableName)

		data := templateData{
			TypeName:         typePrefix + info.Name,
			TableName:        info.TableName,
			FactoryName:      factory,
			TableVar:         factory + "Table",
			PK:               pk,
			Fields:           info.Fields,
			Columns:          buildColumns(info.Fields),
			ForeignKeys:      buildForeignKeys(info, relations),
			ScanFunc:         unexportedName("scan" + info.Name),
			ColValFunc:       unexportedName(info.Name + "ColumnValuePairs"),
			SetPKFunc:        unexportedName("set" + info.Name + "PK"),
			ColumnsVar:       unexportedName(factory + "Columns"),
			IsIntPK:          isIntType(pk.GoType) && pk.IsAutoIncrement(),
			Relations:        relations,
			SetCreatedAtFunc: unexportedName("set" + info.Name + "CreatedAt"),
			SetUpdatedAtFunc: unexportedName("set" + info.Name + "UpdatedAt"),
			CreatedAtFields:  createdAtFields,
			UpdatedAtFields:  updatedAtFields,
			HasTimestamps:    hasTimestamps,
			DefaultsFunc:     unexportedName("set" + info.Name + "Defaults"),
			DefaultFields:    defaultFields,
		}
		structs = append(structs, data)
	}

	hasRelations := false
	fileHasTimestamps := imports.time
	hasDefaults := false
	for _, s := range structs {
		if len(s.Relations) > 0 {
			hasRelations = true
		}
		if s.HasTimestamps {
			fileHasTimestamps = true
		}
		if len(s.DefaultFields) > 0 {
			hasDefaults = true
		}
	}

	fileData := fileTemplateData{
		Package:       pkg,
		SourceImport:  opt.SourceImport,
		HasRelations:  hasRelations,
		HasTimestamps: fileHasTimestamps,
		HasDefaults:   hasDefaults,
		ExtraImports:  imports.entries,
		Structs:       structs,
	}

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, fileData); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gofmt: %w", err)
	}
	return src, nil
}

type importEntry struct {
	Alias string // empty means the last path segment is used as-is
	Path  string
}

type fileTemplateData struct {
	Package       string
	SourceImport  string
	HasRelations  bool
	HasTimestamps bool
	HasDefaults   bool
	ExtraImports  []importEntry
	Structs       []templateData
}

type templateData struct {
	TypeName         string
	TableName        string
	FactoryName      string
	TableVar         string
	PK               *FieldInfo
	Fields           []FieldInfo
	Columns          []string // orm.Column literals
	ForeignKeys      []foreignKeyTemplateData
	ScanFunc         string
	ColValFunc       string
	SetPKFunc        string
	ColumnsVar       string
	IsIntPK          bool
	Relations        []relationTemplateData
	SetCreatedAtFunc string
	SetUpdatedAtFunc string
	CreatedAtFields  []FieldInfo
	UpdatedAtFields  []FieldInfo
	HasTimestamps    bool
	DefaultsFunc     string
	DefaultFields    []defaultFieldTemplateData
}

type foreignKeyTemplateData struct {
	Column    string
	RefType   string // target type, for orm.ResolveTableName
	RefTable  string // inferred target table
	RefColumn string
	OnDelete  string
}

type defaultFieldTemplateData struct {
	Name     string
	GoType   string // qualified for the destination package
	IsString bool
}

type relationTemplateData struct {
	FieldName        string // "Posts"
	ParentType       string // "model.User" or "User" (parent struct type)
	TargetType       string // "model.Post" or "Post"
	TargetFactory    string // "Posts"
	ForeignKey       string // "user_id"
	ForeignKeyField  string // "UserID"
	RelType          string // "has_many", "belongs_to", "has_one", or "many_to_many"
	IsPointer        bool   // true if the source field is a pointer (e.g. *UserEmail)
	PreloaderName    string // "preloadUserPosts"
	KeyType          string // Go type for map key ("int")
	ParentPKField    string // "ID"
	JoinTargetTable  string
	JoinTargetColumn string
	JoinSourceTable  string
	JoinSourceColumn string
	FKIsPointer      bool   // true if the foreign key field is a pointer type (e.g. *string)
	JoinTable        string // many_to_many only: "user_tags"
	References       string // many_to_many only: "tag_id"
	TargetTable      string // many_to_many only: target table name "tags"
	TargetPKColumn   string // target PK column, "id" unless the target declares another
	TargetPKField    string // target PK Go field, "ID" unless the target declares another

	// Related-record helper (has_many / has_one, target parsed).
	CreateFunc     string // "CreateUserPost"
	ChildFKField   string // FK field on the target, e.g. "UserID"
	ChildFKPointer bool

	// Join scan support (belongs_to / has_one, same-package only).
	// nil when join scan is not supported (cross-package, has_many, many_to_many).
	JoinScanFields    []FieldInfo // target struct's DB fields
	JoinSelectColumns []string    // target column names for JoinConfig.SelectColumns
	JoinPKGoType      string      // target PK Go type, e.g. "int", scanned through *JoinPKGoType
	JoinPKName        string      // target PK Go field name, e.g. "ID"
}

func (d templateData) NonPKFields() []FieldInfo {
	var fields []FieldInfo
	for _, f := range d.Fields {
		if !f.PrimaryKey {
			fields = append(fields, f)
		}
	}
	return fields
}

func (d templateData) CreatedAtColumns() []string {
	cols := make([]string, len(d.CreatedAtFields))
	for i, f := range d.CreatedAtFields {
		cols[i] = f.Column
	}
	return cols
}

var funcMap = template.FuncMap{
	"join": strings.Join,
	"quote": func(s string) string {
		return `"` + s + `"`
	},
	"hasPrefix": strings.HasPrefix,
}

var fileTmpl = template.Must(template.New("gen").Funcs(funcMap).Parse(fileTemplate))

const fileTemplate = `// Code generated by ormgen; DO NOT EDIT.
package {{.Package}}

import (
	{{- if .HasRelations}}
	"context"
	{{- end}}
	"database/sql"
	{{- if .HasTimestamps}}
	"time"
	{{- end}}
	{{- if .HasDefaults}}

	"github.com/google/uuid"
	{{- end}}

	"github.com/ormkit/ormgen/orm"
	{{- if .HasRelations}}
	"github.com/ormkit/ormgen/scope"
	{{- end}}
	{{- if .SourceImport}}
	"{{.SourceImport}}"
	{{- end}}
	{{- range .ExtraImports}}
	{{- if .Alias}}
	{{.Alias}} "{{.Path}}"
	{{- else}}
	"{{.Path}}"
	{{- end}}
	{{- end}}
)
{{range .Structs}}
// {{.FactoryName}} returns a new Query for the {{.TableName}} table.
func {{.FactoryName}}(db orm.Querier) *orm.Query[{{.TypeName}}] {
	q := orm.NewQuery[{{.TypeName}}](
		db, orm.ResolveTableName[{{.TypeName}}]("{{.TableName}}"), {{.ColumnsVar}}, "{{.PK.Column}}",
		{{.ScanFunc}}, {{.ColValFunc}}, {{if .IsIntPK}}{{.SetPKFunc}}{{else}}nil{{end}},
	)
	{{- range .Relations}}
	{{- if ne .RelType "many_to_many"}}
	q.RegisterJoin("{{.FieldName}}", orm.JoinConfig{
		TargetTable: orm.ResolveTableName[{{.TargetType}}]("{{.JoinTargetTable}}"), TargetColumn: "{{.JoinTargetColumn}}",
		SourceTable: orm.ResolveTableName[{{.ParentType}}]("{{.JoinSourceTable}}"), SourceColumn: "{{.JoinSourceColumn}}",
		{{- if .JoinSelectColumns}}
		SelectColumns: []string{ {{- range $i, $c := .JoinSelectColumns}}{{if $i}}, {{end}}{{quote $c}}{{end -}} },
		{{- end}}
	})
	{{- end}}
	q.RegisterPreloader("{{.FieldName}}", {{.PreloaderName}})
	{{- end}}
	{{- if .DefaultFields}}
	q.RegisterDefaults({{.DefaultsFunc}})
	{{- end}}
	{{- if .HasTimestamps}}
	q.RegisterTimestamps(
		{{if .CreatedAtFields}}[]string{ {{- range $i, $c := .CreatedAtColumns}}{{if $i}}, {{end}}{{quote $c}}{{end -}} }{{else}}nil{{end}},
		{{if .CreatedAtFields}}{{.SetCreatedAtFunc}}{{else}}nil{{end}},
		{{if .UpdatedAtFields}}{{.SetUpdatedAtFunc}}{{else}}nil{{end}},
	)
	{{- end}}
	return q
}

// {{.TableVar}} is the schema of the {{.TableName}} table.
var {{.TableVar}} = orm.Table{
	Name: orm.ResolveTableName[{{.TypeName}}]("{{.TableName}}"),
	Columns: []orm.Column{
		{{- range .Columns}}
		{{.}},
		{{- end}}
	},
	{{- if .ForeignKeys}}
	ForeignKeys: []orm.ForeignKey{
		{{- range .ForeignKeys}}
		{Column: "{{.Column}}", RefTable: orm.ResolveTableName[{{.RefType}}]("{{.RefTable}}"), RefColumn: "{{.RefColumn}}",
			{{- if .OnDelete}} OnDelete: "{{.OnDelete}}",{{end}} OnUpdate: "CASCADE"},
		{{- end}}
	},
	{{- end}}
}

var {{.ColumnsVar}} = []string{ {{- range $i, $f := .Fields}}{{if $i}}, {{end}}{{quote $f.Column}}{{end -}} }

func {{.ScanFunc}}(rows *sql.Rows) ({{.TypeName}}, error) {
	cols, _ := rows.Columns()
	var v {{.TypeName}}
	{{- range .Relations}}
	{{- if and .JoinScanFields .IsPointer}}
	var joinScan{{.FieldName}}PK *{{.JoinPKGoType}}
	var joinScan{{.FieldName}} {{.TargetType}}
	{{- end}}
	{{- end}}
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		{{- range .Fields}}
		case {{quote .Column}}:
			dest[i] = &v.{{.Name}}
		{{- end}}
		{{- range $rel := .Relations}}
		{{- range $f := $rel.JoinScanFields}}
		{{- if and $rel.IsPointer $f.PrimaryKey}}
		case "{{$rel.FieldName}}__{{$f.Column}}":
			dest[i] = &joinScan{{$rel.FieldName}}PK
		{{- else if $rel.IsPointer}}
		case "{{$rel.FieldName}}__{{$f.Column}}":
			dest[i] = &joinScan{{$rel.FieldName}}.{{$f.Name}}
		{{- else}}
		case "{{$rel.FieldName}}__{{$f.Column}}":
			dest[i] = &v.{{$rel.FieldName}}.{{$f.Name}}
		{{- end}}
		{{- end}}
		{{- end}}
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	{{- range .Relations}}
	{{- if and .JoinScanFields .IsPointer}}
	if joinScan{{.FieldName}}PK != nil {
		joinScan{{.FieldName}}.{{.JoinPKName}} = *joinScan{{.FieldName}}PK
		v.{{.FieldName}} = &joinScan{{.FieldName}}
	}
	{{- end}}
	{{- end}}
	return v, err
}

func {{.ColValFunc}}(v *{{.TypeName}}, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{ {{- range $i, $f := .Fields}}{{if $i}}, {{end}}{{quote $f.Column}}{{end -}} },
			[]any{ {{- range $i, $f := .Fields}}{{if $i}}, {{end}}v.{{$f.Name}}{{end -}} }
	}
	return []string{ {{- range $i, $f := .NonPKFields}}{{if $i}}, {{end}}{{quote $f.Column}}{{end -}} },
		[]any{ {{- range $i, $f := .NonPKFields}}{{if $i}}, {{end}}v.{{$f.Name}}{{end -}} }
}
{{if .IsIntPK}}
func {{.SetPKFunc}}(v *{{.TypeName}}, id int64) {
	v.{{.PK.Name}} = {{.PK.GoType}}(id)
}
{{end}}
{{- if .DefaultFields}}

func {{.DefaultsFunc}}(v *{{.TypeName}}) {
	{{- range .DefaultFields}}
	{{- if .IsString}}
	if v.{{.Name}} == "" {
		v.{{.Name}} = uuid.NewString()
	}
	{{- else}}
	if v.{{.Name}} == ({{.GoType}}{}) {
		v.{{.Name}} = {{.GoType}}(uuid.New())
	}
	{{- end}}
	{{- end}}
}
{{- end}}
{{- if .CreatedAtFields}}

func {{.SetCreatedAtFunc}}(v *{{.TypeName}}, now time.Time) {
	{{- range .CreatedAtFields}}
	{{- if hasPrefix .GoType "*"}}
	if v.{{.Name}} == nil {
		v.{{.Name}} = &now
	}
	{{- else}}
	if v.{{.Name}}.IsZero() {
		v.{{.Name}} = now
	}
	{{- end}}
	{{- end}}
}
{{- end}}
{{- if .UpdatedAtFields}}

func {{.SetUpdatedAtFunc}}(v *{{.TypeName}}, now time.Time) {
	{{- range .UpdatedAtFields}}
	{{- if hasPrefix .GoType "*"}}
	v.{{.Name}} = &now
	{{- else}}
	v.{{.Name}} = now
	{{- end}}
	{{- end}}
}
{{- end}}
{{- range .Relations}}
{{- if .CreateFunc}}

// {{.CreateFunc}} inserts child with its {{.ForeignKey}} set to parent's primary key.
func {{.CreateFunc}}(ctx context.Context, db orm.Querier, parent *{{.ParentType}}, child *{{.TargetType}}) error {
	return orm.CreateRelated(ctx, {{.TargetFactory}}(db), parent, child, func(p *{{.ParentType}}, c *{{.TargetType}}) {
		{{- if .ChildFKPointer}}
		key := p.{{.ParentPKField}}
		c.{{.ChildFKField}} = &key
		{{- else}}
		c.{{.ChildFKField}} = p.{{.ParentPKField}}
		{{- end}}
	})
}
{{- end}}
{{- if eq .RelType "has_many"}}

func {{.PreloaderName}}(ctx context.Context, db orm.Querier, results []{{.ParentType}}) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]{{.KeyType}}, len(results))
	for i := range results {
		ids[i] = results[i].{{.ParentPKField}}
	}
	var related []{{.TargetType}}
	for _, chunk := range orm.ChunkKeys(db, ids) {
		rows, err := {{.TargetFactory}}(db).Scopes(scope.In("{{.ForeignKey}}", chunk)).All(ctx)
		if err != nil {
			return err
		}
		related = append(related, rows...)
	}
	byFK := make(map[{{.KeyType}}][]{{.TargetType}})
	for _, r := range related {
		byFK[r.{{.ForeignKeyField}}] = append(byFK[r.{{.ForeignKeyField}}], r)
	}
	for i := range results {
		results[i].{{.FieldName}} = byFK[results[i].{{.ParentPKField}}]
	}
	return nil
}
{{- else if eq .RelType "has_one"}}

func {{.PreloaderName}}(ctx context.Context, db orm.Querier, results []{{.ParentType}}) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]{{.KeyType}}, len(results))
	for i := range results {
		ids[i] = results[i].{{.ParentPKField}}
	}
	var related []{{.TargetType}}
	for _, chunk := range orm.ChunkKeys(db, ids) {
		rows, err := {{.TargetFactory}}(db).Scopes(scope.In("{{.ForeignKey}}", chunk)).All(ctx)
		if err != nil {
			return err
		}
		related = append(related, rows...)
	}
	{{- if .IsPointer}}
	byFK := make(map[{{.KeyType}}]*{{.TargetType}})
	for i := range related {
		byFK[related[i].{{.ForeignKeyField}}] = &related[i]
	}
	{{- else}}
	byFK := make(map[{{.KeyType}}]{{.TargetType}})
	for _, r := range related {
		byFK[r.{{.ForeignKeyField}}] = r
	}
	{{- end}}
	for i := range results {
		results[i].{{.FieldName}} = byFK[results[i].{{.ParentPKField}}]
	}
	return nil
}
{{- else if eq .RelType "many_to_many"}}

func {{.PreloaderName}}(ctx context.Context, db orm.Querier, results []{{.ParentType}}) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]{{.KeyType}}, len(results))
	for i := range results {
		ids[i] = results[i].{{.ParentPKField}}
	}
	pairs, err := orm.QueryJoinTable[{{.KeyType}}, {{.KeyType}}]( //nolint:lll
		ctx, db, "{{.JoinTable}}", "{{.ForeignKey}}", "{{.References}}", ids,
	)
	if err != nil {
		return err
	}
	targetIDs := orm.UniqueTargets(pairs)
	var related []{{.TargetType}}
	for _, chunk := range orm.ChunkKeys(db, targetIDs) {
		rows, err := {{.TargetFactory}}(db).Scopes(scope.In("{{.TargetPKColumn}}", chunk)).All(ctx)
		if err != nil {
			return err
		}
		related = append(related, rows...)
	}
	byPK := make(map[{{.KeyType}}]{{.TargetType}})
	for _, r := range related {
		byPK[r.{{.TargetPKField}}] = r
	}
	grouped := orm.GroupBySource(pairs)
	for i := range results {
		tIDs := grouped[results[i].{{.ParentPKField}}]
		items := make([]{{.TargetType}}, 0, len(tIDs))
		for _, tid := range tIDs {
			if v, ok := byPK[tid]; ok {
				items = append(items, v)
			}
		}
		results[i].{{.FieldName}} = items
	}
	return nil
}
{{- else}}

func {{.PreloaderName}}(ctx context.Context, db orm.Querier, results []{{.ParentType}}) error {
	if len(results) == 0 {
		return nil
	}
	{{- if .FKIsPointer}}
	ids := make([]{{.KeyType}}, 0, len(results))
	for i := range results {
		if results[i].{{.ForeignKeyField}} != nil {
			ids = append(ids, *results[i].{{.ForeignKeyField}})
		}
	}
	{{- else}}
	ids := make([]{{.KeyType}}, len(results))
	for i := range results {
		ids[i] = results[i].{{.ForeignKeyField}}
	}
	{{- end}}
	var related []{{.TargetType}}
	for _, chunk := range orm.ChunkKeys(db, ids) {
		rows, err := {{.TargetFactory}}(db).Scopes(scope.In("{{.TargetPKColumn}}", chunk)).All(ctx)
		if err != nil {
			return err
		}
		related = append(related, rows...)
	}
	{{- if .IsPointer}}
	byPK := make(map[{{.KeyType}}]*{{.TargetType}})
	for i := range related {
		byPK[related[i].{{.TargetPKField}}] = &related[i]
	}
	{{- else}}
	byPK := make(map[{{.KeyType}}]{{.TargetType}})
	for _, r := range related {
		byPK[r.{{.TargetPKField}}] = r
	}
	{{- end}}
	for i := range results {
		{{- if .FKIsPointer}}
		if results[i].{{.ForeignKeyField}} != nil {
			results[i].{{.FieldName}} = byPK[*results[i].{{.ForeignKeyField}}]
		}
		{{- else}}
		results[i].{{.FieldName}} = byPK[results[i].{{.ForeignKeyField}}]
		{{- end}}
	}
	return nil
}
{{- end}}
{{- end}}
{{end}}`

// InferTableName converts a CamelCase type name to a snake_case plural
// table name, e.g. "User" → "users", "LoginLog" → "login_logs".
func InferTableName(typeName string) string {
	return inflection.Plural(naming.CamelToSnake(typeName))
}

func buildRelationData(
	info *StructInfo, pk *FieldInfo, typePrefix, sourceImport, destPkg string, allInfos []*StructInfo, q qualifier,
) []relationTemplateData {
	if len(info.Relations) == 0 {
		return nil
	}

	rels := make([]relationTemplateData, 0, len(info.Relations))

	for _, rel := range info.Relations {
		targetTable := InferTableName(rel.TargetType)
		targetFactory := naming.SnakeToCamel(targetTable)

		// Determine type prefix for the target type.
		targetTypePrefix := typePrefix
		isCrossPkg := rel.TargetImportPath != "" && rel.TargetImportPath != sourceImport
		if isCrossPkg {
			alias := resolveAlias(rel.TargetImportPath, sourceImport)
			targetTypePrefix = alias + "."
			q.imports.add(rel.TargetImportPath, alias)
		}

		// For cross-package relations with a separate dest package, the target
		// factory lives in the external query package, not the current one.
		if isCrossPkg && destPkg != "" && sourceImport != "" {
			extQueryImport := replaceLastSegment(rel.TargetImportPath, destPkg)
			destQueryImport := replaceLastSegment(sourceImport, destPkg)
			if extQueryImport != destQueryImport {
				queryAlias := resolveAlias(extQueryImport, destQueryImport)
				targetFactory = queryAlias + "." + targetFactory
				q.imports.add(extQueryImport, queryAlias)
			}
		}

		var targetInfo *StructInfo
		if !isCrossPkg {
			targetInfo = findStructInfo(allInfos, rel.TargetType)
		}
		targetPKColumn, targetPKField := "id", "ID" // convention when the target is not parsed
		if targetInfo != nil {
			if targetPK, err := targetInfo.PrimaryKeyField(); err == nil {
				targetPKColumn, targetPKField = targetPK.Column, targetPK.Name
			}
		}

		rd := relationTemplateData{
			FieldName:       rel.FieldName,
			ParentType:      typePrefix + info.Name,
			TargetType:      targetTypePrefix + rel.TargetType,
			TargetFactory:   targetFactory,
			ForeignKey:      rel.ForeignKey,
			ForeignKeyField: naming.SnakeToCamel(rel.ForeignKey),
			RelType:         rel.RelType,
			IsPointer:       rel.IsPointer,
			PreloaderName:   unexportedName("preload" + info.Name + rel.FieldName),
			ParentPKField:   pk.Name,
			TargetPKColumn:  targetPKColumn,
			TargetPKField:   targetPKField,
		}

		switch rel.RelType {
		case "has_many", "has_one":
			rd.KeyType = q.qualify(pk.GoType)
			rd.JoinTargetTable = targetTable
			rd.JoinTargetColumn = rel.ForeignKey
			rd.JoinSourceTable = info.TableName
			rd.JoinSourceColumn = pk.Column
			if targetInfo != nil {
				if fk, ok := targetInfo.FieldByColumn(rel.ForeignKey); ok {
					rd.ForeignKeyField = fk.Name
					rd.CreateFunc = "Create" + info.Name + inflection.Singular(rel.FieldName)
					rd.ChildFKField = fk.Name
					rd.ChildFKPointer = strings.HasPrefix(fk.GoType, "*")
				}
			}
		case "many_to_many":
			rd.KeyType = q.qualify(pk.GoType)
			rd.JoinTable = rel.JoinTable
			rd.References = rel.References
			rd.TargetTable = targetTable
		default: // belongs_to
			fkType := "int" // fallback
			if fk, ok := info.FieldByColumn(rel.ForeignKey); ok {
				fkType = fk.GoType
				rd.ForeignKeyField = fk.Name
			}
			if strings.HasPrefix(fkType, "*") {
				rd.FKIsPointer = true
				fkType = fkType[1:]
			}
			rd.KeyType = q.qualify(fkType)
			rd.JoinTargetTable = targetTable
			rd.JoinTargetColumn = targetPKColumn
			rd.JoinSourceTable = info.TableName
			rd.JoinSourceColumn = rel.ForeignKey
		}

		// Populate join scan fields for belongs_to / has_one when the target
		// struct is in the same package (available in allInfos).
		if (rel.RelType == "belongs_to" || rel.RelType == "has_one") && targetInfo != nil {
			rd.JoinScanFields = targetInfo.Fields
			rd.JoinSelectColumns = make([]string, len(targetInfo.Fields))
			for i, f := range targetInfo.Fields {
				rd.JoinSelectColumns[i] = f.Column
			}
			if targetPK, err := targetInfo.PrimaryKeyField(); err == nil && rel.IsPointer {
				rd.JoinPKGoType = q.qualify(targetPK.GoType)
				rd.JoinPKName = targetPK.Name
			}
		}

		rels = append(rels, rd)
	}
	return rels
}

// buildColumns renders one orm.Column literal per field.
func buildColumns(fields []FieldInfo) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		var b strings.Builder
		fmt.Fprintf(&b, "{Name: %q, Type: orm.%s", f.Column, columnTypeIdents[f.ColumnType()])
		switch {
		case f.Size == orm.SizeMax:
			b.WriteString(", Size: orm.SizeMax")
		case f.Size > 0:
			fmt.Fprintf(&b, ", Size: %d", f.Size)
		}
		if f.PrimaryKey {
			b.WriteString(", PrimaryKey: true")
		}
		if f.IsAutoIncrement() {
			b.WriteString(", AutoIncrement: true")
		}
		if f.NotNull {
			b.WriteString(", NotNull: true")
		}
		b.WriteByte('}')
		cols[i] = b.String()
	}
	return cols
}

var columnTypeIdents = map[orm.ColumnType]string{
	orm.Integer:   "Integer",
	orm.BigInt:    "BigInt",
	orm.Boolean:   "Boolean",
	orm.String:    "String",
	orm.Char:      "Char",
	orm.Text:      "Text",
	orm.UUID:      "UUID",
	orm.Timestamp: "Timestamp",
}

// buildForeignKeys derives constraints from belongs_to relations. A
// nullable key is cleared when its target row is deleted.
func buildForeignKeys(info *StructInfo, rels []relationTemplateData) []foreignKeyTemplateData {
	var fks []foreignKeyTemplateData
	for _, rd := range rels {
		if rd.RelType != "belongs_to" {
			continue
		}
		fk, ok := info.FieldByColumn(rd.ForeignKey)
		if !ok {
			continue
		}
		fkd := foreignKeyTemplateData{
			Column:    rd.ForeignKey,
			RefType:   rd.TargetType,
			RefTable:  rd.JoinTargetTable,
			RefColumn: rd.TargetPKColumn,
		}
		if strings.HasPrefix(fk.GoType, "*") {
			fkd.OnDelete = "SET NULL"
		}
		fks = append(fks, fkd)
	}
	return fks
}

func buildDefaultFields(info *StructInfo, q qualifier) ([]defaultFieldTemplateData, error) {
	var out []defaultFieldTemplateData
	for _, f := range info.Fields {
		if f.Default == "" {
			continue
		}
		if strings.HasPrefix(f.GoType, "*") || strings.HasPrefix(f.GoType, "[]") {
			return nil, fmt.Errorf("%s.%s: default:%s needs a value type, got %s", info.Name, f.Name, f.Default, f.GoType)
		}
		out = append(out, defaultFieldTemplateData{
			Name:     f.Name,
			GoType:   q.qualify(f.GoType),
			IsString: f.GoType == "string",
		})
	}
	return out, nil
}

// importSet collects the extra imports a generated file needs.
type importSet struct {
	source  string
	seen    map[string]bool
	entries []importEntry
	time    bool
}

func newImportSet(sourceImport string) *importSet {
	return &importSet{source: sourceImport, seen: make(map[string]bool)}
}

func (s *importSet) add(path, alias string) {
	switch path {
	case "time":
		s.time = true
		return
	case "database/sql", "github.com/google/uuid", s.source:
		return
	}
	if s.seen[path] {
		return
	}
	s.seen[path] = true
	entry := importEntry{Path: path}
	if alias != path[strings.LastIndex(path, "/")+1:] {
		entry.Alias = alias
	}
	s.entries = append(s.entries, entry)
}

// qualifier rewrites field types from the source package for use in the
// destination package.
type qualifier struct {
	prefix  string            // "model." when generating into another package
	source  map[string]string // import name → path in the source file
	imports *importSet
}

func (q qualifier) qualify(goType string) string {
	switch {
	case strings.HasPrefix(goType, "*"):
		return "*" + q.qualify(goType[1:])
	case strings.HasPrefix(goType, "[]"):
		return "[]" + q.qualify(goType[2:])
	}
	if pkg, _, ok := strings.Cut(goType, "."); ok {
		if path, found := q.source[pkg]; found {
			q.imports.add(path, pkg)
		}
		return goType
	}
	if goType != "" && unicode.IsUpper([]rune(goType)[0]) {
		return q.prefix + goType
	}
	return goType
}

// resolveAlias determines the import alias for an external package.
// If the last path segment conflicts with the source import's last segment,
// it prepends the previous segment to disambiguate.
func resolveAlias(importPath, sourceImport string) string {
	parts := strings.Split(importPath, "/")
	lastSeg := parts[len(parts)-1]

	if sourceImport == "" {
		return lastSeg
	}

	srcParts := strings.Split(sourceImport, "/")
	srcLastSeg := srcParts[len(srcParts)-1]

	if lastSeg != srcLastSeg {
		return lastSeg
	}

	// Conflict: e.g. both end in "model". Use previous segment + last segment.
	if len(parts) >= 2 {
		return parts[len(parts)-2] + lastSeg
	}
	return lastSeg
}

// replaceLastSegment replaces the last path segment of an import path.
// e.g. replaceLastSegment("github.com/foo/model", "query") → "github.com/foo/query"
func replaceLastSegment(importPath, newSeg string) string {
	i := strings.LastIndex(importPath, "/")
	if i < 0 {
		return newSeg
	}
	return importPath[:i+1] + newSeg
}

func unexportedName(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func filterFields(fields []FieldInfo, pred func(FieldInfo) bool) []FieldInfo {
	var out []FieldInfo
	for _, f := range fields {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

func findStructInfo(infos []*StructInfo, name string) *StructInfo {
	for _, info := range infos {
		if info.Name == name {
			return info
		}
	}
	return nil
}

func isIntType(goType string) bool {
	switch goType {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64":
		return true
	default:
		return false
	}
}
