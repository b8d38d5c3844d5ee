package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/modfile"

	"github.com/ormkit/ormgen/internal/gen"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Source      string
	Destination string
	Types       []string
	Table       string
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate query code for the structs of a Go file",
		Long: `Generate query code for every struct with db fields in a Go file.

The output file is named after the source file with a _gen.go suffix. It is
written next to the source unless --destination names another directory,
in which case the generated package imports the source package.

Examples:
  //go:generate go tool ormgen gen --source=$GOFILE
  //go:generate go tool ormgen gen --source=$GOFILE --destination=../query
  ormgen gen --source model/user.go --type User --table members`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGen(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", os.Getenv("GOFILE"), "Go source file (defaults to $GOFILE)")
	cmd.Flags().StringVar(&opts.Destination, "destination", "", "output directory (defaults to the source directory)")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "only generate for these struct types")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table name; requires exactly one --type")

	return cmd
}

func runGen(cmd *cobra.Command, opts *GenOptions) error {
	logger, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.Source == "" {
		return NewExitError(ExitCommandError, errors.New("--source is required outside go:generate"))
	}
	if opts.Table != "" && len(opts.Types) != 1 {
		return NewExitError(ExitCommandError, errors.New("--table requires exactly one --type"))
	}

	infos, err := gen.Parse(opts.Source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.Source, err)
	}
	infos, err = selectTypes(infos, opts.Types)
	if err != nil {
		return NewExitError(ExitCommandError, err)
	}
	for _, info := range infos {
		info.TableName = gen.InferTableName(info.Name)
		if opts.Table != "" {
			info.TableName = opts.Table
		}
	}

	srcDir := filepath.Dir(opts.Source)
	peers, err := parsePeers(srcDir, opts.Source)
	if err != nil {
		return err
	}
	renderOpt := gen.RenderOption{PeerInfos: peers}

	outDir := srcDir
	if opts.Destination != "" {
		outDir = opts.Destination
		sourceImport, err := importPath(srcDir)
		if err != nil {
			return err
		}
		renderOpt.DestPkg = filepath.Base(outDir)
		renderOpt.SourceImport = sourceImport
	}

	src, err := gen.RenderFile(infos, renderOpt)
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Source, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil { //nolint:gosec // generated code should be world-readable
		return fmt.Errorf("create %s: %w", outDir, err)
	}
	outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(opts.Source), ".go")+"_gen.go")
	if err := os.WriteFile(outPath, src, 0o644); err != nil { //nolint:gosec // generated code should be world-readable
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	logger.Info().Str("file", outPath).Int("structs", len(infos)).Msg("generated")
	return nil
}

func selectTypes(infos []*gen.StructInfo, types []string) ([]*gen.StructInfo, error) {
	if len(types) == 0 {
		if len(infos) == 0 {
			return nil, errors.New("no structs with db fields found")
		}
		return infos, nil
	}
	var selected []*gen.StructInfo
	for _, name := range types {
		i := slices.IndexFunc(infos, func(info *gen.StructInfo) bool { return info.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("type %s not found", name)
		}
		selected = append(selected, infos[i])
	}
	return selected, nil
}

// parsePeers parses the other Go files of dir so relations to structs
// declared there can be join-scanned.
func parsePeers(dir, source string) ([]*gen.StructInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var peers []*gen.StructInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_gen.go") || strings.HasSuffix(name, "_test.go") ||
			name == filepath.Base(source) {
			continue
		}
		infos, err := gen.Parse(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		peers = append(peers, infos...)
	}
	return peers, nil
}

// importPath resolves the import path of the package in dir from the
// nearest enclosing go.mod.
func importPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for modDir := abs; ; {
		data, err := os.ReadFile(filepath.Join(modDir, "go.mod"))
		switch {
		case err == nil:
			module := modfile.ModulePath(data)
			if module == "" {
				return "", fmt.Errorf("%s has no module directive", filepath.Join(modDir, "go.mod"))
			}
			rel, err := filepath.Rel(modDir, abs)
			if err != nil {
				return "", fmt.Errorf("resolve %s: %w", dir, err)
			}
			return path.Join(module, filepath.ToSlash(rel)), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("read go.mod: %w", err)
		}
		parent := filepath.Dir(modDir)
		if parent == modDir {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		modDir = parent
	}
}
