package csvtools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/csvagent/action"
)

// Options configure a Toolkit.
type Options struct {
	// Spec is the canonical report layout. Defaults to DefaultSpec().
	Spec Spec
	// OutputDir receives cleaned files. Default "cleaned_csvs".
	OutputDir string
	// ConsolidatedName is the merged report file name. Default
	// "consolidated_report.csv".
	ConsolidatedName string
}

// Toolkit bundles the CSV housekeeping actions and their shared settings.
// All actions are stateless between calls; a Toolkit is safe to register into
// a registry shared across sessions.
type Toolkit struct {
	spec             Spec
	outputDir        string
	consolidatedName string
}

// NewToolkit constructs a Toolkit with optional overrides.
func NewToolkit(optFns ...func(o *Options)) *Toolkit {
	opts := Options{
		Spec:             DefaultSpec(),
		OutputDir:        "cleaned_csvs",
		ConsolidatedName: "consolidated_report.csv",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Toolkit{
		spec:             opts.Spec,
		outputDir:        opts.OutputDir,
		consolidatedName: opts.ConsolidatedName,
	}
}

// Register wires every toolkit action plus the conversational system actions
// into reg. Call once at startup.
func (tk *Toolkit) Register(reg *action.Registry) error {
	dirProp := map[string]any{
		"type":        "string",
		"description": "Directory to operate on; defaults to the current working directory",
	}
	centerProp := map[string]any{
		"type":        "string",
		"description": "Center keyword, fuzzy matched against file names (e.g. 'neyshabour')",
	}

	actions := []action.Action{
		action.NewFuncAction(
			"list_csv_files",
			"List all CSV files in a directory, sorted by name.",
			objectSchema(map[string]any{"dir": dirProp}, nil),
			tk.listCSVFiles,
			fileTags("list"),
		),
		action.NewFuncAction(
			"count_csv_files",
			"Count the CSV files in a directory and name them.",
			objectSchema(map[string]any{"dir": dirProp}, nil),
			tk.countCSVFiles,
			fileTags("count"),
		),
		action.NewFuncAction(
			"list_center_csv_files",
			"List the CSV files belonging to a specific center (fuzzy matched).",
			objectSchema(map[string]any{"center": centerProp, "dir": dirProp}, []string{"center"}),
			tk.listCenterCSVFiles,
			fileTags("list"),
		),
		action.NewFuncAction(
			"count_center_csv_files",
			"Count how many CSV files belong to a specific center (fuzzy matched).",
			objectSchema(map[string]any{"center": centerProp, "dir": dirProp}, []string{"center"}),
			tk.countCenterCSVFiles,
			fileTags("count"),
		),
		action.NewFuncAction(
			"match_columns",
			"Report how the header of a CSV file maps onto the expected report columns.",
			objectSchema(map[string]any{"file": map[string]any{
				"type":        "string",
				"description": "CSV file to inspect",
			}}, []string{"file"}),
			tk.matchColumns,
			fileTags("read"),
		),
		action.NewFuncAction(
			"read_project_file",
			"Read a file's contents; CSV files report their header mapping instead.",
			objectSchema(map[string]any{"name": map[string]any{
				"type":        "string",
				"description": "File to read",
			}}, []string{"name"}),
			tk.readProjectFile,
			fileTags("read"),
		),
		action.NewFuncAction(
			"clean_csv_file",
			"Clean and standardize one CSV file into the expected report layout.",
			objectSchema(map[string]any{"file": map[string]any{
				"type":        "string",
				"description": "CSV file to clean",
			}}, []string{"file"}),
			tk.cleanCSVFile,
			fileTags("clean"),
		),
		action.NewFuncAction(
			"clean_all_csv_files",
			"Clean and standardize every CSV file in a directory; reports successes and failures.",
			objectSchema(map[string]any{"dir": dirProp}, nil),
			tk.cleanAllCSVFiles,
			fileTags("clean"),
		),
		action.NewFuncAction(
			"consolidate_csv_files",
			"Merge previously cleaned CSV files into one consolidated report.",
			objectSchema(map[string]any{"dir": map[string]any{
				"type":        "string",
				"description": "Directory of cleaned files; defaults to the cleaning output directory",
			}}, nil),
			tk.consolidateCSVFiles,
			fileTags("clean"),
		),
		action.NewFuncAction(
			"say",
			"Respond to the user conversationally when no file operation is required.",
			objectSchema(map[string]any{"message": map[string]any{
				"type":        "string",
				"description": "Message shown to the user",
			}}, []string{"message"}),
			say,
			func(o *action.Options) { o.Tags = []string{"system"} },
		),
		action.NewFuncAction(
			"terminate",
			"End the session with a final message once the task is complete or the user asks to stop.",
			objectSchema(map[string]any{"message": map[string]any{
				"type":        "string",
				"description": "Final message returned before terminating",
			}}, []string{"message"}),
			terminate,
			func(o *action.Options) { o.Terminal = true; o.Tags = []string{"system"} },
		),
	}

	for _, a := range actions {
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

func fileTags(extra string) func(o *action.Options) {
	return func(o *action.Options) { o.Tags = []string{"file_operations", extra} }
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func strArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func (tk *Toolkit) listCSVFiles(_ context.Context, args map[string]any) (any, error) {
	return listCSVs(strArg(args, "dir"))
}

func (tk *Toolkit) countCSVFiles(_ context.Context, args map[string]any) (any, error) {
	dir := strArg(args, "dir")
	files, err := listCSVs(dir)
	if err != nil {
		return nil, err
	}
	location := "the current directory"
	if dir != "" && dir != "." {
		location = fmt.Sprintf("directory %q", dir)
	}
	switch len(files) {
	case 0:
		return fmt.Sprintf("No CSV files found in %s.", location), nil
	case 1:
		return fmt.Sprintf("Found 1 CSV file in %s: %s", location, files[0]), nil
	default:
		return fmt.Sprintf("Found %d CSV files in %s: %s", len(files), location, strings.Join(files, ", ")), nil
	}
}

func (tk *Toolkit) listCenterCSVFiles(_ context.Context, args map[string]any) (any, error) {
	matching, _, err := centerFiles(strArg(args, "center"), strArg(args, "dir"))
	return matching, err
}

func (tk *Toolkit) countCenterCSVFiles(_ context.Context, args map[string]any) (any, error) {
	matching, normalized, err := centerFiles(strArg(args, "center"), strArg(args, "dir"))
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Found %d CSV files related to center %q.", len(matching), normalized), nil
}

func (tk *Toolkit) readProjectFile(ctx context.Context, args map[string]any) (any, error) {
	name := strArg(args, "name")
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return tk.matchColumns(ctx, map[string]any{"file": name})
	}
	return readTextFile(name)
}

func say(_ context.Context, args map[string]any) (any, error) {
	return strArg(args, "message"), nil
}

func terminate(_ context.Context, args map[string]any) (any, error) {
	return strArg(args, "message") + "\nTerminating...", nil
}
