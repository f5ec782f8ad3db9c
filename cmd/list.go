package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type listEntry struct {
	Slug     string `json:"slug" yaml:"slug"`
	Name     string `json:"name" yaml:"name"`
	Problems int    `json:"problems" yaml:"problems"`
	Path     string `json:"path" yaml:"path"`
}

func newListCommand(opts *options) *cobra.Command {
	var (
		query  string
		format string
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := opts.resolver()
			ids, err := resolver.ModelIDs()
			if err != nil {
				return err
			}
			ids = service.FilterModels(ids, query)
			models := make([]*vo.ModelRecord, 0, len(ids))
			for _, id := range ids {
				model, err := resolver.Model(id)
				if err != nil {
					return err
				}
				models = append(models, model)
			}

			out := cmd.OutOrStdout()
			if dump {
				spew.Fdump(out, models)
				return nil
			}
			return writeList(out, format, models)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only list models whose name contains the query")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the decoded records")
	return cmd
}

func writeList(w io.Writer, format string, models []*vo.ModelRecord) error {
	entries := make([]listEntry, len(models))
	for i, model := range models {
		entries[i] = listEntry{
			Slug:     model.Slug,
			Name:     model.Name(),
			Problems: len(model.Problems),
			Path:     service.ModelPath(model.Slug),
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tNAME\tPROBLEMS\tPATH")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Slug, e.Name, e.Problems, e.Path)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
