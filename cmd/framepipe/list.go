package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framepipe/framepipe/internal/pipeline"
)

// newListCommand creates the list subcommand.
func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded pipelines, their order, and current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			descriptors, runtime, err := loadPipelines(opts, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, file := range runtime.Order {
				d := descriptors[file]
				marker := " "
				if runtime.IsActive(file) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s", marker, file)
				if d.Name != file {
					fmt.Fprintf(out, " (%s)", d.Name)
				}
				if d.Version != "" {
					fmt.Fprintf(out, " v%s", d.Version)
				}
				fmt.Fprintln(out)
				if d.Desc != "" {
					fmt.Fprintf(out, "    %s\n", d.Desc)
				}
				if !d.HasSettings() {
					continue
				}
				for _, key := range d.Settings.Keys() {
					st, _ := d.Settings.Get(key)
					code := d.Mappings[key]
					if code == pipeline.TypeCombo {
						labels := pipeline.ComboLabels(st.Tooltip)
						idx, _ := st.Value.(int)
						if idx >= 0 && idx < len(labels) {
							fmt.Fprintf(out, "    %s = %s (%v)\n", key, labels[idx], st.Value)
							continue
						}
					}
					fmt.Fprintf(out, "    %s = %v [%s]\n", key, st.Value, code)
				}
			}
			return nil
		},
	}
}
