package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/solkant/internal/featureflags"
	"github.com/aryan0dhankhar/solkant/pkg/config"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect the runtime environment",
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate environment variables and print a masked summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := cfg.Validate(); err != nil {
			fmt.Fprint(out, pterm.Warning.Sprintln("Configuration invalide:"))
			fmt.Fprintln(out, err)
			return fmt.Errorf("environment check failed")
		}
		fmt.Fprint(out, pterm.Success.Sprintln("Configuration valide"))
		return printSummary(out, cfg)
	},
}

func init() {
	envCmd.AddCommand(envCheckCmd)
}

func printSummary(out io.Writer, cfg *config.Config) error {
	table := pterm.TableData{{"SETTING", "VALUE"}}
	summary := cfg.Summary()
	for _, k := range sortedKeys(summary) {
		table = append(table, []string{k, summary[k]})
	}
	flags := featureflags.States()
	for _, k := range sortedKeys(flags) {
		table = append(table, []string{k, fmt.Sprint(flags[k])})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(table).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rendered)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
