package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claimaudit/claimaudit/internal/engine"
)

// runRules prints the rule catalog from a freshly built engine.
func runRules(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	infos := engine.NewDefault().Rules()

	if asJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("encode rule catalog: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%-9s %-38s %-16s %-9s %s\n", "RULE", "NAME", "CATEGORY", "SEVERITY", "ENABLED")
	for _, info := range infos {
		fmt.Printf("%-9s %-38s %-16s %-9s %t\n",
			info.RuleID, info.Name, info.Category, info.Severity, info.Enabled)
	}
	fmt.Printf("\n%d rules registered\n", len(infos))

	return nil
}
