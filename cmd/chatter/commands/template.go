package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage system instruction templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := templateManager()
		if err != nil {
			return err
		}
		printTemplates(mgr.List())
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a template's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := templateManager()
		if err != nil {
			return err
		}
		tmpl, ok := mgr.Get(args[0])
		if !ok {
			return fmt.Errorf("template not found: %s", args[0])
		}
		fmt.Printf("name:        %s\n", tmpl.Name)
		fmt.Printf("description: %s\n", tmpl.Description)
		fmt.Printf("category:    %s\n", tmpl.Category)
		if len(tmpl.Tags) > 0 {
			fmt.Printf("tags:        %v\n", tmpl.Tags)
		}
		if tmpl.Builtin {
			fmt.Println("built-in:    yes")
		}
		fmt.Printf("\n%s\n", tmpl.Content)
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := templateManager()
		if err != nil {
			return err
		}
		if err := mgr.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted template %s\n", args[0])
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateDeleteCmd)
}
