package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// configTemplate is the starter configuration written by `parley init`.
// The API key stays out of the file; it is resolved from the environment
// at load time.
const configTemplate = `version: "1"

chat:
  system_prompt: %q
  naming:
    disabled: %t

modules:
  provider.openai:
    api_key: ${OPENAI_API_KEY}
    model: %s

  gateway.http:
    bind: %s
`

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a starter configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			var (
				model        = "gpt-4o-mini"
				bind         = "127.0.0.1:8080"
				systemPrompt string
				naming       = true
			)

			form := huh.NewForm(huh.NewGroup(
				huh.NewSelect[string]().
					Title("Model").
					Options(huh.NewOptions("gpt-4o-mini", "gpt-4o", "gpt-4.1-mini")...).
					Value(&model),
				huh.NewInput().
					Title("Gateway bind address").
					Value(&bind),
				huh.NewInput().
					Title("System prompt (optional)").
					Value(&systemPrompt),
				huh.NewConfirm().
					Title("Name sessions automatically from the first message?").
					Value(&naming),
			))
			if err := form.Run(); err != nil {
				return err
			}

			content := fmt.Sprintf(configTemplate, systemPrompt, !naming, model, bind)
			if err := os.WriteFile(output, []byte(content), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", output)
			fmt.Println("Set OPENAI_API_KEY in the environment, then run: parley start -c " + output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "parley.yaml", "Path for the generated configuration")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}
