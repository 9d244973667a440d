package cli

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/snippets"
)

var snippetServerURL string

var snippetCmd = &cobra.Command{
	Use:   "snippet [html|nextjs|vue]",
	Short: "Generate the tracker and waitlist form for an existing page",
	Long: `Print copy-paste-ready markup that loads /vq.js and renders a waitlist
form the tracker binds to. Use this when the landing page is hosted
somewhere else and only the API runs on this server.

Without a framework argument you are asked to pick one.

Examples:
  validateiq snippet html
  validateiq snippet nextjs --server-url https://waitlist.example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnippet,
}

func init() {
	snippetCmd.Flags().StringVarP(&snippetServerURL, "server-url", "s", "", "public server URL (default from VIQ_SERVER_URL)")
	rootCmd.AddCommand(snippetCmd)
}

func runSnippet(cmd *cobra.Command, args []string) error {
	var fw snippets.Framework
	var err error
	if len(args) == 1 {
		fw, err = snippets.ParseFramework(args[0])
	} else {
		fw, err = promptFramework()
	}
	if err != nil {
		return err
	}

	url := snippetServerURL
	if url == "" {
		url = cfg.BaseURL()
	}

	files, err := snippets.Generate(fw, url)
	if err != nil {
		return fmt.Errorf("failed to generate snippet: %w", err)
	}

	printSnippets(files)
	return nil
}

func promptFramework() (snippets.Framework, error) {
	frameworks := []struct {
		Name      string
		Framework snippets.Framework
	}{
		{"HTML (vanilla JavaScript)", snippets.FrameworkHTML},
		{"Next.js", snippets.FrameworkNextJS},
		{"Vue", snippets.FrameworkVue},
	}

	items := make([]string, len(frameworks))
	for i, f := range frameworks {
		items[i] = f.Name
	}

	prompt := promptui.Select{
		Label: "Select framework",
		Items: items,
		Size:  len(items),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return frameworks[idx].Framework, nil
}

func printSnippets(files []snippets.SnippetFile) {
	for i, file := range files {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(strings.Repeat("=", 62))
		fmt.Printf(" %s\n", file.Filename)
		fmt.Println(strings.Repeat("=", 62))
		fmt.Println()
		fmt.Println(file.Content)
	}
}
