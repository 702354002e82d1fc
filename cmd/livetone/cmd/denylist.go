package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var denyListFormat string

var denyListCmd = &cobra.Command{
	Use:   "denylist",
	Short: "Print the effective deny-list",
	Long: `Print the deny-list scripts are checked against: the embedded default,
or the file named by --denylist or LIVETONE_DENYLIST.

Output formats:
  json - JSON (default), loadable with --denylist
  yaml - YAML, loadable with --denylist`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadValidator()
		if err != nil {
			return err
		}
		policy := v.DenyList().Config()

		var data []byte
		switch denyListFormat {
		case "json":
			data, err = json.MarshalIndent(policy, "", "  ")
			data = append(data, '\n')
		case "yaml":
			data, err = yaml.Marshal(policy)
		default:
			return fmt.Errorf("invalid format %q: valid formats are json, yaml", denyListFormat)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	denyListCmd.Flags().StringVarP(&denyListFormat, "format", "f", "json", "output format (json, yaml)")
	rootCmd.AddCommand(denyListCmd)
}
