package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
	Long: `Show and edit the configuration file (~/.cswcalc/config.toml).

Keys:
  auth.tenant_id             Directory (tenant) GUID
  auth.client_id             Application (client) GUID
  auth.authority             Identity host (default https://login.microsoftonline.com)
  auth.scopes                Comma-separated scopes (default User.Read, Files.ReadWrite)
  auth.persist_refresh       Keep refresh tokens for silent sign-in (true/false)
  workbook.path              Graph path of the workbook, or a local .xlsx file
  workbook.backend           graph or xlsx
  workbook.cellmap           JSON file overriding the cell layout
  graph.base_url             Graph endpoint (default https://graph.microsoft.com/v1.0)
  graph.requests_per_second  Request pacing
  history.dsn                Estimate history: sqlite path, memory:// or postgres://

CSWCALC_TENANT_ID, CSWCALC_CLIENT_ID and CSWCALC_WORKBOOK_PATH override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored configuration and check it",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key (an empty value removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configCellMapCmd = &cobra.Command{
	Use:   "cellmap [path]",
	Short: "Write a cell map template to edit",
	Long: `Write the default cell layout as JSON. Point workbook.cellmap at the
file after editing it to match a different workbook layout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCellMap,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCellMapCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadConfigService()
	if err != nil {
		return err
	}

	values := svc.Values()
	if len(values) == 0 {
		cmd.Println("No configuration stored.")
	}
	for _, v := range values {
		cmd.Printf("%s = %s\n", v.Key, formatConfigValue(v.Key, v.Value))
	}

	cmd.Println()
	if _, err := svc.Load(); err != nil {
		cmd.Printf("Status: %v\n", err)
		return nil
	}
	cmd.Println("Status: ok")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := loadConfigService()
	if err != nil {
		return err
	}

	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	if strings.TrimSpace(args[1]) == "" {
		cmd.Printf("Removed %s\n", args[0])
		return nil
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigCellMap(cmd *cobra.Command, args []string) error {
	path := "cellmap.json"
	if len(args) == 1 {
		path = args[0]
	}
	if err := file.WriteCellMapTemplate(path); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	cmd.Printf("Enable it with: cswcalc config set workbook.cellmap %s\n", path)
	return nil
}

// formatConfigValue renders a stored value, masking identifiers.
func formatConfigValue(key string, v any) string {
	var s string
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		s = strings.Join(parts, ", ")
	case []string:
		s = strings.Join(val, ", ")
	default:
		s = domain.FormatScalar(v)
	}
	if key == "auth.client_id" || key == "auth.tenant_id" {
		return maskID(s)
	}
	return s
}

// maskID keeps the first and last four characters of an identifier.
func maskID(id string) string {
	if len(id) <= 8 {
		return "****"
	}
	return id[:4] + "..." + id[len(id)-4:]
}
