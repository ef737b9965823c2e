package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-administration/internal/audit"
	auditPostgres "github.com/frahmantamala/hr-administration/internal/audit/postgres"
	"github.com/frahmantamala/hr-administration/pkg/logger"
)

var (
	auditAccountID int64
	auditAction    string
	auditLimit     int
	auditOffset    int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read the account audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logger.LoggerWrapper()

		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := initDB(cfg.Database, lg)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		f := audit.Filter{Action: audit.Action(auditAction), Limit: auditLimit, Offset: auditOffset}
		if auditAccountID > 0 {
			f.AccountID = &auditAccountID
		}

		page, err := audit.NewService(auditPostgres.NewReader(db.SQLX), lg).ListEntries(cmd.Context(), f)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIMESTAMP\tENTRY\tOBJECT")
		for _, e := range page.Entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", e.ID, e.Timestamp.Format(time.RFC3339), e, e.ObjectID)
		}
		fmt.Fprintf(tw, "\n%d of %d entries\n", len(page.Entries), page.Total)
		return tw.Flush()
	},
}

func init() {
	auditListCmd.Flags().Int64Var(&auditAccountID, "account-id", 0, "only entries for this account")
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "only entries with this action (Created, Updated, Deleted)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", audit.DefaultPageSize, "page size")
	auditListCmd.Flags().IntVar(&auditOffset, "offset", 0, "entries to skip")

	auditCmd.AddCommand(auditListCmd)
}
