package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-administration/internal/account"
	accountPostgres "github.com/frahmantamala/hr-administration/internal/account/postgres"
	auditPostgres "github.com/frahmantamala/hr-administration/internal/audit/postgres"
	"github.com/frahmantamala/hr-administration/internal/auth"
	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
	"github.com/frahmantamala/hr-administration/pkg/logger"
)

var (
	seedAdminUsername string
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed groups, permissions and the first administrator",
	Long: `Insert the permission catalog and default groups, then create the administrator account
through the audited account service so its creation is recorded like any other.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
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

		groups := auth.DefaultGroups()
		groupNames := make([]string, 0, len(groups))
		for name := range groups {
			groupNames = append(groupNames, name)
		}
		sort.Strings(groupNames)

		var permissions []accountDatamodel.Permission
		for _, p := range auth.Permissions() {
			permissions = append(permissions, accountDatamodel.Permission{Codename: p.Codename, Description: p.Description})
		}

		if err := accountDatamodel.EnsureCatalog(ctx, db.Gorm, groupNames, permissions); err != nil {
			return err
		}
		lg.Info("seeded catalog", "groups", groupNames, "permissions", len(permissions))

		writer := auditPostgres.NewWriter(nil, lg)
		accounts := account.NewService(accountPostgres.NewAccountRepository(db.Gorm, writer), nil, cfg.Security.BCryptCost, lg)

		admin, err := accounts.GetAccountByUsername(ctx, seedAdminUsername)
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			admin, err = accounts.CreateAccount(ctx, account.CreateAccountDTO{
				Username:  seedAdminUsername,
				FirstName: "System",
				LastName:  "Administrator",
				Email:     seedAdminEmail,
				Password:  seedAdminPassword,
				IsStaff:   true,
			})
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			lg.Info("seeded admin account", "username", admin.Username)
		case err != nil:
			return fmt.Errorf("failed to look up admin: %w", err)
		default:
			lg.Info("admin account already exists; ensuring memberships", "username", admin.Username)
		}

		if _, err := accounts.SetGroups(ctx, admin.ID, account.MembershipDTO{Names: []string{"administrators"}}); err != nil {
			return fmt.Errorf("failed to assign admin groups: %w", err)
		}
		if _, err := accounts.SetPermissions(ctx, admin.ID, account.MembershipDTO{Names: groups["administrators"]}); err != nil {
			return fmt.Errorf("failed to grant admin permissions: %w", err)
		}

		lg.Info("granted administrator permissions", "username", admin.Username, "permissions", groups["administrators"])
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminUsername, "admin-username", "admin", "username of the seeded administrator")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@example.com", "email of the seeded administrator")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "change-me-now", "initial password of the seeded administrator")
}
