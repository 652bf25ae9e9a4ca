package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/app"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/spf13/cobra"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a verified staff superuser",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Services.Auth.CreatePrivilegedAccount(cmd.Context(), &services.PrivilegedAccountRequest{
			Email:       email,
			Password:    password,
			IsStaff:     true,
			IsSuperuser: true,
			IsVerified:  true,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("email", "", "Admin email address")
	createAdminCmd.Flags().String("password", "", "Admin password (min 8 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
