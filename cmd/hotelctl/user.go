package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var in app.Registration
	var role string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a user; the only way to create an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			// tokens are not issued here
			svc := app.NewAuthService(mysqlrepo.New(db), auth.NewHasher(), nil)
			u, err := svc.CreateUser(cmd.Context(), in, domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created %s %q (id %d)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	c.Flags().StringVar(&in.Name, "name", "", "display name")
	c.Flags().StringVar(&in.Email, "email", "", "login email")
	c.Flags().StringVar(&in.Password, "password", "", "password (min 6 characters)")
	c.Flags().StringVar(&in.TelNo, "tel", "", "telephone number")
	c.Flags().StringVar(&role, "role", string(domain.RoleUser), "user or admin")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
