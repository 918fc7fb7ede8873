package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cosmocode/sheetauth/storage/model"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(modCmd)
	rootCmd.AddCommand(delCmd)
	rootCmd.AddCommand(checkSchemaCmd)

	listCmd.Flags().StringVar(&listFilterUser, "user", "", "only list logins matching this pattern")
	listCmd.Flags().StringVar(&listFilterName, "name", "", "only list full names matching this pattern")
	listCmd.Flags().StringVar(&listFilterMail, "mail", "", "only list mail addresses matching this pattern")
	listCmd.Flags().StringVar(&listFilterGrps, "grps", "", "only list accounts with a group matching this pattern")

	addCmd.Flags().StringVar(&addName, "name", "", "the account's full name")
	addCmd.Flags().StringVar(&addMail, "mail", "", "the account's mail address")
	addCmd.Flags().StringSliceVar(&addGroups, "groups", nil, "the account's groups")

	modCmd.Flags().StringVar(&modPassword, "password", "", "set a new password")
	modCmd.Flags().StringVar(&modName, "name", "", "set a new full name")
	modCmd.Flags().StringVar(&modMail, "mail", "", "set a new mail address")
	modCmd.Flags().StringSliceVar(&modGroups, "groups", nil, "replace the account's groups")
}

var (
	listFilterUser string
	listFilterName string
	listFilterMail string
	listFilterGrps string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the accounts in the auth sheet",
	PreRunE: loadDirectory,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := model.FilterSpec{}
		if listFilterUser != "" {
			filter["user"] = listFilterUser
		}
		if listFilterName != "" {
			filter["name"] = listFilterName
		}
		if listFilterMail != "" {
			filter["mail"] = listFilterMail
		}
		if listFilterGrps != "" {
			filter["grps"] = listFilterGrps
		}
		users, err := directory.Enumerate(cmd.Context(), 0, 0, filter)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "LOGIN\tNAME\tMAIL\tGROUPS")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Login, u.Name, u.Mail, model.JoinGroups(u.Groups))
		}
		return w.Flush()
	},
}

var (
	addName   string
	addMail   string
	addGroups []string
)

var addCmd = &cobra.Command{
	Use:     "add <login> <password>",
	Short:   "Add an account to the auth sheet",
	Args:    cobra.ExactArgs(2),
	PreRunE: loadDirectory,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := directory.Create(cmd.Context(), args[0], args[1], addName, addMail, addGroups); err != nil {
			return err
		}
		fmt.Printf("added account '%s'\n", args[0])
		return nil
	},
}

var (
	modPassword string
	modName     string
	modMail     string
	modGroups   []string
)

var modCmd = &cobra.Command{
	Use:     "mod <login>",
	Short:   "Modify an account in the auth sheet",
	Args:    cobra.ExactArgs(1),
	PreRunE: loadDirectory,
	RunE: func(cmd *cobra.Command, args []string) error {
		var changes model.FieldChanges
		if cmd.Flags().Changed("password") {
			changes.Password = &modPassword
		}
		if cmd.Flags().Changed("name") {
			changes.Name = &modName
		}
		if cmd.Flags().Changed("mail") {
			changes.Mail = &modMail
		}
		if cmd.Flags().Changed("groups") {
			changes.Groups = &modGroups
		}
		if changes.IsZero() {
			return errors.New("nothing to change")
		}
		if err := directory.Update(cmd.Context(), args[0], changes); err != nil {
			return err
		}
		fmt.Printf("modified account '%s'\n", args[0])
		return nil
	},
}

var delCmd = &cobra.Command{
	Use:     "del <login>...",
	Short:   "Delete accounts from the auth sheet",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: loadDirectory,
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := directory.Delete(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d account(s)\n", deleted)
		return nil
	},
}

var checkSchemaCmd = &cobra.Command{
	Use:     "check-schema",
	Short:   "Verify that the auth sheet header has all required columns",
	PreRunE: loadDirectory,
	RunE: func(cmd *cobra.Command, args []string) error {
		valid, err := directory.ValidateSchema(cmd.Context())
		if err != nil {
			return err
		}
		if !valid {
			return errors.Errorf("sheet header is missing one of the required columns: %s", model.JoinGroups(model.RequiredColumns))
		}
		fmt.Println("sheet header is valid")
		return nil
	},
}
