package app

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/daemon"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/groups"
)

// groupsFlags select the group set and the acting user of a CSV command.
type groupsFlags struct {
	unit     string
	groupSet uint
	as       string
	file     string
}

var groupsOpts groupsFlags

func init() { //nolint: gochecknoinits
	pf := groupsCmd.PersistentFlags()
	pf.StringVar(&groupsOpts.unit, "unit", "", "unit code")
	pf.UintVar(&groupsOpts.groupSet, "group-set", 0, "group set id")
	pf.StringVar(&groupsOpts.as, "as", "admin", "username the command acts as")
	pf.StringVarP(&groupsOpts.file, "file", "f", "", "CSV file, stdout/stdin when empty")

	_ = groupsCmd.MarkPersistentFlagRequired("unit")
	_ = groupsCmd.MarkPersistentFlagRequired("group-set")

	groupsCmd.AddCommand(groupsExportCmd, groupsImportCmd)
	rootCmd.AddCommand(groupsCmd)
}

var (
	groupsCmd = &cobra.Command{
		Use:   "groups",
		Short: "Exchange the groups of a group set as CSV",
	}

	groupsExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the groups and members of a group set as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, u, err := groupsEngine(cmd.Context())
			if err != nil {
				return err
			}

			out, err := svc.ExportCSV(cmd.Context(), actor, u.ID, groupsOpts.groupSet)
			if err != nil {
				return err
			}

			if groupsOpts.file == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			return errors.Wrap(os.WriteFile(groupsOpts.file, out, 0o600), "failed to write CSV") //nolint:mnd
		},
	}

	groupsImportCmd = &cobra.Command{
		Use:   "import",
		Short: "Create groups and add members from a CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, u, err := groupsEngine(cmd.Context())
			if err != nil {
				return err
			}

			var data []byte
			if groupsOpts.file == "" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(groupsOpts.file)
			}

			if err != nil {
				return errors.Wrap(err, "failed to read CSV")
			}

			report, err := svc.ImportCSV(cmd.Context(), actor, u.ID, groupsOpts.groupSet, data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(report)
		},
	}
)

// groupsEngine opens the database and resolves the acting user and the unit.
func groupsEngine(ctx context.Context) (*groups.Service, *models.User, *models.Unit, error) {
	gdb, err := daemon.Open(&cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	gdb = gdb.WithContext(ctx)

	actor, err := unit.UserByUsername(gdb, groupsOpts.as)
	if err != nil {
		return nil, nil, nil, err
	}

	u, err := unit.GetByCode(gdb, groupsOpts.unit)
	if err != nil {
		return nil, nil, nil, err
	}

	return groups.NewService(gdb, auth.NewService(gdb)), actor, u, nil
}
