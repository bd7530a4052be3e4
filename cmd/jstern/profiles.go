package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modoterra/jstern/pkg/profile"
)

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved filter profiles",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter " + profile.DefaultFileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := profile.DefaultFileName
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return report(cmd, fmt.Errorf("%s already exists", path))
			}
			if err := profile.Save(profile.Example(), path); err != nil {
				return report(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check the profile file for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, path, err := loadProfiles(opts, args)
			if err != nil {
				return report(cmd, err)
			}
			errs := profile.Validate(f)
			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", e)
				}
				return report(cmd, fmt.Errorf("%s: %d validation error(s)", path, len(errs)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d profiles)\n", path, len(f.Profiles))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [file]",
		Short: "List profile names",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := loadProfiles(opts, args)
			if err != nil {
				return report(cmd, err)
			}
			for _, name := range f.Names() {
				p := f.Profiles[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, p.SourceKind())
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd, listCmd)
	return cmd
}

// loadProfiles loads the file named by args, --config or the search path.
func loadProfiles(opts *options, args []string) (*profile.File, string, error) {
	explicit := opts.configPath
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := profile.Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return nil, "", errors.New("no " + profile.DefaultFileName + " found; run 'jstern profile init'")
	}
	f, err := profile.Load(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}
