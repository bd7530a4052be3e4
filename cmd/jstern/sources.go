package main

import (
	"github.com/spf13/cobra"

	"github.com/modoterra/jstern/pkg/profile"
)

func newJournalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal <unit>",
		Short: "Filter the JSON journal output of a systemd unit",
		Long: `Follow a systemd unit with journalctl and apply the same filters and
projections as the pod mode.

Example:
  jstern journal api.service -f level=error -k msg`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.resolve(cmd)
			if err != nil {
				return report(cmd, err)
			}
			p.Source = profile.SourceJournald
			p.Unit = args[0]
			if cmd.Flags().Changed("output") || p.Output == "" {
				p.Output = opts.journalOutput
			}
			return report(cmd, opts.run(cmd, p))
		},
	}
	cmd.Flags().StringVarP(&opts.journalOutput, "output", "o", "cat", "journalctl output mode")
	cmd.Flags().IntVar(&opts.journalLines, "lines", 0, "number of past journal lines to show first")
	return cmd
}

func newReplayCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Filter a saved stern log file",
		Long: `Read a file of previously captured log lines and apply the same filters
and projections as the pod mode. With --follow the file is tailed until
interrupted.

Example:
  jstern replay capture.log -s msg`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.resolve(cmd)
			if err != nil {
				return report(cmd, err)
			}
			p.Source = profile.SourceFile
			p.File = args[0]
			if cmd.Flags().Changed("follow") {
				p.Follow = opts.follow
			}
			return report(cmd, opts.run(cmd, p))
		},
	}
	cmd.Flags().BoolVarP(&opts.follow, "follow", "F", false, "keep reading as the file grows")
	cmd.Flags().BoolVar(&opts.fromEnd, "from-end", false, "with --follow, start at the end of the file")
	return cmd
}
