package main

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.3.0"

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version [minimum]",
		Short: "print the version, or check it against a minimum",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := semver.ParseTolerant(version)
			if err != nil {
				return errors.WrapPrefix(err, "build version "+version, 0)
			}
			if len(args) == 1 {
				minimum, err := semver.ParseTolerant(args[0])
				if err != nil {
					return errors.WrapPrefix(err, "minimum version", 0)
				}
				if cur.LT(minimum) {
					return errors.Errorf("version %s is older than required %s", cur, minimum)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "resample v%s\n", cur)
			return nil
		},
	}
}
