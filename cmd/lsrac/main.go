// Command lsrac runs the linear-scan allocator over the built-in demo IR
// module (internal/demo) and reports the resulting register assignments; it
// does not read IR modules from files. It is the worked example for packages
// lsra and ir, not a production compiler driver.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("lsrac: command failed")
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lsrac",
		Short: "Run the linear-scan register allocator over an IR module",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newAllocateCmd(log))
	cmd.AddCommand(newWatchCmd(log))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the IR schema version this build accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), minIRSchemaVersion.String())
			return nil
		},
	}
}
