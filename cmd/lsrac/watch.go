package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newWatchCmd re-runs allocate whenever a file under dir changes, useful
// when iterating on the demo module's shape without restarting the tool.
func newWatchCmd(log *logrus.Logger) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run allocate whenever a file under --dir changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Add(dir); err != nil {
				return err
			}

			log.WithField("dir", dir).Info("watching for changes")
			allocate := newAllocateCmd(log)
			for {
				select {
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					log.WithField("file", filepath.Base(ev.Name)).Debug("change detected, re-allocating")
					if err := allocate.RunE(allocate, nil); err != nil {
						log.WithError(err).Error("allocate failed")
					}
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					log.WithError(err).Error("watcher error")
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to watch")
	return cmd
}
