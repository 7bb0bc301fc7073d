package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jchaskell/cr/internal/parser"
	"github.com/jchaskell/cr/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Parse transcripts as they appear in a directory",
	Long: `Watches dir (DATA_DIR by default) and saves every transcript file
created there to the database. Pair it with a scheduled "crecord daily".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchDB string

// settleDelay is how long a file must stay unchanged before it is parsed.
var settleDelay = 500 * time.Millisecond

func init() {
	watchCmd.Flags().StringVar(&watchDB, "db", cfg.DBPath, "SQLite database to save records to")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)
	p, err := newParser(log)
	if err != nil {
		return err
	}
	st, err := store.Open(watchDB)
	if err != nil {
		return err
	}
	defer st.Close()

	dir := dirArg(args)
	ctx := commandContext(cmd)
	cmd.Printf("Watching %s (database %s)\n", dir, watchDB)
	return watchDir(ctx, dir, log.Component("watch"), func(path string) {
		rec, err := loadRecord(path, p, cfg.PDFFallbackPdftotext, "", "")
		if err == nil {
			err = emit(ctx, rec, nil, st)
		}
		if err != nil {
			log.WithError(err).WithField("file", path).Error("parse failed")
			return
		}
		log.WithFields(logrus.Fields{"file": path, "turns": rec.TurnCount()}).Info("stored transcript")
	})
}

// watchDir calls handle once for each supported file created or rewritten in
// dir, after it has been quiet for settleDelay. It returns when ctx is done.
func watchDir(ctx context.Context, dir string, log *logrus.Entry, handle func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !parser.IsSupportedExtension(evt.Name) {
				continue
			}
			path := filepath.Clean(evt.Name)
			log.WithField("file", path).Debug("detected file")

			mu.Lock()
			if t, ok := pending[path]; ok && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(settleDelay, func() {
				defer wg.Done()
				mu.Lock()
				if pending[path] == timer {
					delete(pending, path)
				}
				mu.Unlock()
				handle(path)
			})
			pending[path] = timer
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}
