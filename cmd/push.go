package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	internalApp "github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/docsync"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type pushFlags struct {
	config string
	server string
	token  string
	id     string
	title  string
	file   string
	watch  bool
}

// readDocument loads a ProseMirror JSON file as is and anything else as plain text
func readDocument(path string) (*document.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return document.Parse(b)
	}
	return document.FromText(string(b)), nil
}

// syncOptions takes debounce and retry settings from the config when one is found
func syncOptions(configPath string) docsync.Options {
	opts := docsync.Options{Logger: bootstrapLogger}
	if configPath == "" {
		configPath = findConfig()
	}
	if configPath == "" {
		return opts
	}
	cfg, _, err := internalApp.LoadConfig(configPath)
	if err != nil {
		bootstrapLogger.Warn("config ignored", zap.String("path", configPath), zap.Error(err))
		return opts
	}
	opts.Debounce = util.DurationOr(cfg.Sync.Debounce, docsync.DefaultDebounce)
	opts.MaxRetries = cfg.Sync.MaxRetries
	opts.RetryBackoff = util.DurationOr(cfg.Sync.RetryBackoff, docsync.DefaultRetryBackoff)
	return opts
}

func init() {
	f := new(pushFlags)

	var pushCommand = &cobra.Command{
		Use:   "push -f file [--id note_id | --title title] [--watch]",
		Short: "Push a local file into a note // 将本地文件同步到笔记",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.file == "" {
				return fmt.Errorf("--file is required")
			}
			if f.token == "" {
				f.token = os.Getenv("KB_TOKEN")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			doc, err := readDocument(f.file)
			if err != nil {
				return err
			}

			saver := docsync.NewHTTPSaver(f.server, f.token)
			var note *docsync.RemoteNote
			if f.id == "" {
				title := f.title
				if title == "" {
					title = strings.TrimSuffix(filepath.Base(f.file), filepath.Ext(f.file))
				}
				note, err = saver.Create(ctx, title, nil)
			} else {
				note, err = saver.Fetch(ctx, f.id)
			}
			if err != nil {
				return err
			}

			opts := syncOptions(f.config)
			opts.OnStateChange = func(st docsync.State, err error) {
				if err != nil {
					bootstrapLogger.Warn("sync state", zap.String("state", st.String()), zap.Error(err))
					return
				}
				bootstrapLogger.Info("sync state", zap.String("state", st.String()))
			}
			session := docsync.NewSession(note.ID, note.Version, note.Content, saver, opts)
			if err := session.Update(doc); err != nil {
				return err
			}

			if f.watch {
				if err := watchFile(f.file, session); err != nil {
					return err
				}
			}

			closeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := session.Close(closeCtx); err != nil {
				return err
			}
			fmt.Printf("%s v%d\n", note.ID, session.Version())
			return nil
		},
	}

	rootCmd.AddCommand(pushCommand)
	fs := pushCommand.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "config file for sync settings")
	fs.StringVarP(&f.server, "server", "s", "http://127.0.0.1:9100", "server url")
	fs.StringVarP(&f.token, "token", "t", "", "auth token, defaults to $KB_TOKEN")
	fs.StringVar(&f.id, "id", "", "note id; a new note is created when empty")
	fs.StringVar(&f.title, "title", "", "title for a new note")
	fs.StringVarP(&f.file, "file", "f", "", "file to push (.json for a structured document)")
	fs.BoolVarP(&f.watch, "watch", "w", false, "keep pushing on every write until interrupted")
}

// watchFile feeds every write of path into the session until SIGINT/SIGTERM
func watchFile(path string, session *docsync.Session) error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(path); err != nil {
		return err
	}
	defer w.Close()

	go func() {
		if err := w.Start(200 * time.Millisecond); err != nil {
			bootstrapLogger.Error("file watcher start error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	bootstrapLogger.Info("watching", zap.String("file", path))
	for {
		select {
		case <-w.Event:
			doc, err := readDocument(path)
			if err != nil {
				bootstrapLogger.Warn("file read error", zap.Error(err))
				continue
			}
			if err := session.Update(doc); err != nil {
				return err
			}
		case err := <-w.Error:
			bootstrapLogger.Error("file watcher error", zap.Error(err))
		case <-quit:
			return nil
		}
	}
}
