package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
)

// Watcher reports changes to map, tileset and template documents in a set
// of directories, at most once per file every debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	Events   chan string
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
}

func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		debounce: debounce,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmx", ".tsx", ".tx":
		return true
	}
	return false
}

func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isDocument(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// documentDirs lists the directories of every document a map depends on.
func documentDirs(m *tmx.Map, mapPath string) []string {
	base := filepath.Dir(mapPath)
	dirs := []string{base}
	add := func(source string) {
		if source == "" {
			return
		}
		dir := filepath.Join(base, filepath.FromSlash(path.Dir(source)))
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, ts := range m.Tilesets {
		add(ts.Source)
	}
	for layer := range tmx.IterLayers(m.Layers) {
		objects, ok := layer.(*tmx.ObjectLayer)
		if !ok {
			continue
		}
		for _, obj := range objects.Objects {
			if obj.Template != "" {
				add(obj.Template)
			}
		}
	}
	return dirs
}

type watchCmd struct {
	importFlags
	inputPath  string
	outputPath string
	debounce   time.Duration
}

func (c *watchCmd) Name() string     { return "watch" }
func (c *watchCmd) Synopsis() string { return "re-export a map whenever it or its documents change" }
func (c *watchCmd) Usage() string {
	return "tmxutils watch -i <path> -o <path> [-debounce <duration> -config <path> -strict -j <n>]\n"
}
func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map file path")
	f.StringVar(&c.outputPath, "o", "", "Output database file path")
	f.DurationVar(&c.debounce, "debounce", 100*time.Millisecond, "Minimum interval between rebuilds of the same file")
	c.importFlags.register(f)
}

func (c *watchCmd) rebuild(imp *importer) (*tmx.Map, error) {
	m, err := imp.importFile(c.inputPath)
	if err != nil {
		return nil, err
	}
	if !m.Report.Clean() {
		log.Printf("%d warnings:\n%s", len(m.Report.Warnings), m.Report.String())
	}
	if err := export(m, c.outputPath, true, imp); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" || c.outputPath == "" {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}

	imp, err := c.importer()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	m, err := c.rebuild(imp)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	watcher, err := NewWatcher(c.debounce, documentDirs(m, c.inputPath)...)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errs := watcher.Errors
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return subcommands.ExitSuccess
			}
			log.Printf("%s changed, rebuilding", name)
			if _, err := c.rebuild(imp); err != nil {
				log.Println(err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Println(err)
		case <-ctx.Done():
			return subcommands.ExitSuccess
		}
	}
}
