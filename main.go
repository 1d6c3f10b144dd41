package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/kylesnowschwartz/claude-logview/config"
	"github.com/kylesnowschwartz/claude-logview/logging"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoInput is returned when no file was given, stdin is a terminal and no
// session log could be discovered.
var errNoInput = errors.New("no input: pass a session file or pipe JSONL on stdin")

// options are the command-line flags. Flags left unset do not override the
// config file.
type options struct {
	follow     bool
	dump       bool
	width      int
	expand     bool
	configPath string
	theme      string
}

// source is where entries come from: a session log or piped input.
type source struct {
	name  string
	path  string // empty for stdin
	stdin bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "claude-logview [file.jsonl]",
		Short: "Browse Claude Code conversation logs in the terminal",
		Long: `Browse Claude Code JSONL conversation logs.

With no file argument, reads JSONL piped on stdin, or opens the most
recently modified session under ~/.claude/projects.

Example:
  claude-logview ~/.claude/projects/my-app/3f2a1b4c.jsonl
  claude-logview -f
  tail -f session.jsonl | claude-logview
  claude-logview --dump --width 100 session.jsonl > session.txt`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.follow, "follow", "f", false, "follow the log as it grows")
	f.BoolVar(&opts.dump, "dump", false, "print the rendered log to stdout and exit")
	f.IntVar(&opts.width, "width", 0, "render width for --dump (default: terminal width, else 100)")
	f.BoolVar(&opts.expand, "expand", false, "start with every entry expanded")
	f.StringVar(&opts.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	f.StringVar(&opts.theme, "theme", "", "color theme: auto, dark or light")

	cmd.AddCommand(newConfigCmd(&opts))
	return cmd
}

// newConfigCmd writes the effective settings to the config file so they
// can be edited.
func newConfigCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the current settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("follow") {
		cfg.Follow = opts.follow
	}
	if flags.Changed("theme") {
		cfg.Theme = opts.theme
		cfg.Validate()
	}

	src, err := resolveSource(args, os.Stdin)
	if err != nil {
		return err
	}

	if opts.dump {
		logging.Discard()
		entries, err := readAll(src, os.Stdin)
		if err != nil {
			return err
		}
		width := opts.width
		if width <= 0 {
			width = 100
			if w, _, ok := terminalSize(); ok {
				width = w
			}
		}
		return runDump(cmd.OutOrStdout(), cfg, entries, width, opts.expand)
	}

	closer, logPath, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	logs := logging.NewBuffer(cfg.LogBufferCapacity)
	logging.AddHook(logs)
	log := logging.Named("main")
	log.WithFields(logging.Fields{
		"source": src.name,
		"config": cfg.Source,
		"log":    logPath,
	}).Info("starting")

	keys, unknown := newKeyMap(cfg.Keybindings)
	for _, action := range unknown {
		log.WithField("action", action).Warn("unknown keybinding action")
	}

	dark := resolveDark(cfg.Theme)
	th := newTheme(dark)
	cache := viewstate.NewRenderCache(cfg.RenderCacheCapacity)
	renderer := newEntryRenderer(th, newMDRenderer(dark, false), newJSONHL(dark, detectProfile()), cache,
		cfg.CollapseThreshold, cfg.SummaryLines)
	renderer.setUsageRates(cfg.PricingTable(), cfg.MaxContextTokens)

	m := newModel(cfg, keys, th, renderer, logs)
	m.sourceName = src.name
	m.sourcePath = src.path
	if w, h, ok := terminalSize(); ok {
		m.width, m.height = w, h
	}

	progOpts := termSizeOpts()
	if src.stdin {
		// Keys come from the terminal while stdin carries the log.
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("open terminal for input: %w", err)
		}
		defer tty.Close()
		progOpts = append(progOpts, tea.WithInput(tty))

		f := newStdinFeed(os.Stdin)
		go f.run()
		m.attachFeed(f)
	} else {
		tail := newFileTail(src.path)
		entries, err := tail.read()
		if err != nil {
			if len(entries) == 0 {
				return err
			}
			log.WithError(err).Warn("initial read")
		}
		m.tail = tail
		m.ingest(entries)
		m.selectSession(m.lastSession())
		if cfg.Follow {
			m.startWatcher()
		}
	}

	m.ensureLayout()
	if opts.expand {
		for _, s := range m.log.Sessions() {
			s.Main().SetAllExpanded(true, m.params(), m.calc())
		}
		m.log.RecomputeStartLines()
	}
	if c := m.conv(); c != nil && cfg.Follow {
		c.SetScroll(viewstate.Bottom{})
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(model); ok {
		fm.stopFeed()
	}
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	log.Info("exit")
	return nil
}

// resolveSource picks the input: an explicit file ("-" means stdin), piped
// stdin, else the newest session log on this machine.
func resolveSource(args []string, stdin *os.File) (source, error) {
	if len(args) == 1 && args[0] != "-" {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return source{}, err
		}
		if _, err := os.Stat(path); err != nil {
			return source{}, err
		}
		return source{name: filepath.Base(path), path: path}, nil
	}
	if len(args) == 1 || !term.IsTerminal(int(stdin.Fd())) {
		return source{name: "stdin", stdin: true}, nil
	}

	root, err := parser.ProjectsDir()
	if err != nil {
		return source{}, fmt.Errorf("%w: %v", errNoInput, err)
	}
	path, err := parser.DiscoverLatestSession(root)
	if err != nil {
		return source{}, fmt.Errorf("%w: no session under %s", errNoInput, root)
	}
	return source{name: filepath.Base(path), path: path}, nil
}

// readAll loads every entry of src at once, for --dump.
func readAll(src source, stdin io.Reader) ([]parser.ConversationEntry, error) {
	if !src.stdin {
		return newFileTail(src.path).read()
	}
	s := parser.NewStream(stdin)
	var entries []parser.ConversationEntry
	for {
		e, ok := s.Next()
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	return entries, s.Err()
}

// terminalSize reports the size of the first of stdout, stdin and stderr
// that is a terminal.
func terminalSize() (width, height int, ok bool) {
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				return w, h, true
			}
		}
	}
	return 0, 0, false
}

func termSizeOpts() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if w, h, ok := terminalSize(); ok {
		opts = append(opts, tea.WithWindowSize(w, h))
	}
	return opts
}
