package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordfan/internal/cli"
	"github.com/bastiangx/wordfan/internal/logger"
	"github.com/bastiangx/wordfan/internal/utils"
	"github.com/bastiangx/wordfan/pkg/config"
	"github.com/bastiangx/wordfan/pkg/provider"
	"github.com/bastiangx/wordfan/pkg/server"
	"github.com/bastiangx/wordfan/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	ucli "github.com/urfave/cli/v2"
)

var errQueryRequired = errors.New("query text is required")

func newApp() *ucli.App {
	return &ucli.App{
		Name:    AppName,
		Usage:   "Fan-out query suggestions from an autocomplete provider",
		Version: Version,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.toml (default: user config dir)",
			},
			&ucli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&ucli.BoolFlag{
				Name:  "d",
				Usage: "Toggle debug mode",
			},
		},
		Before:          setupLogger,
		HideVersion:     true,
		CommandNotFound: commandNotFound,
		Commands: []*ucli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the GraphQL autocomplete endpoint over HTTP",
				Action: serveCommand,
				Flags: []ucli.Flag{
					&ucli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
				},
			},
			{
				Name:   "ipc",
				Usage:  "Answer msgpack requests on stdin/stdout",
				Action: ipcCommand,
			},
			{
				Name:      "query",
				Usage:     "Print suggestions for one query",
				ArgsUsage: "<text>",
				Action:    queryCommand,
			},
			{
				Name:   "repl",
				Usage:  "Read queries from stdin and print suggestions for each",
				Action: replCommand,
			},
			{
				Name:  "config",
				Usage: "Manage the config file",
				Subcommands: []*ucli.Command{
					{
						Name:   "init",
						Usage:  "Write a fresh default config, replacing any existing one",
						Action: configInitCommand,
					},
					{
						Name:   "path",
						Usage:  "Print the config file in use",
						Action: configPathCommand,
					},
				},
			},
			{
				Name:   "version",
				Usage:  "Show current version",
				Action: versionCommand,
			},
		},
	}
}

func setupLogger(c *ucli.Context) error {
	return logger.Setup(c.String("log-level"), c.Bool("d"))
}

func commandNotFound(c *ucli.Context, name string) {
	fmt.Fprintf(c.App.ErrWriter, "unknown command %q, see '%s help'\n", name, AppName)
}

// loadConfig resolves and validates the config for the global --config flag.
func loadConfig(c *ucli.Context) (*config.Config, string, error) {
	cfg, path, err := config.LoadConfigWithPriority(c.String("config"))
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", config.GetActiveConfigPath(path), err)
	}
	return cfg, path, nil
}

// newEngine builds the HTTP provider and the engine around it.
func newEngine(cfg *config.Config) (*suggest.Engine, error) {
	source := provider.NewHTTPSource(
		provider.WithEndpoint(cfg.Provider.Endpoint),
		provider.WithClientID(cfg.Provider.Client),
		provider.WithTimeout(cfg.Provider.Timeout()),
		provider.WithUserAgent(cfg.Provider.UserAgent),
		provider.WithMaxBodyBytes(int64(cfg.Provider.MaxBodyBytes)),
	)

	log.Debug("Init engine",
		"endpoint", cfg.Provider.Endpoint,
		"timeout", cfg.Provider.Timeout(),
		"sequential", cfg.Engine.Sequential,
		"pool", cfg.Engine.PoolSize)

	return suggest.NewEngine(source,
		suggest.WithMinQueryLength(cfg.Engine.MinQueryLength),
		suggest.WithMaxResults(cfg.Engine.MaxResults),
		suggest.WithSuffixes(cfg.Engine.Suffixes),
		suggest.WithSequential(cfg.Engine.Sequential),
		suggest.WithPoolSize(cfg.Engine.PoolSize),
	)
}

func serveCommand(c *ucli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}
	defer engine.Release()

	srv, err := server.NewHTTPServer(engine, server.HTTPOptions{
		Addr:            cfg.Server.Addr,
		GraphQLPath:     cfg.Server.GraphQLPath,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout(),
		Logger:          logger.New("http"),
	})
	if err != nil {
		return fmt.Errorf("failed to build http server: %w", err)
	}

	showStartupInfo("graphql http://"+cfg.Server.Addr+cfg.Server.GraphQLPath, config.GetActiveConfigPath(path))
	return srv.ListenAndServe(c.Context)
}

func ipcCommand(c *ucli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}
	defer engine.Release()

	showStartupInfo("ipc (msgpack on stdio)", config.GetActiveConfigPath(path))

	// the decoder blocks on stdin, so a signal ends the command without waiting for it
	done := make(chan error, 1)
	go func() {
		done <- server.NewIPCServer(engine, os.Stdin, os.Stdout).Start(c.Context)
	}()

	select {
	case err := <-done:
		return err
	case <-c.Context.Done():
		return nil
	}
}

func queryCommand(c *ucli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return errQueryRequired
	}

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}
	defer engine.Release()

	start := time.Now()
	suggestions, err := engine.Suggest(c.Context, query)
	if err != nil {
		return err
	}
	cli.NewPrinter(c.App.Writer, cfg.CLI.ShowTiming).Print(query, suggestions, time.Since(start))
	return nil
}

func replCommand(c *ucli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}
	defer engine.Release()

	log.SetReportTimestamp(false)
	fmt.Fprintln(c.App.ErrWriter, "wordfan repl: type a query and press Enter (Ctrl+C to exit)")

	printer := cli.NewPrinter(c.App.Writer, cfg.CLI.ShowTiming)
	return cli.NewInputHandler(engine, os.Stdin, printer, cfg.Engine.MinQueryLength).Start(c.Context)
}

func configInitCommand(c *ucli.Context) error {
	path, err := config.RebuildConfigFile(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintln(c.App.Writer, config.GetActiveConfigPath(path))
	return nil
}

func configPathCommand(c *ucli.Context) error {
	if resolver, err := utils.NewPathResolver(); err == nil {
		log.Debug("Runtime info", "paths", resolver.GetRuntimeInfo())
	}
	fmt.Fprintln(c.App.Writer, config.GetActiveConfigPath(c.String("config")))
	return nil
}

func versionCommand(c *ucli.Context) error {
	l := log.NewWithOptions(c.App.ErrWriter, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ wordfan ] Fans one query out into many suggestions")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
	return nil
}
