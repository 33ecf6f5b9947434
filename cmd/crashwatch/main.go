package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/crashwatch/internal/api"
	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/ingest"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/narrative"
	"github.com/lox/crashwatch/internal/store"
)

// Globals are shared by every command.
type Globals struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,default='.env',name=env-file,help='Path to .env file'"`

	Data       string `help:"Dataset location: a path, file://, http(s):// or ftp:// URL." env:"CRASHWATCH_DATA" required:""`
	Categories string `help:"Category tables YAML. Defaults to the built-in tables." env:"CRASHWATCH_CATEGORIES"`
	TZ         string `name:"tz" help:"Time zone the crash timestamps are recorded in." env:"CRASHWATCH_TZ" default:"America/Chicago"`
	DB         string `name:"db" help:"SQLite load ledger. Empty disables it." env:"CRASHWATCH_DB" default:"data/crashwatch.db"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Serve the dashboard."`
	Summary SummaryCmd `cmd:"" help:"Print the derived tables."`
	Export  ExportCmd  `cmd:"" help:"Write the derived tables as CSV files."`
}

type ServeCmd struct {
	Port         string `help:"HTTP server port." env:"CRASHWATCH_PORT" default:"8080"`
	OpenAIAPIKey string `name:"openai-api-key" help:"Enables generated narrative text." env:"OPENAI_API_KEY"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env, err := g.load(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	var writer narrative.Writer
	if c.OpenAIAPIKey != "" {
		gen, err := narrative.NewGenerator(c.OpenAIAPIKey)
		if err != nil {
			return err
		}
		writer = gen
	} else {
		log.Println("narrative: no API key, serving static text")
	}

	server := api.NewServer(api.Config{
		Dataset:    env.dataset,
		Categories: env.set,
		Store:      env.store,
		Narrative:  narrative.NewService(writer),
		Palette:    figures.DefaultPalette,
		Port:       c.Port,
		Location:   env.loc,
	})
	return server.Run(ctx)
}

type SummaryCmd struct{}

func (c *SummaryCmd) Run(g *Globals) error {
	env, err := g.load(context.Background())
	if err != nil {
		return err
	}
	defer env.close()
	if err := printSummary(os.Stdout, env.dataset, env.set); err != nil {
		return err
	}
	if env.store == nil {
		return nil
	}
	runs, err := env.store.RecentLoadRuns(5)
	if err != nil {
		return fmt.Errorf("recent load runs: %w", err)
	}
	return printLoadRuns(os.Stdout, runs)
}

type ExportCmd struct {
	Out string `help:"Directory to write CSV files into." required:"" type:"path"`
}

func (c *ExportCmd) Run(g *Globals) error {
	env, err := g.load(context.Background())
	if err != nil {
		return err
	}
	defer env.close()

	files, err := exportTables(c.Out, env.dataset, env.set)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.Printf("export: wrote %s", f)
	}
	return nil
}

type environment struct {
	dataset *models.Dataset
	set     *categories.Set
	store   *store.Store
	loc     *time.Location
}

func (e *environment) close() {
	if e.store != nil {
		e.store.Close()
	}
}

// openLedger opens the load ledger at path. The ledger is optional: an
// empty path or any failure returns nil and the load goes ahead without it.
func openLedger(path string, loc *time.Location) *store.Store {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("store: ledger disabled, create database dir: %v", err)
		return nil
	}
	st, err := store.Open(path, loc)
	if err != nil {
		log.Printf("store: ledger disabled: %v", err)
		return nil
	}
	return st
}

// load resolves the time zone and category tables, opens the ledger and
// loads the dataset.
func (g *Globals) load(ctx context.Context) (*environment, error) {
	loc, err := time.LoadLocation(g.TZ)
	if err != nil {
		log.Printf("Warning: could not load %s timezone, using UTC: %v", g.TZ, err)
		loc = time.UTC
	}

	set, err := categories.LoadFile(g.Categories)
	if err != nil {
		return nil, err
	}

	env := &environment{set: set, loc: loc, store: openLedger(g.DB, loc)}
	loader := ingest.NewLoader(set, loc)
	if env.store != nil {
		loader.SetStore(env.store)
	}

	env.dataset, err = loader.Load(ctx, g.Data)
	if err != nil {
		env.close()
		return nil, err
	}
	return env, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("crashwatch"),
		kong.Description("Traffic accident dashboard."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}
