package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/config"
	"github.com/christophergentle/goaltracker/internal/store"
)

const usage = `Usage: goaltracker [-config file] [-verbose] <command> <action> [flags]

Commands:
  task add|list|edit|rm
  report add|list|edit|rm
  graph -task N -out file.png [-pointer x1,x2] [-remote function]
`

// app carries what every command needs
type app struct {
	cfg   *config.Config
	store *store.Store
	out   io.Writer
	today time.Time
}

func main() {
	configPath := flag.String("config", "", "Path to goaltracker.yaml (default: search current and executable directory)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetLevel(log.WarnLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	a := &app{cfg: cfg, out: os.Stdout, today: time.Now()}

	// graph -remote does not touch DynamoDB from this machine
	if !(args[0] == "graph" && hasFlag(args[1:], "remote")) {
		a.store, err = store.NewStore(ctx, cfg.Tables(), cfg.AWSOptions()...)
		if err != nil {
			log.Fatalf("Failed to connect to storage: %v", err)
		}
	}

	if err := a.run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.Load()
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "task":
		return a.runTask(ctx, args[1:])
	case "report":
		return a.runReport(ctx, args[1:])
	case "graph":
		return a.runGraph(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}
