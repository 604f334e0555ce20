// cmd/admin/main.go
//
// Adept runtime – admin CLI.
//
// Commands
// --------
//
//	adept-admin config      print the resolved configuration as JSON
//	adept-admin workers     print the resolved worker topology
//	adept-admin check       exit non-zero when resolution fails
//	adept-admin redis-url   print an ioredis:// URL for the broker in effect
//
// The CLI resolves through the same config.Repository as the server, so
// what it prints is exactly what a server started with the same
// environment would run with.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/AdeptTravel/adept-runtime/internal/config"
	"github.com/AdeptTravel/adept-runtime/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Bootstrap()

	if err := run(os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses args and executes one command.  A nil src snapshots the
// process environment plus the --env-file overlay.
func run(args []string, out io.Writer, src config.Source) error {
	app := kingpin.New("adept-admin", "Adept runtime administration")
	app.Terminate(nil)
	app.UsageWriter(out)
	app.ErrorWriter(out)
	envFile := app.Flag("env-file", "Flat YAML file layered under the process environment").String()

	cfgCmd := app.Command("config", "Print the resolved configuration as JSON.")
	showRedis := cfgCmd.Flag("show-redis", "Include the broker connection (password redacted).").Bool()
	workersCmd := app.Command("workers", "Print the resolved worker topology.")
	checkCmd := app.Command("check", "Resolve the configuration and report errors.")
	redisCmd := app.Command("redis-url", "Print an ioredis:// URL for the broker in effect.")

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	if src == nil {
		src = config.SnapshotSource(context.Background(), config.SnapshotOptions{EnvFile: *envFile})
	}
	cfg, err := config.NewRepository(src).Get()
	if err != nil {
		return err
	}

	switch cmd {
	case cfgCmd.FullCommand():
		return printConfig(out, cfg, *showRedis)
	case workersCmd.FullCommand():
		for _, w := range cfg.Workers {
			fmt.Fprintln(out, w)
		}
	case checkCmd.FullCommand():
		fmt.Fprintf(out, "configuration OK (%d worker(s), redis %s)\n", len(cfg.Workers), cfg.Queue.Connection.Source)
		if cfg.Environment.IsProduction() && cfg.Database.URL == "" && cfg.Database.Password == config.DefaultDBPassword {
			fmt.Fprintln(out, "warning: production is using the default database password")
		}
	case redisCmd.FullCommand():
		url, err := config.EncodeRedisURL(cfg.Redis)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, url)
	}
	return nil
}

func printConfig(out io.Writer, cfg *config.Config, showRedis bool) error {
	view := map[string]any{"config": cfg}
	if showRedis {
		r := cfg.Redis
		if r.Password != "" {
			r.Password = "********"
		}
		view["redis"] = map[string]any{"source": cfg.Queue.Connection.Source.String(), "options": r}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
