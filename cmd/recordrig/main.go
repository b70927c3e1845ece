// Command recordrig runs one RECORD session from a configuration file.
//
// Usage:
//
//	recordrig --config session.yaml run [--list saved_trial_list.csv] [--decider prompt|all|roi]
//	recordrig ports
//	recordrig archive sessions.db
//
// Configuration is read from the file, then RECORD_* environment variables,
// which may come from a .env file. Before the session starts the trial list
// can be reshuffled, regenerated, loaded or saved interactively. Ctrl-C stops
// the session after the current step; completed trials are still exported.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wagiedev/recordrig-go"
	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/export"
	"github.com/wagiedev/recordrig-go/internal/serialport"
)

type flags struct {
	configPath string
	envPath    string
	listPath   string
	decider    string
	tracking   string
	archive    string
	yes        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:  "recordrig",
		Usage: "run RECORD behavioral sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Sources: cli.EnvVars("RECORD_CONFIG"),
				Usage:   "session configuration file (YAML, TOML or JSON)",
			},
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "dotenv file with RECORD_* overrides",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			portsCommand(),
			archiveCommand(),
		},
	}

	err := app.Run(ctx, os.Args)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, recordrig.ErrSessionInterrupted) {
			os.Exit(130)
		}

		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "prepare a trial list and run one session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "list",
				Usage: "load this trial list instead of generating one",
			},
			&cli.StringFlag{
				Name:    "decider",
				Value:   "prompt",
				Sources: cli.EnvVars("RECORD_DECIDER"),
				Usage:   "decision source: prompt, all or roi",
			},
			&cli.StringFlag{
				Name:    "tracking",
				Sources: cli.EnvVars("RECORD_TRACKING"),
				Usage:   "tracking CSV for --decider roi",
			},
			&cli.StringFlag{
				Name:    "archive",
				Sources: cli.EnvVars("RECORD_ARCHIVE"),
				Usage:   `SQLite archive (default <output_root>/sessions.db, "-" disables)`,
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "accept the trial list without prompting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, flags{
				configPath: cmd.String("config"),
				envPath:    cmd.String("env"),
				listPath:   cmd.String("list"),
				decider:    cmd.String("decider"),
				tracking:   cmd.String("tracking"),
				archive:    cmd.String("archive"),
				yes:        cmd.Bool("yes"),
			})
		},
	}
}

func portsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ports",
		Usage: "list serial ports",
		Action: func(_ context.Context, _ *cli.Command) error {
			ports, err := recordrig.ListSerialPorts()
			if err != nil {
				return err
			}

			for _, p := range ports {
				fmt.Println(p)
			}

			return nil
		},
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "list sessions stored in a SQLite archive",
		ArgsUsage: "<sessions.db>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("archive path required")
			}

			archive, err := recordrig.OpenArchive(nil, path)
			if err != nil {
				return err
			}
			defer archive.Close()

			sessions, err := archive.Sessions(ctx)
			if err != nil {
				return err
			}

			for _, s := range sessions {
				fmt.Printf("%s  %s  %s  %s  %d trials  interrupted=%v\n",
					s.ID, s.SubjectID, s.TaskType, s.StartedAt.Format(time.DateTime), s.Trials, s.Interrupted)
			}

			return nil
		},
	}
}

func run(ctx context.Context, f flags) error {
	if err := godotenv.Load(f.envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", f.envPath, err)
	}

	v, err := config.NewViper(f.configPath)
	if err != nil {
		return err
	}

	log := newLogger(v.GetString("log_level"))

	cfg, err := config.SessionFromViper(v)
	if err != nil {
		return err
	}

	serialCfg, err := serialport.LoadConfig(v)
	if err != nil {
		return err
	}

	driverOpts := config.OptionsFromViper(v)
	start := time.Now()
	base := export.BaseName(cfg.OutputRoot, cfg, start)

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}

	in := bufio.NewReader(os.Stdin)

	list, err := initialList(cfg, f.listPath, log)
	if err != nil {
		return err
	}

	if !f.yes {
		list, err = chooseList(in, os.Stdout, cfg, list, log)
		if err != nil {
			return err
		}
	}

	if err := recordrig.SaveTrialList(base+export.TrialListSuffix, list); err != nil {
		return err
	}

	decider, err := newDecider(f, in, log)
	if err != nil {
		return err
	}

	exporters := []recordrig.Exporter{recordrig.NewFileExporter(log, base)}

	if f.archive != "-" {
		path := f.archive
		if path == "" {
			path = filepath.Join(cfg.OutputRoot, "sessions.db")
		}

		archive, err := recordrig.OpenArchive(log, path)
		if err != nil {
			return err
		}
		defer archive.Close()

		exporters = append(exporters, archive)
	}

	port := recordrig.NewSerialPort(serialCfg, recordrig.WithLogger(log))

	log.Info("Starting session", "base", base, "trials", list.Len(), "port", serialCfg.Port)

	summary, runErr := recordrig.RunSession(ctx, port, cfg, list,
		recordrig.WithLogger(log),
		recordrig.WithEcho(os.Stdout),
		recordrig.WithTTLLength(driverOpts.TTLLength),
		recordrig.WithRelayLength(driverOpts.RelayLength),
		recordrig.WithResponseTimeout(driverOpts.ResponseTimeout),
		recordrig.WithFirmware(string(driverOpts.Firmware)),
		recordrig.WithDecider(decider),
		recordrig.WithExporters(exporters...),
	)

	if summary != nil {
		fmt.Println()

		if err := summary.WriteReport(os.Stdout); err != nil {
			log.Warn("Failed to print session report", "error", err)
		}

		if summary.ExportErr != nil {
			log.Error("Session export failed", "error", summary.ExportErr)
		}
	}

	return runErr
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newDecider(f flags, in *bufio.Reader, log *slog.Logger) (recordrig.Decider, error) {
	switch strings.ToLower(f.decider) {
	case "prompt":
		return recordrig.NewPromptDecider(in, os.Stdout), nil
	case "all":
		return recordrig.AcceptAll, nil
	case "roi":
		if f.tracking == "" {
			return nil, errors.New("--decider roi needs --tracking")
		}

		return recordrig.NewZoneDecider(log, f.tracking), nil
	default:
		return nil, fmt.Errorf("unknown decider %q: want prompt, all or roi", f.decider)
	}
}
