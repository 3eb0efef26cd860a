// storectl is a maintenance tool for the address ledger.
// Usage:
//
//	storectl -config configs/sniper.local.yaml -tail 20
//	storectl -config configs/sniper.local.yaml -backup
//	storectl -config configs/sniper.local.yaml -clear -yes
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/0xfern/chatsnipe/internal/config"
	"github.com/0xfern/chatsnipe/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/sniper.local.yaml", "path to config file")
	tail := flag.Int("tail", 0, "print the newest N ledger records")
	backup := flag.Bool("backup", false, "snapshot the ledger into the backup directory")
	clearFlag := flag.Bool("clear", false, "truncate the ledger (requires -yes)")
	yes := flag.Bool("yes", false, "confirm destructive operations")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.New(store.Config{
		Path:      cfg.Store.Path,
		BackupDir: cfg.Store.BackupDir,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *tail > 0:
		records, err := st.Recent(*tail)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read ledger: %v\n", err)
			os.Exit(1)
		}
		for _, rec := range records {
			fmt.Printf("%s  %s\n", rec.Timestamp.Format(time.RFC3339Nano), rec.Address)
		}

	case *backup:
		path, ok := st.Backup(time.Now().UTC())
		if !ok {
			fmt.Fprintln(os.Stderr, "backup failed")
			os.Exit(1)
		}
		fmt.Printf("backup written: %s\n", path)

	case *clearFlag:
		if !*yes {
			fmt.Fprintln(os.Stderr, "refusing to clear the ledger without -yes")
			os.Exit(1)
		}
		if err := st.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "clear ledger: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ledger cleared")

	default:
		n, err := st.Len()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read ledger: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("ledger: %s (%d records)\n", st.Path(), n)
		flag.Usage()
	}
}
