// Package main provides qbcli, a small command line client for Quickbase
// built on the quickbase-go library. It reads connection settings from flags,
// a YAML config file, or a .env file, and can inspect tables and run queries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	quickbase "github.com/qbclient/quickbase-go"
	"github.com/qbclient/quickbase-go/internal/json"
	log "github.com/qbclient/quickbase-go/internal/logging"
)

func main() {
	var (
		configPath string
		realm      string
		userToken  string
		appID      string
		tableID    string
		where      string
		selectCSV  string
		logFile    string
		debug      bool
	)

	flag.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flag.StringVar(&realm, "realm", "", "realm hostname or subdomain")
	flag.StringVar(&userToken, "token", "", "user token (falls back to QB_USER_TOKEN)")
	flag.StringVar(&appID, "app", "", "application id, for the tables command")
	flag.StringVar(&tableID, "table", "", "table id, for the fields and query commands")
	flag.StringVar(&where, "where", "", "query filter, for the query command")
	flag.StringVar(&selectCSV, "select", "", "comma separated field ids to select")
	flag.StringVar(&logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	if debug {
		log.SetLevel(slog.LevelDebug)
	}
	if logFile != "" {
		if err := log.ConfigureFileOutput(logFile); err != nil {
			fail(err)
		}
		defer log.CloseFileOutput()
	}

	// .env is optional; flags and the config file win over it.
	_ = godotenv.Load()

	cfg := quickbase.Config{}
	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			fail(fmt.Errorf("read config: %w", err))
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			fail(fmt.Errorf("parse config: %w", err))
		}
	}
	if realm != "" {
		cfg.Realm = realm
	}
	if cfg.Realm == "" {
		cfg.Realm = os.Getenv("QB_REALM")
	}
	if userToken != "" {
		cfg.UserToken = userToken
	}
	if cfg.UserToken == "" {
		cfg.UserToken = os.Getenv("QB_USER_TOKEN")
	}
	if cfg.Realm == "" {
		fail(fmt.Errorf("a realm is required (--realm, config file, or QB_REALM)"))
	}

	client, err := quickbase.New(cfg)
	if err != nil {
		fail(err)
	}

	ctx := context.Background()
	switch flag.Arg(0) {
	case "tables":
		if appID == "" {
			fail(fmt.Errorf("tables requires --app"))
		}
		tables, err := client.GetTables(ctx, appID)
		if err != nil {
			fail(err)
		}
		emit(tables)
	case "fields":
		if tableID == "" {
			fail(fmt.Errorf("fields requires --table"))
		}
		fields, err := client.GetFields(ctx, tableID)
		if err != nil {
			fail(err)
		}
		emit(fields)
	case "query":
		if tableID == "" {
			fail(fmt.Errorf("query requires --table"))
		}
		resp, err := client.RunQuery(ctx, quickbase.QueryRequest{
			From:   tableID,
			Where:  where,
			Select: parseFieldIDs(selectCSV),
		})
		if err != nil {
			fail(err)
		}
		emit(resp)
	case "export":
		// Query every table of the app concurrently under the client's
		// shared throttle.
		if appID == "" {
			fail(fmt.Errorf("export requires --app"))
		}
		tables, err := client.GetTables(ctx, appID)
		if err != nil {
			fail(err)
		}
		queries := make([]quickbase.QueryRequest, len(tables))
		for i, table := range tables {
			queries[i] = quickbase.QueryRequest{From: table.ID}
		}
		results, err := client.RunQueries(ctx, queries)
		if err != nil {
			fail(err)
		}
		emit(results)
	default:
		fmt.Fprintln(os.Stderr, "usage: qbcli [flags] tables|fields|query|export")
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func parseFieldIDs(csv string) []int {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "qbcli:", err)
	os.Exit(1)
}
