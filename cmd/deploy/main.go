// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Command deploy resolves a deploy invocation into a directive and hands it
off.

	deploy [environment|target] [flags...]

Positionals: local, debug, dev, development, prod, production, or any
free-form environment name. Flags: -b/--blocking, -p/--skip-build,
-y/--skip-push, plus the deprecated -l and -d.

The resolved directive is printed to stdout as JSON. If DISPATCH_URL is
set, the directive is also reported to the dispatch server as a started
deployment. Resolution itself never fails; a failed report exits 1 so
wrapper scripts notice.
*/
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/dispatch/directive"
	"github.com/danielhkuo/dispatch/models"
)

func main() {
	log := newLogger()

	d := directive.Resolve(os.Args[1:], log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		log.Error("failed to encode directive", "error", err)
		os.Exit(1)
	}

	if url := os.Getenv("DISPATCH_URL"); url != "" {
		if err := report(url, d); err != nil {
			log.Error("failed to report deployment", "error", err)
			os.Exit(1)
		}
		log.Info("deployment reported", "url", url, "environment", d.Environment)
	}
}

// newLogger picks the slog handler by destination: text for a terminal,
// JSON when stderr is redirected to a file or pipe.
func newLogger() *slog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// report POSTs the directive to the dispatch server as a started
// deployment. The server records it; actually performing the deploy is
// the wrapper script's job.
func report(baseURL string, d directive.Directive) error {
	host, _ := os.Hostname()

	body, err := json.Marshal(models.ReportDeploymentRequest{
		Target:      d.Target,
		Environment: d.Environment,
		Flag:        d.Flag,
		Mode:        d.Mode,
		Status:      models.StatusStarted,
		Host:        host,
	})
	if err != nil {
		return err
	}

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(strings.TrimRight(baseURL, "/")+"/deployments", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
