package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"lcbridge/internal/cli/command"
	"lcbridge/internal/cli/config"
	"lcbridge/internal/cli/repl"
	"lcbridge/internal/cli/state"
	"lcbridge/internal/common/httpclient"

	"github.com/google/shlex"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override api-server base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 90s)")
	statePath := flag.String("state", "", "Override cli state path")
	pretty := flag.Bool("pretty", false, "Pretty print JSON response")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	prefs, err := state.Load(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load cli state failed: %v\n", err)
		os.Exit(1)
	}

	client := httpclient.New(cfg.BaseURL, cfg.Timeout, nil)
	session := repl.New(client, command.Registry(), &prefs, cfg.StatePath, cfg.Pretty(), os.Stdin, os.Stdout)

	// Arguments after the flags run as a single command.
	if args := flag.Args(); len(args) > 0 {
		line := strings.Join(quoteArgs(args), " ")
		if err := session.Exec(context.Background(), line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	session.Run(context.Background())
}

// quoteArgs re-quotes shell arguments so Exec tokenizes them unchanged.
func quoteArgs(args []string) []string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if tokens, err := shlex.Split(arg); err == nil && len(tokens) == 1 && tokens[0] == arg {
			quoted = append(quoted, arg)
			continue
		}
		quoted = append(quoted, "'"+strings.ReplaceAll(arg, "'", `'"'"'`)+"'")
	}
	return quoted
}
