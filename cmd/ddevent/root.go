// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pjscruggs/slogdd"
	"github.com/pjscruggs/slogdd/internal/config"
)

type rootOptions struct {
	level       string
	title       string
	tags        []string
	fields      map[string]string
	envFile     string
	endpoint    string
	minLevel    string
	timeout     time.Duration
	printResult bool
}

// newRootCommand creates the ddevent command.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ddevent [message]",
		Short: "Send one event to the Datadog events API",
		Long: "ddevent posts a single event using the same request shaping as the slogdd\n" +
			"transport. Credentials are read from SLOGDD_API_KEY and\n" +
			"SLOGDD_APPLICATION_KEY, optionally loaded from --env-file.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.level, "level", "l", slogdd.SeverityInfo, "Event severity (silly, debug, verbose, info, warn, warning, error, severe)")
	flags.StringVar(&opts.title, "title", "", "Event title (defaults to LOG)")
	flags.StringArrayVarP(&opts.tags, "tag", "t", nil, "Additional tag, repeatable (for example --tag team:core)")
	flags.StringToStringVar(&opts.fields, "field", nil, "Structured data appended to the text as JSON (key=value)")
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file first")
	flags.StringVar(&opts.endpoint, "endpoint", "", "API base URL (overrides SLOGDD_ENDPOINT)")
	flags.StringVar(&opts.minLevel, "min-level", "", "Minimum severity to send (overrides SLOGDD_MIN_LEVEL)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request deadline; 0 waits indefinitely")
	flags.BoolVar(&opts.printResult, "print-result", false, "Print the decoded API response to stdout")

	cmd.AddCommand(newVersionCommand())
	return cmd
}

// newVersionCommand prints the library version.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slogdd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), slogdd.GetVersion())
		},
	}
}

// runSend loads configuration, sends the event and waits for the response.
func runSend(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	message := ""
	if len(args) > 0 {
		message = args[0]
	}

	errLogger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	transportOpts := []slogdd.Option{
		slogdd.WithErrorLogger(errLogger),
		slogdd.WithTimeout(opts.timeout),
	}
	if endpoint := firstNonEmpty(opts.endpoint, cfg.Endpoint); endpoint != "" {
		transportOpts = append(transportOpts, slogdd.WithEndpoint(endpoint))
	}
	if minLevel := firstNonEmpty(opts.minLevel, cfg.MinLevel); minLevel != "" {
		transportOpts = append(transportOpts, slogdd.WithMinimumLevel(minLevel))
	}
	if cfg.Env != "" {
		transportOpts = append(transportOpts, slogdd.WithEnvironment(slogdd.Environment{Env: cfg.Env}))
	}

	transport, err := slogdd.New(slogdd.Credentials{
		APIKey:         cfg.APIKey,
		ApplicationKey: cfg.ApplicationKey,
	}, transportOpts...)
	if err != nil {
		return err
	}
	defer transport.Close()

	if opts.title != "" {
		transport.UpdateOptions(func(o *slogdd.EventOptions) {
			o.Title = opts.title
		})
	}
	if opts.printResult {
		transport.ReceiveResults(slogdd.EmitterFunc(func(_ string, res *slogdd.Result) {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res.Body); err != nil {
				errLogger.Error("print result", slog.Any("error", err))
			}
		}))
	}

	var data slogdd.LogData = slogdd.Empty{}
	if len(opts.fields) > 0 {
		fields := make(slogdd.Fields, len(opts.fields))
		for k, v := range opts.fields {
			fields[k] = v
		}
		data = fields
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	delivery := transport.LogEntry(ctx, slogdd.Entry{
		Severity: opts.level,
		Message:  message,
		Data:     data,
		Tags:     opts.tags,
	})
	if delivery.Filtered() {
		return fmt.Errorf("severity %q is below the minimum level", opts.level)
	}

	res, err := delivery.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			delivery.Cancel()
		}
		return fmt.Errorf("send event: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("events API responded %d: %s", res.StatusCode, strings.TrimSpace(string(res.Raw)))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "event accepted (%d)\n", res.StatusCode)
	return nil
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
