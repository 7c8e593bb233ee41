package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/log"
	"github.com/corestream/corestream/pkg/runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "corestream",
	Short:   "Corestream - an embeddable complex-event-processing engine",
	Long:    `Corestream compiles application definitions into running stream-processing pipelines: filters, windows, joins, and incremental aggregations over typed event streams.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("Corestream version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compile an application definition without running it",
	Long:  `Load a YAML application definition and compile it against a fresh engine, reporting any compilation errors without processing events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appPath, _ := cmd.Flags().GetString("app")

		def, err := loadAppFile(appPath)
		if err != nil {
			return err
		}

		mgr := runtime.New()
		if _, err := mgr.CreateAppRuntime(def); err != nil {
			return fmt.Errorf("compilation failed: %w", err)
		}

		fmt.Printf("✓ %q compiled successfully\n", def.Name)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("app", "a", "", "YAML application definition (required)")
	_ = validateCmd.MarkFlagRequired("app")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an application against a JSON event fixture",
	Long: `Compile a YAML application definition, replay a JSON event fixture
through its input streams, and print the events published on every
query's output.

This is a local harness for exercising and inspecting an application —
not a server: it runs one fixture to completion and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appPath, _ := cmd.Flags().GetString("app")
		eventsPath, _ := cmd.Flags().GetString("events")
		drain, _ := cmd.Flags().GetDuration("drain")

		def, err := loadAppFile(appPath)
		if err != nil {
			return err
		}
		fixture, err := loadFixture(eventsPath)
		if err != nil {
			return err
		}

		streamKinds := make(map[string][]event.Kind, len(def.StreamDefs))
		for _, s := range def.StreamDefs {
			kinds := make([]event.Kind, len(s.Attributes))
			for i, a := range s.Attributes {
				kinds[i] = a.Kind
			}
			streamKinds[s.ID] = kinds
		}

		mgr := runtime.New()
		rt, err := mgr.CreateAppRuntime(def)
		if err != nil {
			return fmt.Errorf("compilation failed: %w", err)
		}

		var mu sync.Mutex
		outputs := make(map[string][][]any)
		for _, q := range def.Queries {
			id := q.ID
			if err := rt.AddCallback(id, func(ce *event.ComplexEvent) {
				row := rawRow(ce.OutputData)
				mu.Lock()
				outputs[id] = append(outputs[id], row)
				mu.Unlock()
			}); err != nil {
				return fmt.Errorf("subscribing to query %q: %w", id, err)
			}
		}

		ctx := context.Background()
		if err := rt.Start(ctx); err != nil {
			return fmt.Errorf("starting app: %w", err)
		}
		defer rt.Stop()

		for i, ev := range fixture {
			kinds, ok := streamKinds[ev.Stream]
			if !ok {
				return fmt.Errorf("fixture event %d: unknown stream %q", i, ev.Stream)
			}
			values, err := toValues(ev.Values, kinds)
			if err != nil {
				return fmt.Errorf("fixture event %d: %w", i, err)
			}
			in, err := rt.InputHandler(ev.Stream)
			if err != nil {
				return fmt.Errorf("fixture event %d: %w", i, err)
			}
			if _, err := in.Send(ctx, values); err != nil {
				return fmt.Errorf("fixture event %d: %w", i, err)
			}
		}

		time.Sleep(drain)

		mu.Lock()
		defer mu.Unlock()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	},
}

func init() {
	runCmd.Flags().StringP("app", "a", "", "YAML application definition (required)")
	runCmd.Flags().StringP("events", "e", "", "JSON event fixture (required)")
	runCmd.Flags().Duration("drain", 200*time.Millisecond, "time to wait after the fixture is sent before reading results")
	_ = runCmd.MarkFlagRequired("app")
	_ = runCmd.MarkFlagRequired("events")
}

func rawRow(values []event.Value) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v.Raw()
	}
	return row
}
