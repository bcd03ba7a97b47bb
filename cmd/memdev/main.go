package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-memdev/internal/codec"
	"github.com/go-tangra/go-tangra-memdev/internal/collector"
	"github.com/go-tangra/go-tangra-memdev/internal/daemon"
	"github.com/go-tangra/go-tangra-memdev/internal/logger"
	"github.com/go-tangra/go-tangra-memdev/internal/props"
	"github.com/go-tangra/go-tangra-memdev/internal/sender"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var (
	sourceName string
	udevPath   string
)

var rootCmd = &cobra.Command{
	Use:   "memdev",
	Short: "memdev - DIMM inventory agent",
	Long: `memdev reads the host's DMI memory-device properties and reports the
installed DIMMs: manufacturer, configured speed, form factor and type.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a one-line memory summary",
	RunE:  runShow,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect a snapshot and print it as JSON",
	RunE:  runCollect,
}

var outputFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Collect a snapshot and submit it to a collector",
	RunE:  runSubmit,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Periodically collect and submit snapshots",
	RunE:  runDaemon,
}

var (
	collectorURL string
	clientSecret string
	interval     time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("memdev %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "udev", "property source: udev or smbios")
	rootCmd.PersistentFlags().StringVar(&udevPath, "udev-db", "", "udev database entry to read (default "+props.DefaultUdevPath+")")

	collectCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON output to file instead of stdout")

	for _, cmd := range []*cobra.Command{submitCmd, daemonCmd} {
		cmd.Flags().StringVar(&collectorURL, "collector", "http://localhost:9560", "collector base URL")
		cmd.Flags().StringVar(&clientSecret, "client-secret", "", "X-Client-Secret header value (empty = none)")
	}
	daemonCmd.Flags().DurationVar(&interval, "interval", time.Hour, "time between snapshot submissions")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func source() (props.Source, error) {
	switch sourceName {
	case "udev":
		return props.UdevSource{Path: udevPath}, nil
	case "smbios":
		return props.SMBIOSSource{}, nil
	default:
		return nil, fmt.Errorf("unknown property source %q", sourceName)
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	src, err := source()
	if err != nil {
		return err
	}

	snap, err := collector.Collect(src, sourceName)
	if err != nil {
		return err
	}

	fmt.Println(snap.Summary)
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	src, err := source()
	if err != nil {
		return err
	}

	snap, err := collector.Collect(src, sourceName)
	if err != nil {
		return err
	}

	w := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := codec.WriteSnapshot(w, snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "snapshot written to %s\n", outputFile)
	}
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	src, err := source()
	if err != nil {
		return err
	}

	snap, err := collector.Collect(src, sourceName)
	if err != nil {
		return err
	}

	id, err := sender.Send(cmd.Context(), collectorURL, clientSecret, snap)
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %s submitted to %s\n", id, collectorURL)
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	src, err := source()
	if err != nil {
		return err
	}

	log := logger.New("memdev-agent")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx, daemon.Config{
		CollectorURL: collectorURL,
		ClientSecret: clientSecret,
		Interval:     interval,
		Source:       src,
		SourceName:   sourceName,
	}, log)
}
