package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/v0xg/siteclone/internal/capture"
	"github.com/v0xg/siteclone/internal/pipeline"
	"github.com/v0xg/siteclone/internal/reconstruct"
	"github.com/v0xg/siteclone/internal/server"
	"github.com/v0xg/siteclone/internal/store"
)

var (
	addr          string
	provider      string
	model         string
	output        string
	screenshotDir string
	capacity      int
	width         int
	height        int
	verbose       bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "siteclone",
		Short: "Capture a live web page and rebuild it as static HTML with AI",
		Long: `siteclone snapshots a web page with a headless browser (title, DOM,
asset inventory, full-page screenshot) and asks a generative model to
emit a self-contained static HTML approximation of it.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape/clone HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	serveCmd.Flags().IntVar(&capacity, "capacity", store.DefaultCapacity, "Max captures held in memory")

	cloneCmd := &cobra.Command{
		Use:   "clone <url>",
		Short: "Capture one page and write its AI clone to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runClone,
	}
	cloneCmd.Flags().StringVarP(&output, "output", "o", "clone.html", "Output filename")
	cloneCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	for _, c := range []*cobra.Command{serveCmd, cloneCmd} {
		c.Flags().StringVar(&provider, "provider", "", "AI provider: claude, openai (default: from env or claude)")
		c.Flags().StringVar(&model, "model", "", "Specific model override")
		c.Flags().StringVar(&screenshotDir, "screenshot-dir", "public/screenshots", "Directory for screenshot PNGs")
		c.Flags().IntVar(&width, "width", 1280, "Viewport width")
		c.Flags().IntVar(&height, "height", 720, "Viewport height")
	}

	rootCmd.AddCommand(serveCmd, cloneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildPipeline wires browser, store and model provider into a
// coordinator. Credential problems surface here, at startup.
func buildPipeline(log *slog.Logger) (*pipeline.Coordinator, func(), error) {
	selectedProvider := provider
	if selectedProvider == "" {
		selectedProvider = os.Getenv("SITECLONE_DEFAULT_PROVIDER")
		if selectedProvider == "" {
			selectedProvider = "claude"
		}
	}

	aiProvider, err := reconstruct.NewProvider(selectedProvider, model)
	if err != nil {
		return nil, nil, fmt.Errorf("AI provider init failed: %w", err)
	}

	browser, err := capture.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("browser init failed: %w", err)
	}

	engine := capture.NewEngine(browser, capture.Options{
		Width:         width,
		Height:        height,
		ScreenshotDir: screenshotDir,
	})
	reconstructor := reconstruct.NewEngine(aiProvider, reconstruct.Options{
		ScreenshotRoot: ".",
		Logger:         log,
	})
	coord := pipeline.New(engine, store.New(capacity), reconstructor, log)

	cleanup := func() { browser.Close() }
	return coord, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	coord, cleanup, err := buildPipeline(log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(coord, screenshotDir, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	url := args[0]

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	coord, cleanup, err := buildPipeline(log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()

	fmt.Printf("→ Capturing %s... ", url)
	summary, err := coord.StartCapture(ctx, url)
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("capture failed: %w", err)
	}
	fmt.Printf("done (%d bytes of HTML, %d images, %d stylesheets, %d scripts, %d links)\n",
		summary.HTMLContentLength, summary.AssetsCount.Images, summary.AssetsCount.Stylesheets,
		summary.AssetsCount.Scripts, summary.AssetsCount.Links)
	logVerbose("  id: %s", summary.ID)
	logVerbose("  title: %s", summary.Title)
	logVerbose("  screenshot: %s", summary.ScreenshotURL)

	fmt.Printf("→ Reconstructing via model... ")
	result, err := coord.FinishClone(ctx, summary.ID)
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("clone failed: %w", err)
	}
	if !result.Success {
		fmt.Println("failed")
		return fmt.Errorf("clone failed: %s", result.Message)
	}
	fmt.Println("done")

	if err := os.WriteFile(output, []byte(result.ClonedHTML), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("✓ Saved to %s (%.1f KB)\n", output, float64(len(result.ClonedHTML))/1024)
	return nil
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
