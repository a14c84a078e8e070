// Command pdfupload uploads a PDF bank statement to the analyzer, showing
// status and progress on the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/statement-analyzer/uploader/internal/config"
	"github.com/statement-analyzer/uploader/internal/diag"
	"github.com/statement-analyzer/uploader/internal/display"
	"github.com/statement-analyzer/uploader/internal/filesource"
	"github.com/statement-analyzer/uploader/internal/logging"
	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/statement-analyzer/uploader/internal/transport"
	"github.com/statement-analyzer/uploader/internal/widget"
	"go.uber.org/zap"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitWarning = 2
)

const configFileName = "PDFUploader.config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("pdfupload", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdfupload [flags] <file.pdf>\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", defaultConfigPath(), "path to the XML config file")
	baseURL := flags.String("url", "", "upload server base URL (overrides the config)")
	format := flags.String("format", "", "response payload format: json or yaml (overrides the config)")
	logLevel := flags.String("log-level", "", "log level (overrides the config)")
	noColor := flags.Bool("no-color", os.Getenv("NO_COLOR") != "", "disable coloured output")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitWarning
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return exitWarning
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pdfupload: %v\n", err)
		return exitFailure
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *format == "" {
		*format = cfg.Advanced.DiagnosticFormat
	}

	payloadFormat, err := diag.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(stderr, "pdfupload: %v\n", err)
		return exitFailure
	}

	if *logLevel == "" {
		*logLevel = cfg.Advanced.LogLevel
	}

	logger, err := logging.New(cfg.Advanced.LogMode, *logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "pdfupload: %v\n", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	files := filesource.NewPath(flags.Arg(0))
	if err := files.Err(); err != nil {
		fmt.Fprintf(stderr, "pdfupload: %v\n", err)
		return exitFailure
	}

	tr, err := transport.New(transport.Options{
		BaseURL:   cfg.Client.BaseURL,
		Path:      cfg.Client.EndpointPath,
		FieldName: cfg.Client.FieldName,
		Timeout:   cfg.GetRequestTimeout(),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "pdfupload: %v\n", err)
		return exitFailure
	}

	sink := diag.Fanout(
		diag.NewConsoleSink(stdout, stderr, payloadFormat),
		diag.NewLogSink(logger),
	)

	term := display.NewTerminal(stdout, !*noColor)
	w := widget.New(files, term, sink, tr,
		widget.WithLogger(logger),
		widget.WithAcceptedType(cfg.Client.AcceptedMIMEType),
	)

	logger.Debug("uploading", zap.String("endpoint", tr.Endpoint()), zap.String("file", flags.Arg(0)))

	status := w.Click(ctx)
	if status.Severity == models.SeverityInfo {
		status = w.Wait()
	}
	if err := term.Err(); err != nil {
		logger.Warn("progress bar rendering failed", zap.Error(err))
	}
	return exitCode(status)
}

func exitCode(status models.UploadStatus) int {
	switch status.Severity {
	case models.SeveritySuccess:
		return exitSuccess
	case models.SeverityWarning:
		return exitWarning
	default:
		return exitFailure
	}
}

func defaultConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return configFileName
	}
	return filepath.Join(filepath.Dir(exePath), configFileName)
}
