// Package main provides the ndbuf CLI for inspecting and producing .ndb
// buffer snapshots.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"unsafe"

	"github.com/spf13/pflag"

	"github.com/born-ml/ndbuf/internal/buffer"
	"github.com/born-ml/ndbuf/internal/config"
	"github.com/born-ml/ndbuf/internal/datasets"
	"github.com/born-ml/ndbuf/internal/interop"
	"github.com/born-ml/ndbuf/internal/serialization"
)

const version = "v0.1.0-dev"

const usage = `ndbuf - typed storage and buffer views

Usage:
  ndbuf <command> [flags] [args]

Commands:
  version               Show version
  inspect <file.ndb>    Print a snapshot's header and a data preview
  export <file.ndb>     Export a snapshot's view and print the descriptor
  fetch                 Download MNIST into .ndb snapshots

Run "ndbuf <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "version", "--version":
		fmt.Fprintf(stdout, "ndbuf %s\n", version)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	case "inspect":
		return runInspect(rest, stdout, stderr)
	case "export":
		return runExport(rest, stdout, stderr)
	case "fetch":
		return runFetch(ctx, rest, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q (run \"ndbuf help\")", cmd)
	}
}

// commandEnv is the state shared by every subcommand.
type commandEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	args   []string
}

// parseCommand parses flags for a subcommand, loads configuration and
// builds the logger. It returns errHelp when --help was requested.
func parseCommand(flagSet *pflag.FlagSet, args []string, stderr io.Writer) (*commandEnv, error) {
	var configPath string
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvVar+")")
	flagSet.SetOutput(stderr)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, errHelp
		}
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	return &commandEnv{cfg: cfg, logger: logger, args: flagSet.Args()}, nil
}

var errHelp = errors.New("help requested")

func helpOK(err error) error {
	if errors.Is(err, errHelp) {
		return nil
	}
	return err
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	skipChecksum := flagSet.Bool("skip-checksum", false, "do not verify the payload checksum")
	env, err := parseCommand(flagSet, args, stderr)
	if err != nil {
		return helpOK(err)
	}
	if len(env.args) != 1 {
		return errors.New("inspect takes exactly one .ndb file")
	}

	path := env.args[0]
	view, header, err := serialization.ReadFile(path, serialization.ReadOptions{
		SkipChecksumValidation: *skipChecksum,
		ValidationLevel:        serialization.ValidationStrict,
	})
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	defer view.Release()

	env.logger.Debug("loaded snapshot", "path", path, "bytes", header.ByteLen)

	fmt.Fprintf(stdout, "file:        %s\n", path)
	fmt.Fprintf(stdout, "format:      %q (%s)\n", header.Format, view.DType())
	fmt.Fprintf(stdout, "shape:       %v\n", []int(view.Shape()))
	fmt.Fprintf(stdout, "strides:     %v\n", view.Strides())
	fmt.Fprintf(stdout, "contiguous:  %t\n", view.IsContiguous())
	fmt.Fprintf(stdout, "storage:     %d bytes\n", header.ByteLen)
	fmt.Fprintf(stdout, "payload:     %d bytes\n", header.PayloadLen)
	fmt.Fprintf(stdout, "checksum:    %s\n", hex.EncodeToString(header.Checksum))
	if !header.CreatedAt.IsZero() {
		fmt.Fprintf(stdout, "created:     %s\n", header.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	keys := make([]string, 0, len(header.Metadata))
	for k := range header.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "meta.%s: %s\n", k, header.Metadata[k])
	}
	fmt.Fprintf(stdout, "data:        %s\n", view.Preview(env.cfg.Preview.MaxElements))
	return nil
}

func runExport(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flagList := flagSet.String("flags", buffer.FlagFull.String(), "request flags, e.g. SIMPLE or WRITABLE|FORMAT|STRIDES")
	env, err := parseCommand(flagSet, args, stderr)
	if err != nil {
		return helpOK(err)
	}
	if len(env.args) != 1 {
		return errors.New("export takes exactly one .ndb file")
	}
	flags, err := buffer.ParseFlags(*flagList)
	if err != nil {
		return err
	}

	path := env.args[0]
	view, _, err := serialization.ReadFile(path, serialization.ReadOptions{})
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	obj := interop.Wrap(view)
	view.Release()
	defer obj.Release()

	desc, err := obj.GetBuffer(flags)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer desc.Release()

	raw := desc.Raw()
	env.logger.Debug("exported buffer", "path", path, "flags", flags.String())

	fmt.Fprintf(stdout, "object:      %s\n", obj)
	fmt.Fprintf(stdout, "flags:       %s\n", flags)
	fmt.Fprintf(stdout, "buf:         %#x\n", raw.Buf)
	fmt.Fprintf(stdout, "len:         %d\n", raw.Len)
	fmt.Fprintf(stdout, "itemsize:    %d\n", raw.ItemSize)
	fmt.Fprintf(stdout, "readonly:    %d\n", raw.ReadOnly)
	fmt.Fprintf(stdout, "ndim:        %d\n", raw.NDim)
	fmt.Fprintf(stdout, "format:      %s\n", nullable(raw.Format, fmt.Sprintf("%q", desc.FormatString())))
	fmt.Fprintf(stdout, "shape:       %s\n", nullable(raw.Shape, fmt.Sprint(desc.Shape)))
	fmt.Fprintf(stdout, "strides:     %s\n", nullable(raw.Strides, fmt.Sprint(desc.Strides)))
	fmt.Fprintln(stdout, "suboffsets:  NULL")
	fmt.Fprintf(stdout, "record size: %d bytes\n", unsafe.Sizeof(*raw))
	return nil
}

func nullable(ptr uintptr, value string) string {
	if ptr == 0 {
		return "NULL"
	}
	return value
}

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	outDir := flagSet.String("out", ".", "directory for the .ndb snapshots")
	baseURL := flagSet.String("base-url", "", "override datasets.base_url")
	env, err := parseCommand(flagSet, args, stderr)
	if err != nil {
		return helpOK(err)
	}
	if len(env.args) != 0 {
		return fmt.Errorf("unexpected argument: %s", env.args[0])
	}

	source := env.cfg.Datasets.BaseURL
	if *baseURL != "" {
		source = *baseURL
	}
	if !strings.HasSuffix(source, "/") {
		source += "/"
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", *outDir, err)
	}

	fetcher := &datasets.Fetcher{
		Client: &http.Client{Timeout: env.cfg.Datasets.Timeout},
		Logger: env.logger,
	}
	mnist, err := fetcher.FetchMNIST(ctx, source)
	if err != nil {
		return err
	}
	defer mnist.Release()

	views := mnist.Views()
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		view := views[name]
		target := filepath.Join(*outDir, strings.TrimSuffix(name, ".gz")+".ndb")
		err := serialization.WriteFile(target, view, serialization.WriteOptions{
			Compress: env.cfg.Snapshot.Compress,
			Metadata: map[string]string{"source": source + name},
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		env.logger.Info("wrote snapshot", "path", target, "shape", []int(view.Shape()))
		fmt.Fprintf(stdout, "%s %v\n", target, []int(view.Shape()))
	}
	return nil
}
