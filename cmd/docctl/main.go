package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/GriffinCanCode/docshelf/backend/pkg/client"
)

const usage = `Usage: docctl [flags] <command> [args]

Commands:
  get                     print the documents directory
  set <dir>               use an absolute directory for documents
  clear                   revert to the default documents directory
  save <name> [<src>]     save src (or stdin) as name, print the saved path
  locate <name>           print the path of an existing document
  diagnose <name>         describe how name resolves

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("DOCSHELF_URL", client.DefaultBaseURL), "Server base URL")
	timeout := fs.Duration("timeout", client.DefaultTimeout, "Request timeout")
	format := fs.String("format", "text", "Report format for diagnose: text, json, yaml or toml")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	c := client.New(*server, client.WithTimeout(*timeout))
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	err := dispatch(ctx, c, cmd, rest, *format, stdin, stdout)
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "docctl: %v\n\n", err)
		fs.Usage()
		return 2
	default:
		fmt.Fprintf(stderr, "docctl: %v\n", err)
		return 1
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, c *client.Client, cmd string, args []string, format string, stdin io.Reader, stdout io.Writer) error {
	switch cmd {
	case "get":
		if err := wantArgs(cmd, args, 0, 0); err != nil {
			return err
		}
		dir, err := c.GetDocumentPath(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, dir)

	case "set":
		if err := wantArgs(cmd, args, 1, 1); err != nil {
			return err
		}
		if err := c.SetDocumentPath(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(stdout, args[0])

	case "clear":
		if err := wantArgs(cmd, args, 0, 0); err != nil {
			return err
		}
		if err := c.ClearDocumentPath(ctx); err != nil {
			return err
		}
		dir, err := c.GetDocumentPath(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, dir)

	case "save":
		if err := wantArgs(cmd, args, 1, 2); err != nil {
			return err
		}
		data, err := readSource(args[1:], stdin)
		if err != nil {
			return err
		}
		path, err := c.SaveFile(ctx, args[0], data)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)

	case "locate":
		if err := wantArgs(cmd, args, 1, 1); err != nil {
			return err
		}
		path, err := c.GetFilePath(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)

	case "diagnose":
		if err := wantArgs(cmd, args, 1, 1); err != nil {
			return err
		}
		report, err := c.TestFileAccess(ctx, args[0], format)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, report.Text)
		if len(report.Text) > 0 && report.Text[len(report.Text)-1] != '\n' {
			fmt.Fprintln(stdout)
		}

	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
	return nil
}

func wantArgs(cmd string, args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		return usageError(fmt.Sprintf("%s: wrong number of arguments", cmd))
	}
	return nil
}

// readSource reads the file named by args[0], or stdin when there is none
// or it is "-"
func readSource(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

