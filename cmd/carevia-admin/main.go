// Admin CLI for Carevia content and contact submissions.
// Uses the same configuration and stores as the server.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"carevia/internal/adapters/identity"
	"carevia/internal/application/orchestrators"
	"carevia/internal/application/projections"
	"carevia/internal/bootstrap"
	"carevia/internal/config"
	"carevia/internal/domain/gallery"
	"carevia/internal/domain/story"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("unknown command")

// run dispatches one CLI invocation. Output goes to out; status lines to out in colour.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("carevia-admin", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", os.Getenv("CAREVIA_CONFIG"), "path to YAML config file")
	fs.Usage = func() { printUsage(out) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		printUsage(out)
		return errUsage
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "hash-password":
		return cmdHashPassword(rest, in, out)
	case "list", "export-contacts", "clear":
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: %s", errUsage, cmd)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// Keep stdout clean for exported data.
	slog.SetDefault(config.NewLogger(config.LoggingConfig{Level: "warn", Format: cfg.Logging.Format}, os.Stderr))

	backend, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	switch cmd {
	case "list":
		return cmdList(ctx, backend, rest, out)
	case "export-contacts":
		return cmdExportContacts(ctx, backend, rest, out)
	default:
		return cmdClear(ctx, backend, rest, out)
	}
}

func printUsage(w io.Writer) {
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w, "Usage: carevia-admin [--config file] <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  hash-password [password]          Print a bcrypt hash (reads stdin when no argument)")
	fmt.Fprintln(w, "  list <gallery|stories|contacts>   List records newest first")
	fmt.Fprintln(w, "  export-contacts [file]            Write contact submissions as CSV (stdout by default)")
	fmt.Fprintln(w, "  clear <gallery|stories> --yes     Delete every record in a collection")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CAREVIA_CONFIG                    Config file path (same as --config)")
	fmt.Fprintln(w, "  CAREVIA_*                         Overrides, as for the server")
	fmt.Fprintln(w)
}

// cmdHashPassword prints the bcrypt hash for local.admin_password_hash.
func cmdHashPassword(args []string, in io.Reader, out io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password is required")
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

func cmdList(ctx context.Context, b *bootstrap.Backend, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: list <gallery|stories|contacts>")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	switch args[0] {
	case gallery.Collection:
		items, err := b.Gallery.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tTITLE")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.CreatedAt.Format(projections.DateLayout), it.Category, it.Title)
		}
		tw.Flush()
		printCount(out, len(items), "gallery item")
	case story.Collection:
		stories, err := b.Stories.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tDATE\tAUTHOR\tTITLE")
		for _, st := range stories {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.ID, st.DisplayDate().Format(projections.DateLayout), st.Author, st.Title)
		}
		tw.Flush()
		printCount(out, len(stories), "story")
	case "contacts":
		msgs, err := orchestrators.ExecuteListContacts(ctx, orchestrators.ListContactsDeps{ContactStore: b.Contacts})
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tRECEIVED\tNAME\tEMAIL\tSUBJECT")
		for _, m := range msgs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.Name, m.Email, m.Subject)
		}
		tw.Flush()
		printCount(out, len(msgs), "message")
	default:
		return fmt.Errorf("unknown collection %q", args[0])
	}
	return nil
}

func printCount(w io.Writer, n int, noun string) {
	if n != 1 {
		if strings.HasSuffix(noun, "y") {
			noun = strings.TrimSuffix(noun, "y") + "ies"
		} else {
			noun += "s"
		}
	}
	color.New(color.FgCyan).Fprintf(w, "%d %s\n", n, noun)
}

func cmdExportContacts(ctx context.Context, b *bootstrap.Backend, args []string, out io.Writer) error {
	msgs, err := orchestrators.ExecuteListContacts(ctx, orchestrators.ListContactsDeps{ContactStore: b.Contacts})
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return projections.WriteContactsCSV(out, msgs)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := projections.WriteContactsCSV(f, msgs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Exported %d messages to %s\n", len(msgs), args[0])
	return nil
}

func cmdClear(ctx context.Context, b *bootstrap.Backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(out)
	yes := fs.Bool("yes", false, "confirm deleting every record")
	if len(args) == 0 {
		return errors.New("usage: clear <gallery|stories> --yes")
	}
	name := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("refusing to clear %s without --yes", name)
	}

	var err error
	switch name {
	case gallery.Collection:
		err = b.Gallery.Clear(ctx)
	case story.Collection:
		err = b.Stories.Clear(ctx)
	default:
		return fmt.Errorf("unknown collection %q", name)
	}
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Cleared %s\n", name)
	return nil
}
