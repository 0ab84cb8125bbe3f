package inbound

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage: authenticator [--data path] list|add <name>|remove <id>|codes")

// CLI runs one authenticator command per call.
type CLI struct {
	uc     uc
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	code lipgloss.Style
	dim  lipgloss.Style
}

// NewCLI writes results to out and prompts to errOut. The secret for add is
// read from in, without echo when in is a terminal.
func NewCLI(uc uc, in io.Reader, out, errOut io.Writer) *CLI {
	r := lipgloss.NewRenderer(out)

	return &CLI{
		uc:     uc,
		in:     in,
		out:    out,
		errOut: errOut,
		code:   r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
	}
}

// Run executes the command named by args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	rest := fs.Args()

	switch args[0] {
	case "list":
		return c.list(ctx, *asJSON)
	case "codes":
		return c.codes(ctx, *asJSON)
	case "add":
		if len(rest) == 0 {
			return ErrUsage
		}
		return c.add(ctx, strings.Join(rest, " "), *asJSON)
	case "remove":
		if len(rest) != 1 {
			return ErrUsage
		}
		return c.remove(ctx, rest[0])
	default:
		return ErrUsage
	}
}

func (c *CLI) list(ctx context.Context, asJSON bool) error {
	entries, err := c.uc.List(ctx)
	if err != nil {
		return err
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, EntryResponse{ID: e.ID, Name: e.Name})
	}

	if asJSON {
		return c.printJSON(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(c.out, "no entries")
		return nil
	}

	for _, it := range items {
		fmt.Fprintf(c.out, "  %-36s  %s\n", it.ID, it.Name)
	}
	return nil
}

func (c *CLI) codes(ctx context.Context, asJSON bool) error {
	resp, err := c.uc.Codes(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		items := make([]CodeResponse, 0, len(resp.Items))
		for _, it := range resp.Items {
			items = append(items, CodeResponse{ID: it.ID, Name: it.Name, Code: it.Code})
		}
		return c.printJSON(CodesResponse{Items: items, Period: resp.Period, SecondsRemaining: resp.SecondsRemaining})
	}

	if len(resp.Items) == 0 {
		fmt.Fprintln(c.out, "no entries")
		return nil
	}

	for _, it := range resp.Items {
		code := it.Code
		if code == "" {
			code = "------"
		}
		fmt.Fprintf(c.out, "  %s  %s  %s\n", c.code.Render(code), it.Name, c.dim.Render(it.ID))
	}
	fmt.Fprintf(c.out, "valid for %ds\n", resp.SecondsRemaining)
	return nil
}

func (c *CLI) add(ctx context.Context, name string, asJSON bool) error {
	secret, err := c.readSecret()
	if err != nil {
		return err
	}

	entry, err := c.uc.Add(ctx, usecase.AddInput{Name: name, Secret: secret})
	if err != nil {
		return err
	}

	if asJSON {
		return c.printJSON(EntryResponse{ID: entry.ID, Name: entry.Name})
	}
	fmt.Fprintf(c.out, "added %s (%s)\n", entry.Name, entry.ID)
	return nil
}

func (c *CLI) remove(ctx context.Context, id string) error {
	if err := c.uc.Remove(ctx, usecase.RemoveInput{ID: id}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "removed %s\n", id)
	return nil
}

func (c *CLI) readSecret() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.errOut, "secret: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatError renders err for a terminal: field messages for validation
// failures, the public message for other application errors.
func FormatError(err error) string {
	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		return joinMessages(verr.Values())
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		if fields := gerr.Fields(); len(fields) > 0 {
			return joinMessages(fields)
		}
		return gerr.Msg()
	}

	return err.Error()
}

func joinMessages(fields map[string]string) string {
	msgs := lo.Values(fields)
	slices.Sort(msgs)
	return strings.Join(msgs, "; ")
}
