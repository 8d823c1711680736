package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/scheduler"
	"github.com/dmitrijs2005/seowatch/internal/client/services"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
)

// Scanner is the part of the scheduler the CLI drives directly.
type Scanner interface {
	ScanNow(ctx context.Context, resourceID string) (*models.ScanReport, error)
	State(resourceID string) scheduler.State
}

// Deps are the collaborators an App needs. In and Out default to the
// process's stdin and stdout.
type Deps struct {
	Auth      services.AuthService
	Billing   services.BillingService
	Resources services.ResourceService
	Contents  services.ContentService
	Scanner   Scanner
	Holder    *state.Holder

	In  io.Reader
	Out io.Writer
}

type App struct {
	auth      services.AuthService
	billing   services.BillingService
	resources services.ResourceService
	contents  services.ContentService
	scanner   Scanner
	holder    *state.Holder

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps) *App {
	in := d.In
	if in == nil {
		in = os.Stdin
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	return &App{
		auth:      d.Auth,
		billing:   d.Billing,
		resources: d.Resources,
		contents:  d.Contents,
		scanner:   d.Scanner,
		holder:    d.Holder,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run restores the session left by a previous run, then serves the REPL
// until the input ends, the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	if _, err := a.auth.Resume(ctx); err != nil {
		a.printf("Could not restore the previous session: %v\n", err)
	}

	printlnFn("Welcome to seowatch (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.holder.Current() != nil
}

// getStatus renders the prompt prefix. The holder is read on every prompt so
// a login or logout made by another process shows up here too.
func (a *App) getStatus() string {
	identity := a.holder.Current()
	if identity == nil {
		return ""
	}
	if identity.Capabilities().RequiresCredit {
		return fmt.Sprintf("(%s %s %dcr)", identity.Username, identity.Plan, identity.Credit)
	}
	return fmt.Sprintf("(%s %s)", identity.Username, identity.Plan)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
