package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Plan(ctx context.Context, args []string) error
	Buy(ctx context.Context, args []string) error

	Add(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	List(ctx context.Context) error
	SetActive(ctx context.Context, args []string, active bool) error
	Frequency(ctx context.Context, args []string) error
	Scan(ctx context.Context, args []string) error
	Reports(ctx context.Context, args []string) error

	Generate(ctx context.Context, args []string) error
	Bulk(ctx context.Context, args []string) error
	Suggest(ctx context.Context, args []string) error
	Contents(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register <user> [email] [plan], login <user>, exit"
	helpLoggedIn  = "Available commands: whoami, plan <name>, buy <n>, add <url> [freq], remove <id>, (l)ist, " +
		"activate <id>, deactivate <id>, freq <id> <freq>, scan [id], reports [n], " +
		"generate <platform> [prompt], bulk <platform>, suggest <url>, contents, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The first token is the command, the rest are its arguments. The loop ends
// on EOF, on "exit" or "quit", or when ctx is done.
//
// Errors returned by handlers are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("seowatch %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx, args)
		case "login":
			cmdErr = a.Login(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "plan":
			cmdErr = a.Plan(ctx, args)
		case "buy":
			cmdErr = a.Buy(ctx, args)

		case "add":
			cmdErr = a.Add(ctx, args)
		case "remove", "rm":
			cmdErr = a.Remove(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "activate":
			cmdErr = a.SetActive(ctx, args, true)
		case "deactivate":
			cmdErr = a.SetActive(ctx, args, false)
		case "freq":
			cmdErr = a.Frequency(ctx, args)
		case "scan":
			cmdErr = a.Scan(ctx, args)
		case "reports":
			cmdErr = a.Reports(ctx, args)

		case "generate":
			cmdErr = a.Generate(ctx, args)
		case "bulk":
			cmdErr = a.Bulk(ctx, args)
		case "suggest":
			cmdErr = a.Suggest(ctx, args)
		case "contents":
			cmdErr = a.Contents(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}
