package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/seowatch/internal/client/scheduler"
	"github.com/dmitrijs2005/seowatch/internal/client/services"
)

// ErrUsage marks a command called with the wrong arguments.
var ErrUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", ErrUsage, format)
}

// GetMultiline prints a prompt to w and reads lines until an empty one. The
// collected text is joined with '\n' and trimmed.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// describe turns gating errors into a hint the user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return "not logged in; use 'login <user>' or 'register <user>'"
	case errors.Is(err, scheduler.ErrNoCredit):
		return "no scan credit left; use 'buy <n>'"
	case errors.Is(err, services.ErrFeatureNotAvailable):
		return "not available on your plan; see 'plan <metered|pro|agency>'"
	case errors.Is(err, scheduler.ErrScanInProgress):
		return "a scan of this resource is already running"
	case errors.Is(err, scheduler.ErrNoTrackedResource):
		return "no tracked resource; use 'add <url>' first"
	default:
		return err.Error()
	}
}
