package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

// DryRunNotifier prints what would be posted without sending anything
type DryRunNotifier struct {
	mu  sync.Mutex
	out io.Writer
	n   int
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	n.n++
	_, err := fmt.Fprintf(n.out, "--- Message %d ---\n%s\n(Length: %d characters)\n\n",
		n.n, message, utf8.RuneCountInString(message))
	return err
}

// Count returns how many messages were printed
func (n *DryRunNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.n
}
