package editorial

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/metrics"
)

// Notifier delivers a message to the editors.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Reporter records dangling links for editorial cleanup. Every report is
// logged and counted; reports produced by deletes are also sent to the
// attached notifier.
type Reporter struct {
	collector *metrics.Collector
	mu        sync.RWMutex
	notifier  Notifier
}

// NewReporter creates a new reporter. collector may be nil.
func NewReporter(collector *metrics.Collector) *Reporter {
	return &Reporter{collector: collector}
}

// Attach sets the notifier used for delete reports. It may be called after
// the reporter is in use, once the bot is up.
func (r *Reporter) Attach(n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

// Report logs refs found by source.
func (r *Reporter) Report(ctx context.Context, source string, refs ...content.DanglingReference) {
	if len(refs) == 0 {
		return
	}
	for _, ref := range refs {
		slog.Warn("Dangling link", "source", source, "link", ref.LinkID, "owner", ref.OwnerID, "kind", ref.Kind)
	}
	r.collector.ReportDangling(source, len(refs))

	if source != "delete" {
		return
	}
	r.mu.RLock()
	n := r.notifier
	r.mu.RUnlock()
	if n == nil {
		return
	}
	if err := n.Notify(ctx, deleteMessage(refs)); err != nil {
		slog.Error("Failed to notify editors", "error", err, "dangling", len(refs))
	}
}

func deleteMessage(refs []content.DanglingReference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧹 A delete left %d dangling link(s):\n", len(refs))
	for _, ref := range refs {
		fmt.Fprintf(&b, "• %s\n", ref)
	}
	b.WriteString("Repair them from the admin or with /dangling")
	return b.String()
}
