package service

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
)

// widgetGroup runs independent widget reads concurrently. A failing widget is
// logged and counted but never cancels its siblings.
type widgetGroup struct {
	role domain.Role
	log  zerolog.Logger

	eg     errgroup.Group
	mu     sync.Mutex
	failed []string
}

func newWidgetGroup(role domain.Role, log zerolog.Logger) *widgetGroup {
	return &widgetGroup{role: role, log: log}
}

// Go starts fn as the named widget.
func (g *widgetGroup) Go(name string, fn func() error) {
	g.eg.Go(func() error {
		if err := fn(); err != nil {
			g.fail(name, err)
		}
		return nil
	})
}

// Wait blocks until every widget finished and returns the degraded widget
// names in sorted order, or nil when all succeeded.
func (g *widgetGroup) Wait() []string {
	_ = g.eg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	sort.Strings(g.failed)
	return g.failed
}

func (g *widgetGroup) fail(name string, err error) {
	g.log.Warn().Err(err).Str("role", string(g.role)).Str("widget", name).Msg("widget load failed")
	metrics.WidgetFailuresTotal.WithLabelValues(string(g.role), name).Inc()

	g.mu.Lock()
	g.failed = append(g.failed, name)
	g.mu.Unlock()
}
