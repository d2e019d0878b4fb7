// Package stats — счётчики событий сервера (создание документов, входы и т.п.).
package stats

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Имена событий.
const (
	UsersCreated     = "users_created"
	UsersDeleted     = "users_deleted"
	UsersRenamed     = "users_renamed"
	Logins           = "logins"
	LoginFailures    = "login_failures"
	DocumentsCreated = "documents_created"
	DocumentsUpdated = "documents_updated"
	DocumentsDeleted = "documents_deleted"
	SettingsMerged   = "settings_merged"
	DocumentsSeeded  = "documents_seeded"
)

// Collector принимает события по имени.
type Collector interface {
	Inc(name string)
	Add(name string, n float64)
}

// Prometheus — Collector поверх CounterVec sidekick_events_total{name}.
// Дополнительно держит локальный снимок значений для /health.
type Prometheus struct {
	events *prometheus.CounterVec

	mu       sync.Mutex
	snapshot map[string]float64
}

// NewPrometheus создаёт коллектор и регистрирует его в reg.
// При reg == nil используется prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sidekick",
		Name:      "events_total",
		Help:      "Number of server events by name.",
	}, []string{"name"})
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &Prometheus{events: events, snapshot: map[string]float64{}}, nil
}

func (p *Prometheus) Inc(name string) { p.Add(name, 1) }

func (p *Prometheus) Add(name string, n float64) {
	if n < 0 {
		return
	}
	p.events.WithLabelValues(name).Add(n)
	p.mu.Lock()
	p.snapshot[name] += n
	p.mu.Unlock()
}

// Snapshot возвращает копию текущих значений.
func (p *Prometheus) Snapshot() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]float64, len(p.snapshot))
	for k, v := range p.snapshot {
		out[k] = v
	}
	return out
}

// Names возвращает отсортированные имена событий, встречавшихся хотя бы раз.
func (p *Prometheus) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.snapshot))
	for k := range p.snapshot {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Nop ничего не считает.
type Nop struct{}

func (Nop) Inc(string)          {}
func (Nop) Add(string, float64) {}

var (
	_ Collector = (*Prometheus)(nil)
	_ Collector = Nop{}
)
