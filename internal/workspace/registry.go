package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики реестра пространств.
var (
	registryHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rd_workspace_hits_total",
		Help: "Общее количество запросов, нашедших пространство сессии в реестре.",
	})
	registryMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rd_workspace_misses_total",
		Help: "Общее количество запросов, для которых пространство сессии создано заново.",
	})
	registryEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rd_workspace_evictions_total",
		Help: "Общее количество закрытых пространств (TTL, размер реестра, выход).",
	})
)

// Factory создаёт пространство для сессии.
type Factory func(sessionID, token string) *Workspace

// Registry — LRU-реестр пространств активных сессий с TTL.
// Вытесненное или удалённое пространство закрывается.
type Registry struct {
	// mu делает GetOrCreate атомарным (сам LRU потокобезопасен)
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Workspace]
	factory Factory
	logger  *slog.Logger
}

// NewRegistry создаёт реестр.
// maxSize — максимальное количество одновременно хранимых пространств.
// ttl — время жизни пространства после создания (обычно равно TTL сессии).
func NewRegistry(maxSize int, ttl time.Duration, factory Factory, logger *slog.Logger) *Registry {
	r := &Registry{
		factory: factory,
		logger:  logger.With(slog.String("component", "workspace_registry")),
	}
	r.cache = expirable.NewLRU[string, *Workspace](maxSize, r.onEvict, ttl)
	return r
}

// GetOrCreate возвращает пространство сессии, создавая его при отсутствии.
// Если у сессии сменился токен, старое пространство закрывается.
func (r *Registry) GetOrCreate(sessionID, token string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.cache.Get(sessionID); ok && !ws.Closed() && ws.token == token {
		registryHitsTotal.Inc()
		return ws
	}
	// Истёкшая или устаревшая запись: Add не вызывает onEvict для
	// существующего ключа, поэтому старое пространство закрывается через Remove
	r.cache.Remove(sessionID)

	registryMissesTotal.Inc()
	ws := r.factory(sessionID, token)
	r.cache.Add(sessionID, ws)
	r.logger.Debug("Создано пространство сессии", slog.String("session_id", sessionID))
	return ws
}

// Get возвращает пространство сессии без создания.
func (r *Registry) Get(sessionID string) (*Workspace, bool) {
	ws, ok := r.cache.Get(sessionID)
	if !ok || ws.Closed() {
		return nil, false
	}
	return ws, true
}

// Remove закрывает и удаляет пространство сессии (выход сотрудника).
func (r *Registry) Remove(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Remove(sessionID)
}

// Len возвращает количество пространств в реестре.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge закрывает все пространства (остановка сервиса).
func (r *Registry) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}

func (r *Registry) onEvict(sessionID string, ws *Workspace) {
	registryEvictionsTotal.Inc()
	ws.Close()
	r.logger.Debug("Пространство сессии вытеснено", slog.String("session_id", sessionID))
}
