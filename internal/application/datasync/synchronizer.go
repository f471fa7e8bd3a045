// Package datasync orquesta la carga y el guardado del dataset de la aplicación:
// la nube es la fuente de verdad, la caché local el respaldo y los datos de demo el
// último recurso. Los guardados escriben primero en local (obligatorio) y después en
// la nube (best effort, asíncrono).
package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/demo"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// TimestampLayout formato legible de lastUpdated (dd/mm/aaaa, hh:mm:ss).
const TimestampLayout = "02/01/2006, 15:04:05"

const defaultRemoteTimeout = 15 * time.Second

// DataPatch actualización parcial: solo se aplican los campos presentes (no nil).
type DataPatch = sanitize.RawAppData

// Commit resultado de un guardado: el nuevo dataset (ya persistido en local) y la fase 2.
type Commit struct {
	Data   entity.AppData
	Remote *RemoteWrite
}

// Option configura el Synchronizer.
type Option func(*Synchronizer)

// WithClock fija el reloj usado para lastUpdated y las marcas de estado.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithRemoteTimeout limita cada operación contra el almacén remoto.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.remoteTimeout = d
		}
	}
}

// WithSanitizer sustituye el sanitizador (p. ej. generador de ids determinista en tests).
func WithSanitizer(sz *sanitize.Sanitizer) Option {
	return func(s *Synchronizer) { s.sanitizer = sz }
}

// Synchronizer estado de datos del proceso. Se crea uno en la raíz de composición y se
// comparte por referencia. La carga se hace una sola vez; las escrituras se serializan.
type Synchronizer struct {
	cache         repository.LocalCache
	remote        repository.RemoteStore // nil = no configurado
	log           *logger.Logger
	sanitizer     *sanitize.Sanitizer
	now           func() time.Time
	remoteTimeout time.Duration

	loadOnce sync.Once
	loaded   chan struct{}

	mu     sync.RWMutex
	data   entity.AppData
	gen    uint64 // se incrementa con cada guardado
	status SyncStatus

	writeMu  sync.Mutex // un solo escritor a la vez
	uploadMu sync.Mutex // subidas a la nube en orden
	wg       sync.WaitGroup
}

// New construye el sincronizador. remote puede ser nil si la nube no está configurada.
func New(cache repository.LocalCache, remote repository.RemoteStore, log *logger.Logger, opts ...Option) *Synchronizer {
	if log == nil {
		log = logger.Nop()
	}
	s := &Synchronizer{
		cache:         cache,
		remote:        remote,
		log:           log.Named("datasync"),
		sanitizer:     sanitize.New(),
		now:           time.Now,
		remoteTimeout: defaultRemoteTimeout,
		loaded:        make(chan struct{}),
		status:        SyncStatus{Remote: RemoteIdle},
	}
	for _, o := range opts {
		o(s)
	}
	if remote == nil {
		s.status.Remote = RemoteSkipped
	}
	return s
}

// GetAppData devuelve el dataset. La primera llamada dispara la carga; las demás (también
// las concurrentes) esperan y reciben el mismo resultado sin volver a consultar nada.
// La carga no se cancela si el llamador abandona; ctx solo limita la espera.
func (s *Synchronizer) GetAppData(ctx context.Context) (entity.AppData, error) {
	s.loadOnce.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			data, src := s.load(loadCtx)
			s.mu.Lock()
			s.data = data
			s.status.Source = src
			s.status.LastUpdated = data.LastUpdated
			s.mu.Unlock()
			close(s.loaded)
		}()
	})

	select {
	case <-s.loaded:
	case <-ctx.Done():
		return entity.AppData{}, ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), nil
}

// SaveAllData mezcla patch sobre el dataset actual, sella lastUpdated y lo guarda.
// Fase 1 (caché local) es obligatoria: si falla se devuelve domain.ErrLocalPersist y el
// dataset en memoria no cambia. Fase 2 (nube) corre en segundo plano; ver Commit.Remote.
func (s *Synchronizer) SaveAllData(ctx context.Context, patch DataPatch) (*Commit, error) {
	if _, err := s.GetAppData(ctx); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	base := sanitize.FromAppData(s.data)
	s.mu.RUnlock()

	merged := sanitize.Merge(base, patch)
	merged.LastUpdated = s.timestamp()
	return s.commit(ctx, merged, "guardado")
}

// OverwriteAllData reemplaza el dataset completo (restauración de copia de seguridad)
// con las mismas dos fases que SaveAllData.
func (s *Synchronizer) OverwriteAllData(ctx context.Context, full entity.AppData) (*Commit, error) {
	if _, err := s.GetAppData(ctx); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw := sanitize.FromAppData(full)
	raw.LastUpdated = s.timestamp()
	return s.commit(ctx, raw, "restauración")
}

// Status devuelve el estado actual del sincronizador.
func (s *Synchronizer) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st.RemoteAt != nil {
		at := *st.RemoteAt
		st.RemoteAt = &at
	}
	return st
}

// Close espera a que terminen las escrituras en segundo plano (caché y nube).
// Debe llamarse cuando ya no se aceptan peticiones.
func (s *Synchronizer) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ── Carga ─────────────────────────────────────────────────────────────────────

func (s *Synchronizer) load(ctx context.Context) (entity.AppData, Source) {
	if s.remote != nil {
		if data, ok := s.loadFromCloud(ctx); ok {
			return data, SourceCloud
		}
	} else {
		s.log.Warn().Msg("modo local: almacén remoto no configurado")
	}

	if data, ok := s.loadFromCache(ctx); ok {
		s.log.Info().Int("users", len(data.Users)).Msg("usando datos locales persistentes")
		return data, SourceCache
	}

	s.log.Info().Msg("inicializando caché local con datos demo")
	data := s.sanitizer.Sanitize(sanitize.FromMap(demo.Dataset()))
	if err := s.writeCache(ctx, data); err != nil {
		s.log.Warn().Err(err).Msg("no se pudieron guardar los datos demo en la caché local")
	}
	return data, SourceDemo
}

func (s *Synchronizer) loadFromCloud(ctx context.Context) (entity.AppData, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	var (
		users, pos, articulos, tarifas, groups []repository.RemoteDocument
		main                                   map[string]any
		mainExists                             bool
	)
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(collection string, dst *[]repository.RemoteDocument) {
		g.Go(func() error {
			docs, err := s.remote.FetchCollection(gctx, collection)
			if err != nil {
				return fmt.Errorf("colección %s: %w", collection, err)
			}
			*dst = docs
			return nil
		})
	}
	fetch(repository.CollectionUsers, &users)
	fetch(repository.CollectionPos, &pos)
	fetch(repository.CollectionArticulos, &articulos)
	fetch(repository.CollectionTarifas, &tarifas)
	fetch(repository.CollectionGroups, &groups)
	g.Go(func() error {
		data, exists, err := s.remote.FetchMain(gctx)
		if err != nil {
			return fmt.Errorf("documento %s/%s: %w", repository.MainCollection, repository.MainDocumentID, err)
		}
		main, mainExists = data, exists
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("error de red con el almacén remoto, pasando a local")
		return entity.AppData{}, false
	}

	if len(users) > 0 || len(articulos) > 0 || len(pos) > 0 {
		payload := map[string]any{
			"users":     withIDs(users),
			"pos":       withIDs(pos),
			"articulos": dataOnly(articulos),
			"tarifas":   dataOnly(tarifas),
			"groups":    withIDs(groups),
		}
		if mainExists {
			for k, v := range main {
				payload[k] = v
			}
		}
		payload["lastUpdated"] = s.timestamp()

		data := s.sanitizer.Sanitize(sanitize.FromMap(payload))
		s.log.Info().
			Int("articulos", len(articulos)).
			Int("tarifas", len(tarifas)).
			Msg("datos cargados desde la nube")
		s.persistInBackground(data)
		return data, true
	}

	if mainExists {
		data := s.sanitizer.Sanitize(sanitize.FromMap(main))
		s.log.Info().Msg("datos cargados desde el documento principal de la nube")
		s.persistInBackground(data)
		return data, true
	}

	s.log.Info().Msg("la nube no tiene datos")
	return entity.AppData{}, false
}

func (s *Synchronizer) loadFromCache(ctx context.Context) (entity.AppData, bool) {
	b, found, err := s.cache.Get(ctx, repository.AppDataKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("error leyendo la caché local")
		return entity.AppData{}, false
	}
	if !found {
		return entity.AppData{}, false
	}
	raw := sanitize.FromJSON(b)
	if len(raw.Users) == 0 {
		return entity.AppData{}, false
	}
	return s.sanitizer.Sanitize(raw), true
}

// persistInBackground guarda en caché el dataset recién cargado sin bloquear la carga.
// Si antes de escribir ya hubo un guardado, no pisa los datos más nuevos.
func (s *Synchronizer) persistInBackground(data entity.AppData) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		s.mu.RLock()
		stale := s.gen != gen
		s.mu.RUnlock()
		if stale {
			return
		}
		if err := s.writeCache(context.Background(), data); err != nil {
			s.log.Warn().Err(err).Msg("no se pudieron guardar en la caché local los datos de la nube")
		}
	}()
}

// ── Guardado en dos fases ─────────────────────────────────────────────────────

// commit requiere writeMu tomado.
func (s *Synchronizer) commit(ctx context.Context, raw sanitize.RawAppData, op string) (*Commit, error) {
	next := s.sanitizer.Sanitize(raw)

	// Fase 1: caché local, síncrona.
	if err := s.writeCache(ctx, next); err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("fallo al guardar en la caché local")
		return nil, fmt.Errorf("%w: %v", domain.ErrLocalPersist, err)
	}

	rw := newRemoteWrite()
	s.mu.Lock()
	s.data = next
	s.gen++
	gen := s.gen
	s.status.LastUpdated = next.LastUpdated
	s.status.RemoteError = ""
	if s.remote == nil {
		s.status.Remote = RemoteSkipped
	} else {
		s.status.Remote = RemotePending
	}
	s.mu.Unlock()
	s.log.Info().Str("op", op).Msg("datos guardados en la caché local")

	// Fase 2: nube, best effort en segundo plano.
	if s.remote == nil {
		rw.finish(RemoteSkipped, nil)
	} else {
		s.wg.Add(1)
		go s.upload(next, gen, rw)
	}

	return &Commit{Data: next.Clone(), Remote: rw}, nil
}

func (s *Synchronizer) upload(data entity.AppData, gen uint64, rw *RemoteWrite) {
	defer s.wg.Done()
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	if s.currentGen() != gen {
		rw.finish(RemoteSuperseded, nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
	defer cancel()

	doc, err := toDocument(data)
	if err == nil {
		err = s.remote.SaveMain(ctx, doc)
	}

	now := s.now()
	s.mu.Lock()
	if s.gen == gen {
		if err != nil {
			s.status.Remote = RemoteFailed
			s.status.RemoteError = err.Error()
		} else {
			s.status.Remote = RemoteSynced
			s.status.RemoteAt = &now
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("sin conexión a la nube: los datos solo están en este dispositivo")
		rw.finish(RemoteFailed, err)
		return
	}
	s.log.Info().Msg("sincronizado con la nube")
	rw.finish(RemoteSynced, nil)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *Synchronizer) currentGen() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Synchronizer) timestamp() string {
	return s.now().Format(TimestampLayout)
}

func (s *Synchronizer) writeCache(ctx context.Context, data entity.AppData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializar dataset: %w", err)
	}
	return s.cache.Put(ctx, repository.AppDataKey, b)
}

// toDocument convierte el dataset en el documento genérico que guarda el almacén remoto.
func toDocument(data entity.AppData) (map[string]any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("serializar dataset: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("convertir dataset: %w", err)
	}
	return doc, nil
}

// withIDs combina el id del documento con sus datos; un id dentro de los datos tiene prioridad.
func withIDs(docs []repository.RemoteDocument) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		m := make(map[string]any, len(d.Data)+1)
		m["id"] = d.ID
		for k, v := range d.Data {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

func dataOnly(docs []repository.RemoteDocument) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		m := make(map[string]any, len(d.Data))
		for k, v := range d.Data {
			m[k] = v
		}
		out[i] = m
	}
	return out
}
