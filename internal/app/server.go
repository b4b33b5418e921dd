package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/config"
	"github.com/klabast/wb-services/advent-kalender/internal/content"
	"github.com/klabast/wb-services/advent-kalender/internal/logger"
	"github.com/klabast/wb-services/advent-kalender/internal/snow"
	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

// ShutdownTimeout bounds graceful shutdown
const ShutdownTimeout = 10 * time.Second

// Options wire a Server
type Options struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   store.Store
	Content content.Document
	// Now replaces the wall clock, mainly for tests.
	Now func() time.Time
}

// Server serves the calendar page and its JSON API
type Server struct {
	cfg      *config.Config
	log      *logger.Logger
	rootLog  *logger.Logger
	store    store.Store
	doc      content.Document
	now      func() time.Time
	gate     calendar.Gate
	renderer *Renderer
	metrics  *Metrics
	limiter  *Limiter
	assets   fs.FS
	snow     *snow.Field

	mu          sync.Mutex
	controllers map[string]*profileEntry
	swept       time.Time

	handler http.Handler
}

// New builds the server. Content must already be loaded so that no window is
// ever rendered against a partial list.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("app: config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("app: store is required")
	}

	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	loc, err := opts.Config.Calendar.Location()
	if err != nil {
		return nil, fmt.Errorf("calendar timezone: %w", err)
	}

	s := &Server{
		cfg:         opts.Config,
		log:         log.WithComponent("app"),
		rootLog:     log,
		store:       opts.Store,
		doc:         opts.Content,
		now:         now,
		gate:        calendar.NewGate(opts.Config.Calendar.Year, loc, now()),
		metrics:     NewMetrics(),
		limiter:     NewLimiter(opts.Config.Security.RateLimitRequests, opts.Config.Security.RateLimitBurst),
		controllers: make(map[string]*profileEntry),
	}

	hostSrc, err := s.hostDocument()
	if err != nil {
		return nil, err
	}
	s.renderer, err = NewRenderer(hostSrc, s.log)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(opts.Config.Assets.Dir); err == nil && info.IsDir() {
		s.assets = os.DirFS(opts.Config.Assets.Dir)
	} else {
		s.log.Warnw("Assets directory not found, photos will not be served", "dir", opts.Config.Assets.Dir)
	}

	if opts.Config.Snow.Enabled {
		if s.renderer.Mounted(MountSnow) {
			s.snow = snow.New(snow.Config{
				Interval:     opts.Config.Snow.Interval,
				InitialBatch: opts.Config.Snow.InitialBatch,
			})
			s.metrics.WatchSnow(s.snow)
		} else {
			s.log.Warnw("Snow enabled but host document has no snow mount point, skipping")
		}
	}

	s.metrics.entries.Set(float64(len(opts.Content.Entries)))
	s.handler = s.routes()

	s.log.Infow("Calendar ready",
		"year", s.gate.Year,
		"timezone", s.gate.Location.String(),
		"days_with_content", len(opts.Content.Entries),
	)
	return s, nil
}

func (s *Server) hostDocument() (string, error) {
	if path := s.cfg.Template.Path; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read host template: %w", err)
		}
		return string(data), nil
	}
	data, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		return "", fmt.Errorf("read embedded host template: %w", err)
	}
	return string(data), nil
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Gate returns the gating rule the server was built with
func (s *Server) Gate() calendar.Gate {
	return s.gate
}

// Snow returns the particle field, nil when snow is off
func (s *Server) Snow() *snow.Field {
	return s.snow
}

// Run starts the snow producer and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	if s.snow != nil {
		s.snow.Start(ctx)
		defer s.snow.Stop()
	}
	return Serve(ctx, s.cfg.Server, s.Handler(), s.log)
}

// Serve runs an HTTP server until ctx is cancelled, then shuts it down gracefully
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		// Long-lived streams end when the server context ends.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting Adventskalender", "addr", "http://"+displayAddr(cfg))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infow("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func displayAddr(cfg config.ServerConfig) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(cfg.Port))
}

// controllerIdle is how long an unused profile stays in memory
const controllerIdle = 30 * time.Minute

type profileEntry struct {
	c        *calendar.Controller
	lastSeen time.Time
}

// controller returns the profile's controller, loading its opened windows on
// first use. Profiles without opened windows are only kept when keep is set,
// so read-only visits by cookieless clients leave nothing behind.
func (s *Server) controller(ctx context.Context, profile string, keep bool) (*calendar.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweepLocked(now)

	if e, ok := s.controllers[profile]; ok {
		e.lastSeen = now
		return e.c, nil
	}

	c, err := calendar.NewController(ctx, calendar.Options{
		Profile: profile,
		Gate:    s.gate,
		Entries: s.doc.Entries,
		Store:   s.store,
		Notices: calendar.NewNoticeSlot(s.cfg.Calendar.NoticeDismiss),
		OnOpen:  s.metrics.ObserveOpen,
		Log:     s.rootLog,
	})
	if err != nil {
		return nil, err
	}
	if keep || len(c.Opened()) > 0 {
		s.controllers[profile] = &profileEntry{c: c, lastSeen: now}
	}
	return c, nil
}

// sweepLocked drops profiles idle for longer than controllerIdle (caller must hold lock).
// Their opened windows are persisted, so they reload on the next visit.
func (s *Server) sweepLocked(now time.Time) {
	if now.Sub(s.swept) < controllerIdle {
		return
	}
	for profile, e := range s.controllers {
		if now.Sub(e.lastSeen) > controllerIdle {
			delete(s.controllers, profile)
		}
	}
	s.swept = now
}

// profile returns the caller's profile id, issuing a cookie for new visitors
func (s *Server) profile(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ProfileCookie); err == nil && store.ValidateProfile(c.Value) == nil {
		return c.Value
	}

	id := store.NewProfileID()
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ProfileCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
