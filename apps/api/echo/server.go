package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/access"
	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/chat"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/resource"
	"github.com/cpgs-hub/backend/core/routine"
	"github.com/cpgs-hub/backend/core/session"
	"github.com/cpgs-hub/backend/core/sysconfig"
	"github.com/cpgs-hub/backend/services/ratelimit"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Translator     ut.Translator
		DisableReqLogs bool

		Sessions *session.Manager
		Policy   *access.Policy
		Limiter  ratelimit.Limiter
		Chat     *chat.Router

		IdentitySvc     identity.Service
		ResourceSvc     resource.Service
		ExamSvc         exam.Service
		RoutineSvc      routine.Service
		AnnouncementSvc announcement.Service
		ConfigSvc       sysconfig.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		metrics:  newMetrics(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(sessionMiddleware(s.opts.Sessions))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", s.metrics.handler())

	api := s.app.Group("/api")
	requireAuth := requireSession(s.opts.Policy)
	requireAdmin := requireAdminSession(s.opts.Policy)

	registerIdentityAPI(api, requireAuth, requireAdmin, s.opts, s.metrics)
	registerResourceAPI(api, requireAdmin, s.opts)
	registerAcademicAPI(api, requireAuth, requireAdmin, s.opts)
	registerConfigAPI(api, requireAdmin, s.opts)
	registerChatAPI(api, s.opts, s.metrics)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown asks the process to shut down gracefully.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CPGS Hub API!")
}
