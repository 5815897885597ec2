package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/cpgs-hub/backend/apps/api/echo"
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
	"github.com/cpgs-hub/backend/services/genai"
	logsvc "github.com/cpgs-hub/backend/services/logger"
	"github.com/cpgs-hub/backend/services/ratelimit"
	"github.com/cpgs-hub/backend/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Translator ut.Translator
	Sessions   *session.Manager
	Policy     *access.Policy
	Limiter    ratelimit.Limiter
	Chat       *chat.Router

	IdentitySvc     identity.Service
	ResourceSvc     resource.Service
	ExamSvc         exam.Service
	RoutineSvc      routine.Service
	AnnouncementSvc announcement.Service
	ConfigSvc       sysconfig.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *database.Store {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	store, err := database.Open(ctx, conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("using %s store", store.Engine))
	return store
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	identity.InitValidators(validate, translator)
	return validate
}

// newRedisClient returns nil when no Redis is configured or reachable; rate limits then stay in memory.
func newRedisClient(conf *core.Config, logger core.Logger) *redis.Client {
	if conf.RedisURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	client, err := ratelimit.NewRedisClient(ctx, conf.RedisURL)
	if err != nil {
		logger.Warn(fmt.Sprintf("redis unavailable, falling back to in-memory rate limits: %v", err), err)
		return nil
	}
	return client
}

func newLimiter(conf *core.Config, client *redis.Client) ratelimit.Limiter {
	return ratelimit.New(client, conf.Server.ChatRateLimit, conf.Server.ChatRateWindow)
}

func newSessionManager(conf *core.Config) *session.Manager {
	return session.NewManager(conf.SecretKey, conf.AppName)
}

func newPolicy(svc identity.Service) *access.Policy {
	return access.NewPolicy(svc)
}

// newGenerator returns a nil Generator without an API key, so the chat serves canned replies.
func newGenerator(conf *core.Config) chat.Generator {
	if conf.Gemini.APIKey == "" {
		return nil
	}
	client := genai.NewClient(genai.ClientOptions{
		BaseURL: conf.Gemini.BaseURL,
		APIKey:  conf.Gemini.APIKey,
		Model:   conf.Gemini.Model,
	})
	return chat.NewResilientGenerator(client, conf.Gemini.Timeout, conf.Gemini.RetryWait)
}

func newChatRouter(
	routines routine.Service,
	exams exam.Service,
	resources resource.Service,
	configs sysconfig.Service,
	gen chat.Generator,
	logger core.Logger,
) *chat.Router {
	return chat.NewRouter(chat.Deps{
		Routines:  routines,
		Exams:     exams,
		Resources: resources,
		Prompts:   configs,
		Generator: gen,
		Logger:    logger,
	})
}

func newServer(p serverParams) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:            p.Conf,
		Logger:          p.Logger,
		Translator:      p.Translator,
		Sessions:        p.Sessions,
		Policy:          p.Policy,
		Limiter:         p.Limiter,
		Chat:            p.Chat,
		IdentitySvc:     p.IdentitySvc,
		ResourceSvc:     p.ResourceSvc,
		ExamSvc:         p.ExamSvc,
		RoutineSvc:      p.RoutineSvc,
		AnnouncementSvc: p.AnnouncementSvc,
		ConfigSvc:       p.ConfigSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(func(s *database.Store) identity.Repository { return s.Identities }))
	must(c.Provide(func(s *database.Store) resource.Repository { return s.Resources }))
	must(c.Provide(func(s *database.Store) exam.Repository { return s.Exams }))
	must(c.Provide(func(s *database.Store) routine.Repository { return s.Routines }))
	must(c.Provide(func(s *database.Store) announcement.Repository { return s.Announcements }))
	must(c.Provide(func(s *database.Store) sysconfig.Repository { return s.Configs }))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(identity.NewService))
	must(c.Provide(resource.NewService))
	must(c.Provide(exam.NewService))
	must(c.Provide(routine.NewService))
	must(c.Provide(announcement.NewService))
	must(c.Provide(sysconfig.NewService))
	must(c.Provide(newRedisClient))
	must(c.Provide(newLimiter))
	must(c.Provide(newSessionManager))
	must(c.Provide(newPolicy))
	must(c.Provide(newGenerator))
	must(c.Provide(newChatRouter))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
