package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/apps/api/echo"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/contact"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/lesson"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
	aisvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/ai"
	emailsvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/email"
	logsvc "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/services/logger"
	kvrepos "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/kv"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/localstore"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/pgstore"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/redisstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	store, closeStore, err := setUpStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up store: %v", err), err)
	}
	defer closeStore()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	var assistant interface {
		chat.Assistant
		exam.Scanner
	}
	if conf.GeminiAPIKey != "" {
		gemini, err := aisvc.NewGeminiService(context.Background(), conf, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up AI service: %v", err), err)
		}
		assistant = gemini
	} else {
		logger.Warn("no AI API key configured; using offline stand-in")
		assistant = aisvc.NewDummyService()
	}

	usrSvc := user.NewService(kvrepos.NewUserRepository(store), mailSvc, validate, conf)
	examSvc := exam.NewService(store, assistant, exam.SeedExams())
	lessonSvc := lesson.NewService(store, lesson.SeedLessons())
	contactSvc := contact.NewService(store)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:    conf.Server.Host,
		Conf:       conf,
		Logger:     logger,
		Store:      store,
		UserSvc:    usrSvc,
		ExamSvc:    examSvc,
		LessonSvc:  lessonSvc,
		ContactSvc: contactSvc,
		Assistant:  assistant,
		Validate:   validate,
		Translator: translator,
		Shutdown:   func() { shutdown <- syscall.SIGTERM },
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpStore(conf *core.Config) (core.Store, func(), error) {
	switch conf.StoreBackend {
	case "postgres":
		store, err := pgstore.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "redis":
		store, err := redisstore.Open(conf.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := localstore.New(conf.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
