package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		WorkDir          string
		DataDir          string
		DefaultFromEmail mail.Address
		FrontendBaseURL  string

		SendgridAPIKey string
		GeminiAPIKey   string
		GeminiModel    string
		RollbarToken   string
		RedisAddr      string

		// StoreBackend selects the persistence backend: local, postgres or redis.
		StoreBackend string

		// TeacherSignupCode gates teacher-role registration. It lives in server
		// configuration, never in client code.
		TeacherSignupCode string
		OTPTimeout        time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}

// NewConfig loads configuration from the environment with sane DEV defaults.
// An optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "EduExam")
	v.SetDefault("secretKey", "x2m$7dzq-wer)enb$+57=oxh2(h!x)#*c2(#yg4h^$cegmy")
	v.SetDefault("dataDir", filepath.Join(Getwd(), "data"))
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("geminiModel", "gemini-2.0-flash")
	v.SetDefault("teacherSignupCode", "")
	v.SetDefault("otpTimeout", 15*time.Minute)
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "eduexam")
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("storeBackend", "local")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix("EDUEXAM")
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          Getwd(),
		DataDir:          v.GetString("dataDir"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		FrontendBaseURL:  v.GetString("frontendBaseURL"),

		SendgridAPIKey: v.GetString("sendgridApiKey"),
		GeminiAPIKey:   v.GetString("geminiApiKey"),
		GeminiModel:    v.GetString("geminiModel"),
		RollbarToken:   v.GetString("rollbarToken"),
		RedisAddr:      v.GetString("redisAddr"),
		StoreBackend:   v.GetString("storeBackend"),

		TeacherSignupCode: v.GetString("teacherSignupCode"),
		OTPTimeout:        v.GetDuration("otpTimeout"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			Name:       v.GetString("dbName"),
			DisableTLS: v.GetBool("dbDisableTls"),
		},
	}
}
