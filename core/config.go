package core

import (
	"fmt"
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
		Port                      int
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		URI  string
		Name string
	}

	PredictorConfig struct {
		URL     string
		Timeout time.Duration
	}

	Config struct {
		Debug    bool
		TestMode bool
		// DemoMode enables synthetic actual-value fills in dashboard trends.
		DemoMode bool
		Env      string
		Build    string
		AppName  string
		WorkDir  string

		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromEmailAddr      string
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration
		InvitationExpirationDelta time.Duration

		// ForecastRetentionMonths caps how many forecast-months are kept per project.
		ForecastRetentionMonths int

		Server    ServerConfig
		Database  DatabaseConfig
		Predictor PredictorConfig
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("demoMode", false)
	conf.SetDefault("appName", "Matcast")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "h^7pz&q3!mwv)e+x52_ynok84#u$cdr0(fg1bja9%stil6")
	conf.SetDefault("frontendBaseUrl", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("passwordResetTimeoutDelta", 24*time.Hour)
	conf.SetDefault("invitationExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("forecastRetentionMonths", 4)

	conf.SetDefault("serverHost", "0.0.0.0")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("serverDebugHost", "0.0.0.0:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("databaseUri", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "matcast")

	conf.SetDefault("predictorUrl", "")
	conf.SetDefault("predictorTimeout", 10*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		DemoMode: conf.GetBool("demoMode"),
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		WorkDir:  wd,

		SecretKey:                 conf.GetString("secretKey"),
		FrontendBaseURL:           strings.TrimRight(conf.GetString("frontendBaseUrl"), "/"),
		DefaultFromEmailAddr:      conf.GetString("defaultFromEmail"),
		SendgridApiKey:            conf.GetString("sendgridApiKey"),
		RollbarToken:              conf.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		InvitationExpirationDelta: conf.GetDuration("invitationExpirationDelta"),
		ForecastRetentionMonths:   conf.GetInt("forecastRetentionMonths"),

		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetInt("serverPort"),
			DebugHost:                 conf.GetString("serverDebugHost"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			URI:  conf.GetString("databaseUri"),
			Name: conf.GetString("databaseName"),
		},
		Predictor: PredictorConfig{
			URL:     conf.GetString("predictorUrl"),
			Timeout: conf.GetDuration("predictorTimeout"),
		},
	}
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailAddr}
}
