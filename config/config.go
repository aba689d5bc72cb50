package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Server   Server
	Database Database
	Redis    Redis
	S3       S3
	SES      SES
	JWT      JWT
	Scoring  Scoring
	Sweep    Sweep

	GeminiApiKey       string
	RecaptchaSecretKey string
	GoogleClientID     string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3 struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	ForcePathStyle  bool
}

type SES struct {
	Region string
	Sender string
}

type JWT struct {
	Secret         string
	Issuer         string
	Audience       string
	ExpirationDays int
}

// Scoring holds the fixed grading point table. These are business constants
// agreed with course staff; they are configuration so deployments can pin
// them, not knobs to re-derive.
type Scoring struct {
	SubmitScore  int64
	TaggingScore int64
	VotingScore  int64
	BonusPerTag  int64
	BonusMax     int64
}

type Sweep struct {
	Spec          string
	Window        time.Duration
	ActionTimeout time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("ENV", "local")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("JWT_TOKEN_EXPIRATION_DAYS", 1)
	viper.SetDefault("SCORING_SUBMIT_SCORE", 40)
	viper.SetDefault("SCORING_TAGGING_SCORE", 30)
	viper.SetDefault("SCORING_VOTING_SCORE", 30)
	viper.SetDefault("SCORING_BONUS_PER_TAG", 1)
	viper.SetDefault("SCORING_BONUS_MAX", 20)
	viper.SetDefault("SWEEP_SPEC", "0 6 * * *")
	viper.SetDefault("SWEEP_WINDOW", 24*time.Hour)
	viper.SetDefault("SWEEP_ACTION_TIMEOUT", 2*time.Minute)

	var config Config

	config.Env = viper.GetString("ENV")
	config.Server.Port = viper.GetString("SERVER_PORT")

	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.S3.Endpoint = viper.GetString("S3_ENDPOINT")
	config.S3.Region = viper.GetString("S3_REGION")
	config.S3.AccessKeyID = viper.GetString("S3_ACCESS_KEY_ID")
	config.S3.SecretAccessKey = viper.GetString("S3_SECRET_ACCESS_KEY")
	config.S3.Bucket = viper.GetString("S3_PANELS_BUCKET_NAME")
	config.S3.ForcePathStyle = viper.GetBool("S3_FORCE_PATH_STYLE")

	config.SES.Region = viper.GetString("SES_REGION")
	config.SES.Sender = viper.GetString("SES_EMAIL_ADDRESS_IDENTITY")

	config.JWT.Secret = viper.GetString("JWT_SECRET")
	config.JWT.Issuer = viper.GetString("JWT_ISSUER")
	config.JWT.Audience = viper.GetString("JWT_AUDIENCE")
	config.JWT.ExpirationDays = viper.GetInt("JWT_TOKEN_EXPIRATION_DAYS")
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = config.Env + "-pms-core"
	}
	if config.JWT.Audience == "" {
		config.JWT.Audience = config.Env + "-pms-core"
	}

	config.Scoring.SubmitScore = viper.GetInt64("SCORING_SUBMIT_SCORE")
	config.Scoring.TaggingScore = viper.GetInt64("SCORING_TAGGING_SCORE")
	config.Scoring.VotingScore = viper.GetInt64("SCORING_VOTING_SCORE")
	config.Scoring.BonusPerTag = viper.GetInt64("SCORING_BONUS_PER_TAG")
	config.Scoring.BonusMax = viper.GetInt64("SCORING_BONUS_MAX")

	config.Sweep.Spec = viper.GetString("SWEEP_SPEC")
	config.Sweep.Window = viper.GetDuration("SWEEP_WINDOW")
	config.Sweep.ActionTimeout = viper.GetDuration("SWEEP_ACTION_TIMEOUT")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.RecaptchaSecretKey = viper.GetString("GOOGLE_RECAPTCHA_SECRET_KEY")
	config.GoogleClientID = viper.GetString("GOOGLE_AUTH_CLIENT_ID")

	log.Info().Str("env", config.Env).Str("port", config.Server.Port).Msg("Config loaded")
	return &config, nil
}
