// Package configはアプリケーション設定を環境変数から読み込みます。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DBConfig はMySQL接続設定です。
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// DSN はMySQL接続文字列 (Data Source Name) を構築します。
// 例: user:pass@tcp(db:3306)/dbname?parseTime=true
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.User, c.Pass, c.Host, c.Port, c.Name)
}

// SMTPConfig はパスワードリセットメール送信用の設定です。
type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Sender string
}

// LimiterConfig はIPごとのレートリミット設定です。
type LimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	ServerPort  string
	JWTSecret   string
	FrontendURL string
	CORSOrigins []string
	DB          DBConfig
	SMTP        SMTPConfig
	Limiter     LimiterConfig
}

// Load は環境変数から設定を読み込みます。
// .env の読み込み (godotenv) は main 側で済ませておく前提です。
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// デフォルト値
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("SMTP_HOST", "sandbox.smtp.mailtrap.io")
	v.SetDefault("SMTP_PORT", 2525)
	v.SetDefault("MAIL_SENDER", "no-reply@mi-todoes.local")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	cfg := Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		CORSOrigins: []string{v.GetString("FRONTEND_URL")},
		DB: DBConfig{
			User: v.GetString("DB_USER"),
			Pass: v.GetString("DB_PASS"),
			Host: v.GetString("DB_HOST"),
			Port: v.GetString("DB_PORT"),
			Name: v.GetString("DB_NAME"),
		},
		SMTP: SMTPConfig{
			Host:   v.GetString("SMTP_HOST"),
			Port:   v.GetInt("SMTP_PORT"),
			User:   v.GetString("SMTP_USER"),
			Pass:   v.GetString("SMTP_PASSWORD"),
			Sender: v.GetString("MAIL_SENDER"),
		},
		Limiter: LimiterConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return cfg, nil
}
