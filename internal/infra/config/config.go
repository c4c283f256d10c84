// internal/infra/config/config.go
package config

import (
	"os"
	"time"
)

// Config はアプリケーション全体の環境変数設定を保持します。
// 招待サブシステムが暗黙のグローバルを読むことはなく、必要な値は
// ここから各コンストラクタへ明示的に渡されます。
type Config struct {
	Port                     string
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Firebase Auth 用のプロジェクトID
	FirebaseProjectID string

	// 招待リンクのオリジン（https://app.clubhouse.run）
	AppOrigin string

	// SendGrid。APIキーは環境変数か Secret Manager のどちらかで渡す。
	SendGridAPIKey       string
	SendGridAPIKeySecret string // 例: "sendgrid-api-key"（Secret Manager のシークレットID）
	MailFrom             string
	MailFromName         string

	// Bulk dispatch: 連続送信の間に必ず挟む待ち時間
	BulkSendDelay time.Duration

	// 監査ログ用 PostgreSQL（未設定なら監査はプロセスログのみ）
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "clubhouse-club-app")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		AppOrigin: getenvDefault("APP_ORIGIN", "https://app.clubhouse.run"),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret: os.Getenv("SENDGRID_API_KEY_SECRET"),
		MailFrom:             getenvDefault("MAIL_FROM", "no-reply@clubhouse.run"),
		MailFromName:         getenvDefault("MAIL_FROM_NAME", "Clubhouse"),

		BulkSendDelay: getenvDuration("BULK_SEND_DELAY", time.Second),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}

	return cfg
}

// HasPostgres reports whether the audit database is configured.
func (c *Config) HasPostgres() bool {
	return c.DBHost != "" && c.DBUser != "" && c.DBName != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
