package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/flagx"
	"github.com/Velislav710/TeenBudget-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept "15m"
// style strings. Zero values leave the current setting in place.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SessionTokenTTL      timex.Duration `json:"session_token_ttl"`
	RememberTokenTTL     timex.Duration `json:"remember_token_ttl"`
	ResetTokenTTL        timex.Duration `json:"reset_token_ttl"`
	SignupCodeTTL        timex.Duration `json:"signup_code_ttl"`
	BcryptCost           int            `json:"bcrypt_cost"`
	PendingStore         string         `json:"pending_store"`
	PendingSweepInterval timex.Duration `json:"pending_sweep_interval"`
	PendingRetention     timex.Duration `json:"pending_retention"`
	RedisAddr            string         `json:"redis_addr"`
	RedisPassword        string         `json:"redis_password"`
	RedisDB              int            `json:"redis_db"`
	MailBackend          string         `json:"mail_backend"`
	MailFrom             string         `json:"mail_from"`
	SESRegion            string         `json:"ses_region"`
	SESAccessKey         string         `json:"ses_access_key"`
	SESSecretKey         string         `json:"ses_secret_key"`
	SESBaseEndpoint      string         `json:"ses_base_endpoint"`
	ResetLinkBaseURL     string         `json:"reset_link_base_url"`
	AuthRateLimitMax     int            `json:"auth_rate_limit_max"`
	AuthRateLimitWindow  timex.Duration `json:"auth_rate_limit_window"`
	OTLPEndpoint         string         `json:"otlp_endpoint"`
	LogLevel             string         `json:"log_level"`
}

// parseJSON loads the file named by -c/-config in args, if any, into config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionTokenTTL, c.SessionTokenTTL)
	setDuration(&config.RememberTokenTTL, c.RememberTokenTTL)
	setDuration(&config.ResetTokenTTL, c.ResetTokenTTL)
	setDuration(&config.SignupCodeTTL, c.SignupCodeTTL)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.PendingStore, c.PendingStore)
	setDuration(&config.PendingSweepInterval, c.PendingSweepInterval)
	setDuration(&config.PendingRetention, c.PendingRetention)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setString(&config.MailBackend, c.MailBackend)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.SESAccessKey, c.SESAccessKey)
	setString(&config.SESSecretKey, c.SESSecretKey)
	setString(&config.SESBaseEndpoint, c.SESBaseEndpoint)
	setString(&config.ResetLinkBaseURL, c.ResetLinkBaseURL)
	setInt(&config.AuthRateLimitMax, c.AuthRateLimitMax)
	setDuration(&config.AuthRateLimitWindow, c.AuthRateLimitWindow)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
