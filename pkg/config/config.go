package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix envconfig uses for every variable.
const EnvPrefix = "FAIRPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	Sheets SheetsConfig
	Cache  CacheConfig
	Retry  RetryConfig
	Promo  PromoConfig
	UI     UIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Sheets.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FAIRPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"FAIRPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FAIRPOS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FAIRPOS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FAIRPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SheetsConfig locates the spreadsheet acting as the system of record.
// CredentialsFile / CredentialsJSON are both optional; with neither set the
// client falls back to application-default credentials.
type SheetsConfig struct {
	SpreadsheetID     string `envconfig:"FAIRPOS_SHEETS_SPREADSHEET_ID" required:"true"`
	CredentialsFile   string `envconfig:"FAIRPOS_SHEETS_CREDENTIALS_FILE"`
	CredentialsJSON   string `envconfig:"FAIRPOS_SHEETS_CREDENTIALS_JSON"`
	VendorsSheet      string `envconfig:"FAIRPOS_SHEETS_VENDORS_SHEET" default:"Vendors"`
	ProductsSheet     string `envconfig:"FAIRPOS_SHEETS_PRODUCTS_SHEET" default:"Products"`
	TransactionsSheet string `envconfig:"FAIRPOS_SHEETS_TRANSACTIONS_SHEET" default:"Transactions"`
}

func (s SheetsConfig) validate() error {
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		return fmt.Errorf("%s_SHEETS_SPREADSHEET_ID is required", EnvPrefix)
	}
	return nil
}

// CacheConfig holds the per-entry-class TTLs for the gateway caches.
type CacheConfig struct {
	VendorsTTL  time.Duration `envconfig:"FAIRPOS_CACHE_VENDORS_TTL" default:"10m"`
	ProductsTTL time.Duration `envconfig:"FAIRPOS_CACHE_PRODUCTS_TTL" default:"5m"`
}

// RetryConfig bounds remote calls against the quota-limited backend.
type RetryConfig struct {
	MaxAttempts int           `envconfig:"FAIRPOS_RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay   time.Duration `envconfig:"FAIRPOS_RETRY_BASE_DELAY" default:"1s"`
}

type PromoConfig struct {
	LotteryFee int `envconfig:"FAIRPOS_PROMO_LOTTERY_FEE" default:"200"`
}

type UIConfig struct {
	PageSize    int `envconfig:"FAIRPOS_UI_PAGE_SIZE" default:"10"`
	DetailLimit int `envconfig:"FAIRPOS_UI_DETAIL_LIMIT" default:"10"`
}
