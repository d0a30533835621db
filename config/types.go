package config

import "time"

type AppConfig struct {
	DBDriver   string          `yaml:"db_driver" env:"CJB_DB_DRIVER" env-default:"sqlite"`
	DBURL      string          `yaml:"db_url" env:"CJB_DB_URL" env-default:"data/cjb.db"`
	ListenAddr string          `yaml:"listen_addr" env:"CJB_LISTEN_ADDR" env-default:"0.0.0.0:3001"`
	AppEnv     string          `yaml:"app_env" env:"CJB_APP_ENV"`
	StaticDir  string          `yaml:"static_dir" env:"CJB_STATIC_DIR" env-default:"."`
	Feed       FeedConfig      `yaml:"feed"`
	Sync       SyncConfig      `yaml:"sync"`
	Dashboard  DashboardConfig `yaml:"dashboard"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
}

type FeedConfig struct {
	RemoteURL          string `yaml:"remote_url" env:"CJB_FEED_REMOTE_URL"`
	LocalURL           string `yaml:"local_url" env:"CJB_FEED_LOCAL_URL" env-default:"http://localhost:3001/api/incidentes"`
	TimeoutSec         int    `yaml:"timeout_sec" env:"CJB_FEED_TIMEOUT_SEC" env-default:"5"`
	AutoLoad           bool   `yaml:"auto_load" env:"CJB_FEED_AUTO_LOAD" env-default:"true"`
	AutoRefreshMinutes int    `yaml:"auto_refresh_minutes" env:"CJB_FEED_AUTO_REFRESH_MINUTES" env-default:"0"`
	ShowManualUpload   bool   `yaml:"show_manual_upload" env:"CJB_FEED_SHOW_MANUAL_UPLOAD" env-default:"true"`
	Retries            int    `yaml:"retries" env:"CJB_FEED_RETRIES" env-default:"1"`
}

type SyncConfig struct {
	Enabled        bool   `yaml:"enabled" env:"CJB_SYNC_ENABLED" env-default:"false"`
	ExcelPath      string `yaml:"excel_path" env:"CJB_SYNC_EXCEL_PATH"`
	OutputPath     string `yaml:"output_path" env:"CJB_SYNC_OUTPUT_PATH" env-default:"data.json"`
	MinIntervalSec int    `yaml:"min_interval_sec" env:"CJB_SYNC_MIN_INTERVAL_SEC" env-default:"30"`
	SettleDelaySec int    `yaml:"settle_delay_sec" env:"CJB_SYNC_SETTLE_DELAY_SEC" env-default:"2"`
	StabilitySec   int    `yaml:"stability_sec" env:"CJB_SYNC_STABILITY_SEC" env-default:"5"`
	GitEnabled     bool   `yaml:"git_enabled" env:"CJB_SYNC_GIT_ENABLED" env-default:"false"`
	GitRepoDir     string `yaml:"git_repo_dir" env:"CJB_SYNC_GIT_REPO_DIR" env-default:"."`
	GitRemote      string `yaml:"git_remote" env:"CJB_SYNC_GIT_REMOTE" env-default:"origin"`
	GitBranch      string `yaml:"git_branch" env:"CJB_SYNC_GIT_BRANCH" env-default:"main"`
	HistoryKeep    int    `yaml:"history_keep" env:"CJB_SYNC_HISTORY_KEEP" env-default:"200"`
}

type DashboardConfig struct {
	Timezone string `yaml:"timezone" env:"CJB_DASHBOARD_TIMEZONE"`
	PageSize int    `yaml:"page_size" env:"CJB_DASHBOARD_PAGE_SIZE" env-default:"25"`
}

type SchedulerConfig struct {
	Enabled         bool `yaml:"enabled" env:"CJB_SCHEDULER_ENABLED" env-default:"false"`
	IntervalSeconds int  `yaml:"interval_seconds" env:"CJB_SCHEDULER_INTERVAL_SECONDS" env-default:"300"`
}

const (
	minSyncInterval    = 30 * time.Second
	defaultFeedTimeout = 5 * time.Second
)

func (c *AppConfig) FeedTimeout() time.Duration {
	if c == nil || c.Feed.TimeoutSec <= 0 {
		return defaultFeedTimeout
	}
	return time.Duration(c.Feed.TimeoutSec) * time.Second
}

// EffectiveMinSyncInterval never goes below the 30s floor the exporter was built around.
func (c *AppConfig) EffectiveMinSyncInterval() time.Duration {
	if c == nil || c.Sync.MinIntervalSec <= 0 {
		return minSyncInterval
	}
	d := time.Duration(c.Sync.MinIntervalSec) * time.Second
	if d < minSyncInterval {
		return minSyncInterval
	}
	return d
}

func (c *AppConfig) SettleDelay() time.Duration {
	if c == nil || c.Sync.SettleDelaySec < 0 {
		return 0
	}
	return time.Duration(c.Sync.SettleDelaySec) * time.Second
}

func (c *AppConfig) StabilityWindow() time.Duration {
	if c == nil || c.Sync.StabilitySec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Sync.StabilitySec) * time.Second
}

// Location resolves the dashboard timezone; incidents carry wall-clock time in it.
func (c *AppConfig) Location() *time.Location {
	if c == nil || c.Dashboard.Timezone == "" {
		return time.Local
	}
	if loc, err := time.LoadLocation(c.Dashboard.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// AutoRefresh is zero when periodic reloading is off.
func (c *AppConfig) AutoRefresh() time.Duration {
	if c == nil || c.Feed.AutoRefreshMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Feed.AutoRefreshMinutes) * time.Minute
}
