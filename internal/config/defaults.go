package config

const (
	defaultWorkDir                 = "~/.local/share/repost/work"
	defaultLogDir                  = "~/.local/share/repost/logs"
	defaultRecordsDir              = "~/.local/share/repost/records"
	defaultCatalogBaseURL          = "https://www.googleapis.com/youtube/v3"
	defaultCatalogTokenFile        = "~/.config/repost/token.json"
	defaultCatalogRequestTimeout   = 30
	defaultTranscriberTaskSheet    = "batch/tasks_setting.xlsx"
	defaultTranscriberPollSeconds  = 600
	defaultTranscriberTimeoutMin   = 120
	defaultLLMBaseURL              = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                = "deepseek/deepseek-chat"
	defaultLLMTimeoutSeconds       = 60
	defaultPublisherCreatorURL     = "https://creator.xiaohongshu.com/publish/publish"
	defaultPublisherProfileDir     = "~/.local/share/repost/browser-profile"
	defaultPublisherLoginWait      = 300
	defaultPublisherUploadTimeout  = 120
	defaultPublisherReviewPause    = 15
	defaultMailerPort              = 587
	defaultMailerTimeoutSeconds    = 30
	defaultWorkflowLockFile        = "~/.local/share/repost/repost.lock"
	defaultWorkflowLockStaleMinute = 180
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			RecordsDir: defaultRecordsDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			TokenFile:      defaultCatalogTokenFile,
			RequestTimeout: defaultCatalogRequestTimeout,
		},
		Transcriber: Transcriber{
			TaskSheet:           defaultTranscriberTaskSheet,
			PollIntervalSeconds: defaultTranscriberPollSeconds,
			TimeoutMinutes:      defaultTranscriberTimeoutMin,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Publisher: Publisher{
			CreatorURL:           defaultPublisherCreatorURL,
			ProfileDir:           defaultPublisherProfileDir,
			LoginWaitSeconds:     defaultPublisherLoginWait,
			UploadTimeoutSeconds: defaultPublisherUploadTimeout,
			ReviewPauseSeconds:   defaultPublisherReviewPause,
		},
		Mailer: Mailer{
			Port:           defaultMailerPort,
			TimeoutSeconds: defaultMailerTimeoutSeconds,
		},
		Workflow: Workflow{
			LockFile:         defaultWorkflowLockFile,
			LockStaleMinutes: defaultWorkflowLockStaleMinute,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
