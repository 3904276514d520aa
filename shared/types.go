package shared

type ServerConfig struct {
	Sqlite   SqliteConfig   `mapstructure:"sqlite" validate:"required"`
	SafeHer  SafeHerConfig  `mapstructure:"safeher" validate:"required"`
	Location LocationConfig `mapstructure:"location"`
	Voice    VoiceConfig    `mapstructure:"voice"`
	FakeCall FakeCallConfig `mapstructure:"fakeCall"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type SafeHerConfig struct {
	Listener         ListenerConfig `mapstructure:"listener" validate:"required"`
	Cron             CronConfig     `mapstructure:"cron" validate:"required"`
	CountdownSeconds int            `mapstructure:"countdownSeconds" validate:"omitempty,min=1"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`

	// Cron expression for the periodic location refresh job
	LocationRefreshSchedule string `mapstructure:"locationRefreshSchedule"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type LocationConfig struct {
	// Endpoint of the ip-geolocation capability used to resolve
	// the device's current position
	Endpoint       string  `mapstructure:"endpoint"`
	TimeoutSeconds int     `mapstructure:"timeoutSeconds" validate:"omitempty,min=1"`
	FallbackLat    float64 `mapstructure:"fallbackLat"`
	FallbackLng    float64 `mapstructure:"fallbackLng"`
}

type VoiceConfig struct {
	// Path to a FIFO/file a speech-to-text pipeline writes transcripts to.
	// When empty, the voice-activation capability is treated as unsupported.
	TranscriptPath string `mapstructure:"transcriptPath"`
	TriggerPhrase  string `mapstructure:"triggerPhrase"`
}

type FakeCallConfig struct {
	// Command used to play the looping ringtone e.g. "mpv --loop"
	PlayerCommand string `mapstructure:"playerCommand"`
	RingtoneURL   string `mapstructure:"ringtoneURL"`
}
