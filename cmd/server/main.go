package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchroom/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:  "SERVER_SECRET",
		flagKey: "secret",
		usage:   "Session cookie signing key",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:  "REDIS_PASSWORD",
		flagKey: "redis-password",
		usage:   "Redis password",
	}
	userDBPath = configVar[string]{
		envKey:       "SERVER_USER_DB_PATH",
		flagKey:      "user-db-path",
		defaultValue: "/var/lib/watchroom/users.db",
		usage:        "SQLite user catalog path",
	}
	messageDBPath = configVar[string]{
		envKey:       "SERVER_MESSAGE_DB_PATH",
		flagKey:      "message-db-path",
		defaultValue: "/var/lib/watchroom/messages",
		usage:        "Chat archive directory",
	}
	sessionStore = configVar[string]{
		envKey:       "SERVER_SESSION_STORE",
		flagKey:      "session-store",
		defaultValue: app.SessionStoreRedis,
		usage:        "Session store: memory or redis",
	}
	ownerUsername = configVar[string]{
		envKey:       "SERVER_OWNER_USERNAME",
		flagKey:      "owner-username",
		defaultValue: "admin",
		usage:        "Owner account of the default room",
	}
	ownerPassword = configVar[string]{
		envKey:  "SERVER_OWNER_PASSWORD",
		flagKey: "owner-password",
		usage:   "Owner account password",
	}
	defaultRoom = configVar[string]{
		envKey:       "SERVER_DEFAULT_ROOM",
		flagKey:      "default-room",
		defaultValue: "lobby",
		usage:        "Id of the room created on first start",
	}
	catchupMessages = configVar[int]{
		envKey:       "SERVER_CATCHUP_MESSAGES",
		flagKey:      "catchup-messages",
		defaultValue: 20,
		usage:        "Messages sent to a client when it joins a room",
	}
	messageLogCapacity = configVar[int]{
		envKey:       "SERVER_MESSAGE_LOG_CAPACITY",
		flagKey:      "message-log-capacity",
		defaultValue: 100,
		usage:        "Messages kept in memory per room",
	}
	tickInterval = configVar[time.Duration]{
		envKey:       "SERVER_TICK_INTERVAL",
		flagKey:      "tick-interval",
		defaultValue: time.Second,
		usage:        "Playback clock interval",
	}
	videoDataTimeout = configVar[time.Duration]{
		envKey:       "SERVER_VIDEO_DATA_TIMEOUT",
		flagKey:      "video-data-timeout",
		defaultValue: 5 * time.Second,
		usage:        "Timeout for video metadata requests",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, secret.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.String(userDBPath.flagKey, userDBPath.defaultValue, userDBPath.usage)
	pflag.String(messageDBPath.flagKey, messageDBPath.defaultValue, messageDBPath.usage)
	pflag.String(sessionStore.flagKey, sessionStore.defaultValue, sessionStore.usage)
	pflag.String(ownerUsername.flagKey, ownerUsername.defaultValue, ownerUsername.usage)
	pflag.String(ownerPassword.flagKey, ownerPassword.defaultValue, ownerPassword.usage)
	pflag.String(defaultRoom.flagKey, defaultRoom.defaultValue, defaultRoom.usage)
	pflag.Int(catchupMessages.flagKey, catchupMessages.defaultValue, catchupMessages.usage)
	pflag.Int(messageLogCapacity.flagKey, messageLogCapacity.defaultValue, messageLogCapacity.usage)
	pflag.Duration(tickInterval.flagKey, tickInterval.defaultValue, tickInterval.usage)
	pflag.Duration(videoDataTimeout.flagKey, videoDataTimeout.defaultValue, videoDataTimeout.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(userDBPath)
	bind(messageDBPath)
	bind(sessionStore)
	bind(ownerUsername)
	bind(ownerPassword)
	bind(defaultRoom)
	bind(catchupMessages)
	bind(messageLogCapacity)
	bind(tickInterval)
	bind(videoDataTimeout)

	return &app.AppConfig{
		Secret:             viper.GetString(secret.flagKey),
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
		UserDBPath:         viper.GetString(userDBPath.flagKey),
		MessageDBPath:      viper.GetString(messageDBPath.flagKey),
		SessionStore:       viper.GetString(sessionStore.flagKey),
		OwnerUsername:      viper.GetString(ownerUsername.flagKey),
		OwnerPassword:      viper.GetString(ownerPassword.flagKey),
		DefaultRoom:        viper.GetString(defaultRoom.flagKey),
		CatchupMessages:    viper.GetInt(catchupMessages.flagKey),
		MessageLogCapacity: viper.GetInt(messageLogCapacity.flagKey),
		TickInterval:       viper.GetDuration(tickInterval.flagKey),
		VideoDataTimeout:   viper.GetDuration(videoDataTimeout.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
