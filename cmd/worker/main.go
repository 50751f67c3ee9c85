package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/renderroom/server/internal/blender"
	"github.com/renderroom/server/internal/worker"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	serverURL = configVar[string]{
		envKey:       "WORKER_SERVER_URL",
		flagKey:      "server-url",
		defaultValue: "http://localhost:8080",
	}
	roomId = configVar[string]{
		envKey:       "WORKER_ROOM_ID",
		flagKey:      "room-id",
		defaultValue: "",
	}
	clientId = configVar[string]{
		envKey:       "WORKER_CLIENT_ID",
		flagKey:      "client-id",
		defaultValue: "",
	}
	workDir = configVar[string]{
		envKey:       "WORKER_WORK_DIR",
		flagKey:      "work-dir",
		defaultValue: "render",
	}
	blenderPath = configVar[string]{
		envKey:       "WORKER_BLENDER_PATH",
		flagKey:      "blender-path",
		defaultValue: "blender",
	}
	pollInterval = configVar[time.Duration]{
		envKey:       "WORKER_POLL_INTERVAL",
		flagKey:      "poll-interval",
		defaultValue: 5 * time.Second,
	}
	logLevel = configVar[string]{
		envKey:       "WORKER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
)

func loadConfig() *worker.Config {
	pflag.String(serverURL.flagKey, serverURL.defaultValue, "Coordinator base URL")
	pflag.String(roomId.flagKey, roomId.defaultValue, "Room to join")
	pflag.String(clientId.flagKey, clientId.defaultValue, "Client id (random when empty)")
	pflag.String(workDir.flagKey, workDir.defaultValue, "Local working directory")
	pflag.String(blenderPath.flagKey, blenderPath.defaultValue, "Path to the blender executable")
	pflag.Duration(pollInterval.flagKey, pollInterval.defaultValue, "Room status poll interval")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(serverURL.flagKey, serverURL.envKey)
	viper.BindEnv(roomId.flagKey, roomId.envKey)
	viper.BindEnv(clientId.flagKey, clientId.envKey)
	viper.BindEnv(workDir.flagKey, workDir.envKey)
	viper.BindEnv(blenderPath.flagKey, blenderPath.envKey)
	viper.BindEnv(pollInterval.flagKey, pollInterval.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)

	cfg := &worker.Config{
		ServerURL:    viper.GetString(serverURL.flagKey),
		RoomId:       viper.GetString(roomId.flagKey),
		ClientId:     viper.GetString(clientId.flagKey),
		WorkDir:      viper.GetString(workDir.flagKey),
		PollInterval: viper.GetDuration(pollInterval.flagKey),
	}

	if cfg.ClientId == "" {
		cfg.ClientId = uuid.NewString()
	}

	return cfg
}

func main() {
	cfg := loadConfig()

	if cfg.RoomId == "" {
		log.Fatal("room-id is required")
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(viper.GetString(logLevel.flagKey)))); err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	renderer := blender.NewRenderer(viper.GetString(blenderPath.flagKey), logger)

	w := worker.New(cfg, renderer, logger)
	if err := w.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
