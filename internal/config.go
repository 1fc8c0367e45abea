package internal

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	BroadcastToSender    bool          `env:"BROADCAST_TO_SENDER,default=false"`
	RequireSocketAuth    bool          `env:"REQUIRE_SOCKET_AUTH,default=true"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	// DebugPort exposes the inspection server on a separate listener.
	// Zero disables it; never expose it publicly.
	DebugPort int `env:"DEBUG_PORT,default=0"`
}
