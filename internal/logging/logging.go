// Package logging configures the process-wide zap logger used by the
// skillauditctl command line.
package logging

import "go.uber.org/zap"

// Logger is the process-wide sugared logger. It is nil until Init is called.
var Logger *zap.SugaredLogger

// Init builds Logger. Debug mode uses zap's development config (human
// console output, debug level); otherwise a production config at warn level
// is used so a scan's stdout stays reserved for the report itself.
func Init(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Logger = logger.Sugar()
}
