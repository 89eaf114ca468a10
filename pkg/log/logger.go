package log

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Category int

const (
	Application Category = iota
	Discord
	Storage
)

type Logger struct {
	application *log.Logger
	discord     *log.Logger
	storage     *log.Logger
	error       *log.Logger

	files []io.Closer
}

var globalLogger = newConsoleLogger()

// newConsoleLogger is the default until Setup runs, so early startup
// messages are not lost.
func newConsoleLogger() *Logger {
	return &Logger{
		application: log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
		discord:     log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
		storage:     log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
		error:       log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// Setup switches the global logger to console plus rotating files under logDir.
func Setup(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	rotating := func(name string) *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   filepath.Join(logDir, name),
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	appLog := rotating("application.log")
	discordLog := rotating("discord_events.log")
	storageLog := rotating("storage.log")
	errorLog := rotating("error.log")

	globalLogger = &Logger{
		application: log.New(io.MultiWriter(os.Stdout, appLog), "", log.LstdFlags|log.Lmicroseconds),
		discord:     log.New(io.MultiWriter(os.Stdout, discordLog), "", log.LstdFlags|log.Lmicroseconds),
		storage:     log.New(io.MultiWriter(os.Stdout, storageLog), "", log.LstdFlags|log.Lmicroseconds),
		error:       log.New(io.MultiWriter(os.Stderr, errorLog), "", log.LstdFlags|log.Lmicroseconds),
		files:       []io.Closer{appLog, discordLog, storageLog, errorLog},
	}

	return nil
}

// Close closes the rotating log files, if Setup configured any.
func Close() {
	for _, f := range globalLogger.files {
		_ = f.Close()
	}
	globalLogger.files = nil
}

func (l *Logger) byCategory(category Category) *log.Logger {
	switch category {
	case Discord:
		return l.discord
	case Storage:
		return l.storage
	default:
		return l.application
	}
}

func Info(category Category, message string) {
	globalLogger.byCategory(category).Println(message)
}

func Infof(category Category, format string, v ...interface{}) {
	globalLogger.byCategory(category).Printf(format, v...)
}

func Error(message string) {
	globalLogger.error.Println(message)
}

func Errorf(format string, v ...interface{}) {
	globalLogger.error.Printf(format, v...)
}
