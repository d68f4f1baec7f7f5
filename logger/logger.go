package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the global zerolog logger writes.
type Options struct {
	Service  string
	Level    string
	Pretty   bool
	FilePath string // directory for rolling log files; empty disables file output
	MaxSize  int    // megabytes
	MaxAge   int    // days
}

// levelWriter sends warn and above to one writer and everything else to another.
type levelWriter struct {
	info  io.Writer
	error io.Writer
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.info.Write(p) //nolint:wrapcheck
}

func (lw levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l == zerolog.Disabled {
		return 0, nil
	}
	if l >= zerolog.WarnLevel {
		return lw.error.Write(p) //nolint:wrapcheck
	}
	return lw.info.Write(p) //nolint:wrapcheck
}

// Init replaces the global logger.
func Init(opts Options) error {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return errors.Wrapf(err, "log level %s is not supported", opts.Level)
	}
	if opts.Service == "" {
		return errors.New("service name is empty")
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign

	writers := []io.Writer{consoleWriter(opts.Pretty)}
	if opts.FilePath != "" {
		fw, err := rollingFileWriter(opts)
		if err != nil {
			return err
		}
		writers = append(writers, fw)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(opts.Service)).
		With().Timestamp().Str("service", opts.Service).Logger()
	return nil
}

func consoleWriter(pretty bool) io.Writer {
	if !pretty {
		return levelWriter{info: os.Stdout, error: os.Stderr}
	}
	return levelWriter{
		info:  zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"},
		error: zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"},
	}
}

func rollingFileWriter(opts Options) (io.Writer, error) {
	if err := os.MkdirAll(opts.FilePath, 0o750); err != nil {
		return nil, errors.Wrapf(err, "creating log directory %s", opts.FilePath)
	}
	return levelWriter{
		info: &lumberjack.Logger{
			Filename: filepath.Join(opts.FilePath, opts.Service+".log"),
			MaxSize:  opts.MaxSize,
			MaxAge:   opts.MaxAge,
		},
		error: &lumberjack.Logger{
			Filename: filepath.Join(opts.FilePath, opts.Service+".error.log"),
			MaxSize:  opts.MaxSize,
			MaxAge:   opts.MaxAge,
		},
	}, nil
}
