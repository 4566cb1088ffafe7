// Package fiber writes one zerolog access log line per request served by fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/classgroups/classgroups/internal/logger"
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Fields adds request scoped fields, e.g. the acting user.
	Fields func(c *fiber.Ctx, e *zerolog.Event)

	// Config of the logger.
	Config logger.Log

	// CacheControlError is set on responses the error handler could not render.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string
}

// ConfigDefault is used when New is called without a config.
var ConfigDefault = Config{
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// New creates the access log middleware.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	access := zerolog.New(zerolog.MultiLevelWriter(writers(cfg.Config)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		logRequest(access, cfg, c, start, chainErr)

		return nil
	}
}

func logRequest(access zerolog.Logger, cfg Config, c *fiber.Ctx, start time.Time, chainErr error) {
	elapsed := time.Since(start).Seconds()
	c.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

	if cfg.Config.DisableCheckAlive && c.Path() == cfg.CheckAliveURI {
		return
	}

	// fasthttp normalises the path, the raw one is logged
	uri := c.Path()
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		uri += "?" + string(qs)
	}

	e := access.Log().
		Str("IP", c.IP()).
		Int("status", c.Response().StatusCode()).
		Float64("X-Performance", elapsed).
		Str("URI", uri).
		Str("method", c.Method()).
		Bytes("host", c.Request().Host()).
		Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
		Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent))

	if cfg.Fields != nil {
		cfg.Fields(c, e)
	}

	if chainErr != nil {
		e.Err(chainErr)
	}

	e.Send()
}

func writers(cfg logger.Log) []io.Writer {
	var out []io.Writer

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create access log directory")
		} else {
			out = append(out, logger.NewRollingFile(cfg.File.Path, cfg.File.AccessLog,
				cfg.File.AccessMaxSize, cfg.File.AccessMaxAge, cfg.File.AccessMaxBackups))
		}
	}

	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			out = append(out, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			out = append(out, os.Stdout)
		}
	}

	return out
}
