package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newLoggerApp() *cli.App {
	return &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error { return nil },
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := newLoggerApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "info", c.String("log-level"))
			return nil
		}
		require.NoError(t, app.Run([]string{"test"}))
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newLoggerApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}
		require.NoError(t, app.Run([]string{"test", "-l", "debug"}))
	})
}

func TestParseFileID(t *testing.T) {
	app := &cli.App{
		Name: "test",
		Commands: []*cli.Command{
			{
				Name: "check",
				Action: func(c *cli.Context) error {
					id, err := parseFileID(c)
					require.NoError(t, err)
					assert.EqualValues(t, 42, id)
					return nil
				},
			},
			{
				Name: "bad",
				Action: func(c *cli.Context) error {
					_, err := parseFileID(c)
					assert.Error(t, err)
					return nil
				},
			},
		},
	}

	require.NoError(t, app.Run([]string{"test", "check", "42"}))
	require.NoError(t, app.Run([]string{"test", "bad", "not-a-number"}))
	require.NoError(t, app.Run([]string{"test", "bad"}))
}
