/*
Copyright © 2024 Veendy

*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/veendy/blink-counter/imgproc"
	"github.com/veendy/blink-counter/logging"
	"github.com/veendy/blink-counter/metrics"
	"github.com/veendy/blink-counter/publish"
	"github.com/veendy/blink-counter/utils"
)

const (
	envPrefix    = "BLINK_"
	drainTimeout = 3 * time.Second
)

var logger *logrus.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blink-counter",
		Short: "Blink Counter",
		Long: `Counts eye blinks seen by a webcam and publishes the running count to a message broker.

Every flag can also be set through the environment as BLINK_<FLAG>, e.g. BLINK_BROKER.
A .env file in the working directory is loaded first.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runSession,
	}

	pf := root.PersistentFlags()
	pf.String("sink", "mqtt", "Where events go: mqtt, redis or log")
	pf.StringP("broker", "b", publish.DefaultBroker, "MQTT broker URL")
	pf.String("redis-url", "redis://localhost:6379/0", "Redis URL for the redis sink")
	pf.Uint8("qos", 0, "MQTT QoS level")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Also write logs to this file, rotated")

	f := root.Flags()
	f.IntP("camera", "c", 0, "Camera device index")
	f.StringP("topic", "t", imgproc.DefaultConfig().Topic, "Topic blink counts are published to")
	f.String("payload-format", publish.DefaultPayloadFormat, "Payload format, %d is the blink count")
	f.Int("queue-size", publish.DefaultQueueSize, "Pending events kept while the broker is slow")
	f.BoolP("gui", "g", true, "Show GUI with preview")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	f.String("face-cascade", "", "Face Haar cascade XML (default bundled)")
	f.String("eye-cascade", "", "Eye Haar cascade XML (default bundled)")

	root.AddCommand(newPublishCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cmd.Flags()); err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	file, _ := cmd.Flags().GetString("log-file")
	logger = logging.New(logging.Options{Level: level, File: file, Output: cmd.ErrOrStderr()})
	return nil
}

// applyEnv sets every flag not given on the command line from BLINK_<NAME>
func applyEnv(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(key); ok {
			if serr := flags.Set(f.Name, v); serr != nil {
				err = fmt.Errorf("%s: %w", key, serr)
			}
		}
	})
	return err
}

func sessionConfig(flags *pflag.FlagSet) (imgproc.Config, error) {
	cfg := imgproc.DefaultConfig()
	cfg.CameraID, _ = flags.GetInt("camera")
	cfg.ShowGUI, _ = flags.GetBool("gui")
	cfg.Topic, _ = flags.GetString("topic")
	cfg.PayloadFmt, _ = flags.GetString("payload-format")

	var err error
	if cfg.Face.Path, err = cascadePath(flags, "face-cascade", "face"); err != nil {
		return cfg, err
	}
	if cfg.Eye.Path, err = cascadePath(flags, "eye-cascade", "eye"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func cascadePath(flags *pflag.FlagSet, flag, name string) (string, error) {
	if p, _ := flags.GetString(flag); p != "" {
		return p, nil
	}
	return utils.GetCascadePath(name)
}

func runSession(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Running Blink Counter")

	cfg, err := sessionConfig(cmd.Flags())
	if err != nil {
		return err
	}

	detector, err := imgproc.NewCascadeDetector(cfg)
	if err != nil {
		return err
	}
	defer detector.Close()

	sink, err := newSink(ctx, cmd.Flags(), logger)
	if err != nil {
		return err
	}

	queueSize, _ := cmd.Flags().GetInt("queue-size")
	dispatcher := publish.NewDispatcher(sink, queueSize, logger)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := dispatcher.Close(drainCtx); err != nil {
			logger.WithError(err).Warn("Pending events were not delivered")
		}
	}()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, logger); err != nil {
				logger.WithError(err).Error("Metrics listener stopped")
			}
		}()
	}

	session := imgproc.NewSession(cfg, detector, dispatcher, logger)
	if err := session.Run(ctx); err != nil {
		return err
	}

	logger.WithField("count", session.Count()).Info("Session finished")
	return nil
}
