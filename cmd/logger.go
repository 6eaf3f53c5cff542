package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/niktheblak/web-common/pkg/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/niktheblak/lightlogger/internal/poller"
	"github.com/niktheblak/lightlogger/internal/server"
	"github.com/niktheblak/lightlogger/internal/session"
	"github.com/niktheblak/lightlogger/pkg/mqtt"
	"github.com/niktheblak/lightlogger/pkg/netup"
	"github.com/niktheblak/lightlogger/pkg/sensor"
)

var loggerCmd = &cobra.Command{
	Use:          "logger",
	Short:        "Start the light sensor logger",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			accessToken = viper.GetStringSlice("server.token")
			broker      = viper.GetString("mqtt.broker")
			port        = viper.GetInt("mqtt.port")
			username    = viper.GetString("mqtt.username")
			password    = viper.GetString("mqtt.password")
			baseTopic   = viper.GetString("mqtt.topic")
			qos         = viper.GetInt("mqtt.qos")
			location    = viper.GetString("device.location")
			intervalMin = viper.GetInt("logger.interval")
			retryDelay  = viper.GetDuration("logger.retry_delay")
			ntpServer   = viper.GetString("ntp.server")
		)
		uid, err := netup.HardwareID()
		if err != nil {
			return fmt.Errorf("deriving device identity: %w", err)
		}
		interval := time.Duration(intervalMin) * time.Minute
		logger.LogAttrs(
			nil,
			slog.LevelInfo,
			"Starting logger",
			slog.String("uid", uid),
			slog.String("location", location),
			slog.String("broker", broker),
			slog.Int("port", port),
			slog.String("topic", baseTopic),
			slog.Int("interval_minutes", intervalMin),
			slog.String("ntp_server", ntpServer),
		)
		sess := session.New(uid, location)
		client := mqtt.NewClient(mqtt.Config{
			Broker:    broker,
			Port:      port,
			Username:  username,
			Password:  password,
			BaseTopic: baseTopic,
			QoS:       byte(qos),
			Location:  location,
			KeepAlive: mqtt.KeepAliveFor(interval),
			Logger:    logger,
		})
		defer client.Disconnect()
		connector := netup.NewConnector(sess, ntpServer, netup.RetryPolicy{Delay: retryDelay}, logger)
		reader := &sensor.Reader{
			Channels: sensor.SimulatedChannels{},
			Device:   sess,
		}
		p := &poller.Poller{
			Link:     connector,
			Broker:   client,
			Reader:   reader,
			Session:  sess,
			Interval: interval,
			Logger:   logger,
		}
		var authenticator auth.Authenticator
		if len(accessToken) > 0 {
			logger.Info("Using authentication", "tokens", len(accessToken))
			authenticator = auth.Static(accessToken...)
		} else {
			logger.Info("Not using authentication")
			authenticator = auth.AlwaysAllow()
		}
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", viper.GetInt("server.port")),
			Handler: server.New(sess, client, authenticator, logger),
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		go func() {
			logger.LogAttrs(nil, slog.LevelInfo, "Starting diagnostics server", slog.Int("port", viper.GetInt("server.port")))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "err", err)
			}
		}()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down HTTP server", "err", err)
			}
		}()
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Logger loop failed", "err", err)
		}
		wg.Wait()
		return nil
	},
}

func init() {
	loggerCmd.Flags().String("mqtt.broker", "", "MQTT broker host")
	loggerCmd.Flags().Int("mqtt.port", 0, "MQTT broker port")
	loggerCmd.Flags().String("mqtt.username", "", "MQTT username")
	loggerCmd.Flags().String("mqtt.password", "", "MQTT password")
	loggerCmd.Flags().String("mqtt.topic", "", "base topic for readings")
	loggerCmd.Flags().Int("mqtt.qos", 0, "QoS level for publishes and the last will")
	loggerCmd.Flags().String("device.location", "", "device location tag")
	loggerCmd.Flags().Int("logger.interval", 0, "send interval in minutes")
	loggerCmd.Flags().Duration("logger.retry_delay", 0, "delay between network reconnect attempts")
	loggerCmd.Flags().String("ntp.server", "", "NTP server for clock synchronization")
	loggerCmd.Flags().Int("server.port", 0, "diagnostics server port")
	loggerCmd.Flags().StringSlice("server.token", nil, "allowed diagnostics access tokens")

	cobra.CheckErr(viper.BindPFlags(loggerCmd.Flags()))

	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.topic", "sensors/light")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("device.location", "lab")
	viper.SetDefault("logger.interval", 1)
	viper.SetDefault("logger.retry_delay", 5*time.Second)
	viper.SetDefault("ntp.server", "pool.ntp.org")
	viper.SetDefault("server.port", 8080)

	rootCmd.AddCommand(loggerCmd)
}
