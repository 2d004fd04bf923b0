// Command send-reading posts synthetic device readings to the ingestion API.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"noise_monitor/internal/deviceclient"
	"noise_monitor/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	defaultBaseURL  = "http://localhost:8080"
	defaultDeviceID = "NOISE-PROTOTYPE-01"
	defaultInterval = "15s"
)

type options struct {
	baseURL     string
	deviceID    string
	noiseLevel  float64
	battery     float64
	temperature float64
	humidity    float64
	status      string
	count       int
	interval    string
	apiKey      string
	profile     string
	logLevel    string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	var o options
	fs := pflag.NewFlagSet("send-reading", pflag.ContinueOnError)
	fs.StringVar(&o.baseURL, "base-url", envOr("DEVICE_BASE_URL", defaultBaseURL), "API base URL (env DEVICE_BASE_URL)")
	fs.StringVar(&o.deviceID, "device-id", defaultDeviceID, "device identifier")
	fs.Float64Var(&o.noiseLevel, "noise-level", 0, "noise level in dB; random in [30,95) when omitted")
	fs.Float64Var(&o.battery, "battery", 0, "battery level (%)")
	fs.Float64Var(&o.temperature, "temperature", 0, "temperature (°C)")
	fs.Float64Var(&o.humidity, "humidity", 0, "humidity (%)")
	fs.StringVar(&o.status, "status", "", "device status (online, offline, warning)")
	fs.IntVar(&o.count, "count", 1, "number of rounds to send")
	fs.StringVar(&o.interval, "interval", defaultInterval, "pause between rounds (Go duration, or milliseconds)")
	fs.StringVar(&o.apiKey, "api-key", os.Getenv("DEVICE_API_KEY"), "device API key (env DEVICE_API_KEY)")
	fs.StringVar(&o.profile, "profile", "", "YAML file describing a fleet of devices")
	fs.StringVar(&o.logLevel, "log-level", logger.InfoLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.New(o.logLevel, logger.FormatConsole)
	defer func() { _ = log.Sync() }()

	if o.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", o.count)
	}
	interval, err := parseInterval(o.interval)
	if err != nil {
		return err
	}
	samples, err := buildSamples(fs, o)
	if err != nil {
		return err
	}
	client, err := deviceclient.New(o.baseURL, o.apiKey, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < o.count; i++ {
		for _, s := range samples {
			res, err := client.Send(ctx, deviceclient.BuildReading(s, time.Now(), rnd))
			if err != nil {
				return fmt.Errorf("send reading for %s: %w", s.DeviceID, err)
			}
			log.Infow("sent reading",
				"device_id", res.Reading.DeviceID,
				"id", res.Reading.ID,
				"noise_level", res.Reading.NoiseLevel,
				"recorded_at", res.Reading.RecordedAt,
			)
		}
		if i == o.count-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}

// buildSamples uses the profile when given, otherwise a single device from flags.
func buildSamples(fs *pflag.FlagSet, o options) ([]deviceclient.Sample, error) {
	if o.profile != "" {
		p, err := deviceclient.LoadProfile(o.profile)
		if err != nil {
			return nil, err
		}
		out := make([]deviceclient.Sample, 0, len(p.Devices))
		for _, d := range p.Devices {
			out = append(out, d.Sample())
		}
		return out, nil
	}

	s := deviceclient.Sample{
		DeviceID: o.deviceID,
		Status:   o.status,
		Metadata: deviceclient.DefaultMetadata(),
	}
	if fs.Changed("noise-level") {
		s.NoiseLevel = &o.noiseLevel
	}
	if fs.Changed("battery") {
		s.Battery = &o.battery
	}
	if fs.Changed("temperature") {
		s.Temperature = &o.temperature
	}
	if fs.Changed("humidity") {
		s.Humidity = &o.humidity
	}
	return []deviceclient.Sample{s}, nil
}

// parseInterval accepts "15s" style durations and bare milliseconds.
func parseInterval(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("--interval must not be negative")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid --interval %q", s)
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
