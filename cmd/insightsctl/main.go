// insightsctl is a small operational CLI for the UniFi Network Integration
// API: list sites, devices, and clients, pull device statistics, and restart
// devices.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	insights "github.com/domalab/go-unifi-insights"
	"github.com/domalab/go-unifi-insights/internal/config"
	"github.com/domalab/go-unifi-insights/observability"
)

const usage = `Usage: insightsctl [flags] <command> [args]

Commands:
  info                       Show controller application info
  validate                   Check whether the configured API key is accepted
  sites                      List all sites
  devices <site-id>          List devices in a site
  device <site-id> <dev-id>  Show device details
  stats <site-id> <dev-id>   Show latest device statistics
  clients <site-id>          List connected clients in a site
  restart <site-id> <dev-id> Restart a device

Flags:
`

var (
	configPath = flag.String("config", "insightsctl.yaml", "Path to config file")
	pageLimit  = flag.Int("limit", insights.DefaultPageSize, "Page size for list commands")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insightsctl: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insightsctl: invalid log_level %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	log.SetLevel(level)

	client, err := insights.NewWithConfig(&insights.ClientConfig{
		ControllerURL:      cfg.ControllerURL,
		APIKey:             cfg.APIKey,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxAttempts:        cfg.MaxAttempts,
		Timeout:            cfg.Timeout,
		Logger:             observability.NewLogrusLogger(log),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "insightsctl: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), client, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "insightsctl: %v\n", err)
		if requestID := requestIDOf(err); requestID != "" {
			fmt.Fprintf(os.Stderr, "insightsctl: server request id: %s\n", requestID)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, client *insights.APIClient, args []string) error {
	cmd, args := args[0], args[1:]

	switch cmd {
	case "info":
		info, err := client.GetApplicationInfo(ctx)
		if err != nil {
			return err
		}

		return printJSON(info)

	case "validate":
		ok, err := client.ValidateAPIKey(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("API key was rejected by the controller")
		}
		fmt.Println("API key accepted")

		return nil

	case "sites":
		return printAll(ctx, client.SitesPaginator(*pageLimit))

	case "devices":
		siteID, err := wantArgs(args, 1)
		if err != nil {
			return err
		}

		return printAll(ctx, client.DevicesPaginator(siteID[0], *pageLimit))

	case "device":
		ids, err := wantArgs(args, 2)
		if err != nil {
			return err
		}
		device, err := client.GetDevice(ctx, ids[0], ids[1])
		if err != nil {
			return err
		}

		return printJSON(device)

	case "stats":
		ids, err := wantArgs(args, 2)
		if err != nil {
			return err
		}
		stats, err := client.GetDeviceStatistics(ctx, ids[0], ids[1])
		if err != nil {
			return err
		}

		return printJSON(stats)

	case "clients":
		siteID, err := wantArgs(args, 1)
		if err != nil {
			return err
		}

		return printAll(ctx, client.ClientsPaginator(siteID[0], *pageLimit))

	case "restart":
		ids, err := wantArgs(args, 2)
		if err != nil {
			return err
		}
		if err := client.RestartDevice(ctx, ids[0], ids[1]); err != nil {
			if insights.IsKind(err, insights.KindAmbiguousOutcome) {
				return fmt.Errorf("restart outcome unknown, check the device before retrying: %w", err)
			}

			return err
		}
		fmt.Println("restart accepted")

		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printAll[T any](ctx context.Context, pager *insights.Paginator[T]) error {
	items, err := pager.All(ctx)
	if err != nil {
		return err
	}

	return printJSON(items)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func wantArgs(args []string, n int) ([]string, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}

	return args, nil
}

func requestIDOf(err error) string {
	var apiErr *insights.Error
	if errors.As(err, &apiErr) {
		return apiErr.RequestID
	}

	return ""
}
