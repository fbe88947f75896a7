package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Webhook holds registry webhook configuration
type Webhook struct {
	Secret   string `masq:"secret"`
	Interval time.Duration
	Burst    int
}

// Flags returns CLI flags for webhook configuration
func (c *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "HMAC secret of registry webhooks. The webhook route rejects every request when empty.",
			Destination: &c.Secret,
			Sources:     cli.EnvVars("DATAMART_WEBHOOK_SECRET"),
		},
		&cli.DurationFlag{
			Name:        "webhook-refresh-interval",
			Usage:       "Minimum interval between webhook triggered refreshes",
			Value:       10 * time.Second,
			Destination: &c.Interval,
			Sources:     cli.EnvVars("DATAMART_WEBHOOK_REFRESH_INTERVAL"),
		},
		&cli.IntFlag{
			Name:        "webhook-refresh-burst",
			Usage:       "Number of webhook refreshes allowed in a burst",
			Value:       3,
			Destination: &c.Burst,
			Sources:     cli.EnvVars("DATAMART_WEBHOOK_REFRESH_BURST"),
		},
	}
}
