package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/progressive/pkg/server"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rendering server",
		Long: `Start the HTTP server.

Routes:
  /render/{tree}   buffered render with checksum
  /static/{tree}   buffered static markup
  /stream/{tree}   chunked stream, checksum in the X-Render-Checksum trailer
  /ws/{tree}       WebSocket stream, one frame per chunk
  /metrics         Prometheus metrics

Examples:
  progressive serve
  progressive serve --port=8080 --host=0.0.0.0
  PROGRESSIVE_RENDER_CHECKSUM=xxhash progressive serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, map[string]string{
				"server.host":         "host",
				"server.port":         "port",
				"server.metrics_path": "metrics-path",
				"server.tracing":      "tracing",
			})
			if err != nil {
				return err
			}

			srv := server.New(cfg, nil, nil, server.WithLogger(c.logger()))
			c.success("Listening on http://%s", cfg.Address())
			if cfg.Path() != "" {
				c.info("config: %s", cfg.Path())
			}
			return srv.Run()
		},
	}

	cmd.Flags().StringP("host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().String("metrics-path", "", "Metrics endpoint path (default from config)")
	cmd.Flags().Bool("tracing", false, "Trace requests with OpenTelemetry")

	return cmd
}
