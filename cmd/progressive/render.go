package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/progressive/internal/demo"
	"github.com/vango-dev/progressive/pkg/publish"
	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/server"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		p          demo.Params
		stream     bool
		publishKey string
	)

	cmd := &cobra.Command{
		Use:   "render TREE",
		Short: "Render a tree to stdout or object storage",
		Long: `Render one of the built-in trees (recursive, deep, wide, page).

By default the markup is rendered into one buffer with the checksum in the
root tag. With --stream the chunks are written as they are produced and the
checksum is reported on stderr. With --publish the page is uploaded to the
configured bucket instead of printed.

Examples:
  progressive render recursive --depth=3 --breadth=2
  progressive render page --static --header='<!DOCTYPE html>'
  progressive render wide --count=1000 --stream
  progressive render page --publish=index.html`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, map[string]string{
				"render.static":   "static",
				"render.header":   "header",
				"render.checksum": "checksum",
			})
			if err != nil {
				return err
			}
			node, err := demo.Tree(args[0], p)
			if err != nil {
				return err
			}

			logger := c.logger()
			renderer := server.NewRenderer(cfg, logger)
			ctx := cmd.Context()

			switch {
			case publishKey != "":
				client, err := publish.NewS3Client(ctx, cfg.Publish)
				if err != nil {
					return err
				}
				pub, err := publish.New(client, renderer, publish.Config{
					Bucket: cfg.Publish.Bucket,
					Prefix: cfg.Publish.Prefix,
					Static: cfg.Render.Static,
					Header: cfg.Render.Header,
					Logger: logger,
				})
				if err != nil {
					return err
				}
				res, err := pub.Publish(ctx, publishKey, node)
				if err != nil {
					return err
				}
				c.success("Published s3://%s/%s (%d bytes, %d chunks)", cfg.Publish.Bucket, res.Key, res.Bytes, res.Chunks)
				return nil

			case stream:
				var opts []render.StreamOption
				if cfg.Render.Static {
					opts = append(opts, render.WithStatic())
				}
				if cfg.Render.Header != "" {
					opts = append(opts, render.WithHeader(cfg.Render.Header))
				}
				s, err := renderer.RenderStream(ctx, node, opts...)
				if err != nil {
					return err
				}
				defer s.Close()
				if _, err := s.WriteTo(c.stdout); err != nil {
					return err
				}
				chunks, bytes := s.Stats()
				if sum, ok := s.Checksum(); ok {
					c.info("checksum: %d", sum)
				}
				c.info("%d chunks, %d bytes", chunks, bytes)
				return nil

			default:
				html, err := renderer.RenderToStringContext(ctx, node, cfg.Render.Static)
				if err != nil {
					return err
				}
				_, err = io.WriteString(c.stdout, cfg.Render.Header+html)
				return err
			}
		},
	}

	treeFlags(cmd.Flags(), &p.Depth, &p.Breadth, &p.Count)
	cmd.Flags().Bool("static", false, "Render without identity markers or checksum")
	cmd.Flags().String("header", "", "Markup written before the root, e.g. a doctype")
	cmd.Flags().String("checksum", "", "Checksum algorithm: adler32 or xxhash")
	cmd.Flags().BoolVar(&stream, "stream", false, "Write chunks as they are produced")
	cmd.Flags().StringVar(&publishKey, "publish", "", "Upload to the configured bucket under this key")
	cmd.MarkFlagsMutuallyExclusive("stream", "publish")

	return cmd
}

