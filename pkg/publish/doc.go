// Package publish renders trees and uploads the markup to S3-compatible
// object storage.
//
// A Publisher streams the render into memory, inserts the checksum into the
// root tag (unless rendering static markup) and stores the page with the
// checksum in its object metadata, so a later hydration check can compare
// without downloading the body.
//
//	client, err := publish.NewS3Client(ctx, cfg.Publish)
//	p, err := publish.New(client, renderer, publish.Config{
//	    Bucket: cfg.Publish.Bucket,
//	    Prefix: cfg.Publish.Prefix,
//	})
//	res, err := p.Publish(ctx, "index.html", page)
package publish
