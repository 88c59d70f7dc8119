// Package config loads configuration for the progressive server and CLI.
//
// Configuration is read from progressive.json, overridden by environment
// variables prefixed with PROGRESSIVE_ and by bound command-line flags.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 9001,
//	    "shutdown_timeout": "10s",
//	    "metrics_path": "/metrics",
//	    "read_buffer_size": 4096,
//	    "write_buffer_size": 4096,
//	    "tracing": false
//	  },
//	  "render": {
//	    "pool_size": 10,
//	    "checksum": "adler32",
//	    "static": false,
//	    "header": "<!DOCTYPE html>",
//	    "validate_nesting": true
//	  },
//	  "publish": {
//	    "bucket": "pages",
//	    "prefix": "site/",
//	    "region": "us-east-1",
//	    "endpoint": ""
//	  }
//	}
//
// Nested keys map to environment variables by joining with underscores:
// server.port becomes PROGRESSIVE_SERVER_PORT.
//
// # Usage
//
//	cfg, err := config.Load(nil, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Address())
package config
