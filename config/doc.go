// Package config loads the configuration of a pool process.
//
// Configuration is built in layers: Default values, then every file added
// with AddLayer (JSON or YAML, chosen by extension), then environment
// variables with the THREADPOOL_ prefix. Fields a layer omits keep the value
// of the layer below.
//
//	loader := config.NewLoader()
//	loader.AddLayer("pool.yaml")
//	cfg, err := loader.Load()
//	if err != nil {
//	    return err
//	}
//	pool, err := worker.New(cfg.Pool.ThreadCount)
//
// A file looks like:
//
//	pool:
//	  thread_count: 8
//	log:
//	  level: debug
//	  format: text
//	metrics:
//	  enabled: true
//	  port: 9090
//	  path: /metrics
//
// Recognized environment variables:
//
//	THREADPOOL_THREAD_COUNT
//	THREADPOOL_LOG_LEVEL
//	THREADPOOL_LOG_FORMAT
//	THREADPOOL_METRICS_ENABLED
//	THREADPOOL_METRICS_PORT
//	THREADPOOL_METRICS_PATH
//
// Load validates the result unless validation was disabled. Every failure is
// classified invalid (see errors.IsInvalid).
package config
