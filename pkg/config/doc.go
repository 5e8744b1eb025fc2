// Package config loads fount settings with viper.
//
// Settings come from defaults, an optional YAML file and FOUNT_*
// environment variables, in increasing priority:
//
//	baseURL:    https://dev.fount.allyabase.com/   FOUNT_BASE_URL
//	privateKey: ""                                 FOUNT_PRIVATE_KEY
//	timeout:    30s                                FOUNT_TIMEOUT
//	logLevel:   info                               FOUNT_LOG_LEVEL
//	listenAddr: 127.0.0.1:3006                     FOUNT_LISTEN_ADDR
//
// An empty privateKey makes KeyPair generate a new identity.
package config
