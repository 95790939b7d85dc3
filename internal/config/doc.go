// Package config provides configuration for the planning dashboard.
//
// Values are resolved in this order, later sources winning:
//
//	1. Default()
//	2. an optional YAML file (PLANDASH_CONFIG, ./config.yaml or ./configs/config.yaml)
//	3. environment variables prefixed with PLANDASH_
//
// Examples:
//
//	PLANDASH_SERVER_PORT=9090
//	PLANDASH_WORKBOOK_FILE=/data/ICATEX_Lingo_4Anios.xlsx
//	PLANDASH_GOALS_PROFIT_TARGET=15000000
//	PLANDASH_LOGGING_OUTPUT=both
package config
