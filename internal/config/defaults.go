// Package config provides configuration loading and defaults for laborwatch.
package config

import "time"

// DefaultConfigDir is the default location for laborwatch configuration.
const DefaultConfigDir = "~/.config/laborwatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "laborwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultCompany is the organization insights are generated for when a
// request does not name one.
const DefaultCompany = "Netflix"

// DefaultFunction is the functional scope used when none is given.
const DefaultFunction = "All"

// DefaultLogLevel is the default structured log level.
const DefaultLogLevel = "info"

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:         ":3001",
	ReadTimeout:  10 * time.Second,
	WriteTimeout: 30 * time.Second,
}

// DefaultEngine holds the default insight engine settings.
var DefaultEngine = Engine{
	EvidenceMode: "scoped",
}

// DefaultWatch holds the default watcher settings.
var DefaultWatch = Watch{
	Interval: 15 * time.Minute,
	Scopes: []Scope{
		{Region: "NA"},
		{Region: "EMEA"},
		{Region: "APAC"},
		{Region: "LATAM"},
	},
}

// DefaultFRED holds the default FRED settings. Series map FRED series IDs
// onto the metrics the rule catalog evaluates.
var DefaultFRED = FRED{
	BaseURL: "https://api.stlouisfed.org/fred",
	Series: []Series{
		{ID: "ECIWAG", Metric: "wage_growth", Region: "NA", Transform: "yoy", Periods: 4},
		{ID: "CES6054000001", Metric: "professional_services_growth", Region: "NA", Transform: "yoy", Periods: 12},
		{ID: "CIVPART", Metric: "labor_force_participation", Region: "NA", Transform: "level"},
	},
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
