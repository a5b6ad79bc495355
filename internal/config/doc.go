// Package config loads studybuddy settings with viper. Values come from
// built-in defaults, an optional YAML file, STUDYBUDDY_* environment
// variables and command-line flags, in increasing order of precedence, and
// are checked with validator struct tags before use.
package config
