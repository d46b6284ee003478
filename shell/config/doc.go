// Package config provides the process configuration of the rental service
// and the database connection builders for every supported driver.
package config
