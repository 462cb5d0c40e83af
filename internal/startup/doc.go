// Package startup handles process bring-up chores: the banner, build
// information, configuration and system logging, and fatal exits.
package startup
