// Package logging provides leveled logging for the gallery build pipeline.
//
// Components receive a *Logger via their constructors rather than reading a
// process-wide global, which keeps them testable without environment setup.
// Default() returns a shared logger whose level is derived from the DEBUG
// and LOG_LEVEL environment variables.
package logging
