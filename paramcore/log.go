package paramcore

import "log"

// logWarning is the single place parser warnings reach the process log.
// Warnings are never returned as errors: they are recorded in
// extra_meta["parser_warnings"] and logged here, and the interpreter
// always continues.
func logWarning(msg string) {
	log.Printf("Warning: %s", msg)
}
