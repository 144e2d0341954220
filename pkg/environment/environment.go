// Package environment provides a sane default PATH for spawning external
// commands (the transfer tool, validation commands) when the process
// environment doesn't already provide one.
package environment

import (
	"os"
)

// defaultPATH is the standard search path to fall back to when PATH is
// unset in the process environment. This mirrors the common convention
// used by cron and other minimal-environment daemons.
const defaultPATH = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// Default returns a copy of os.Environ() with PATH set to defaultPATH if
// it is not already present.
func Default() []string {
	env := os.Environ()
	for _, kv := range env {
		if len(kv) >= 5 && kv[:5] == "PATH=" {
			return env
		}
	}
	return append(env, "PATH="+defaultPATH)
}

// PATH returns the effective PATH that Default would install: the current
// process's PATH if set, otherwise defaultPATH.
func PATH() string {
	if path, ok := os.LookupEnv("PATH"); ok {
		return path
	}
	return defaultPATH
}
