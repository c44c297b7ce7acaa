// Package execs runs external programs, such as the fontconfig tools used to
// discover installed fonts.
//
// Commands only inherit a small set of environment variables from the
// caller; see [EssentialEnv].
package execs
