// Package hook connects rule sets and the content transform to a host
// application's card rendering.
//
// A [Session] registers a [Filter] with a [Host]. For every render event the
// session re-reads the configured rule sets, and when one matches the card it
// runs the question or answer transform. Errors never reach the host: they
// are logged and the text is returned unchanged.
package hook
