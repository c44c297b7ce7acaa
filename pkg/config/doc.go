// Package config loads cardfont configuration documents.
//
// A [Loader] validates YAML against a JSON schema before decoding it into a
// typed document, and reports failures with the offending YAML path and
// annotated source. [ImportLegacy] converts the settings of the original
// add-on into the current document.
package config
