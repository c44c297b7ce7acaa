// Package transform rewrites rendered card markup so that each writing system
// named in the card is shown in a randomly chosen font.
//
// The question side picks one enabled font per writing system, adds a hidden
// tooltip naming it, and installs a single stylesheet on the #qa element. The
// answer side re-attaches the tooltips and the stylesheet created by the
// question side.
package transform
