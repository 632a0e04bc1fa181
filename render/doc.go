// Package render draws a post as styled terminal lines, one per leaf
// section.
//
// A Renderer caches each section's body. Feeding it the post.Change of a
// completed transaction redraws only the sections that transaction added or
// changed; list bullets and numbers are recomputed on every call.
package render
