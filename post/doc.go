// Package post implements the editing core of a structured rich-text document.
//
// A Post is an ordered sequence of block sections: markup sections
// (paragraphs, headings), list sections holding list items, and cards.
// Leaf sections hold inline content made of markers (text runs carrying a
// markup stack) and atoms (opaque embeds of length 1).
//
// Offsets are 0-based and counted in grapheme clusters; an atom counts as 1.
// A card is a leaf of length 1 whose only valid offsets are 0 and 1.
//
// All mutation goes through an Editor transaction, which reports the dirty
// sections and the resulting cursor once per Complete.
package post
