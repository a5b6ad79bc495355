// Package domain defines the core study-session entities and errors.
//
// The types here are pure data with their own invariants: a Deck of Cards,
// the ReviewState tracking which cards have been flipped, and the
// PaymentEntitlement that gates the text export. Nothing in this package
// performs I/O.
package domain
