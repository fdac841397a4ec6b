// Package state tracks which menu each chat currently sees.
package state
