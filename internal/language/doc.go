// Package language normalizes the language and country codes written into
// Matroska chapter displays.
//
// Chapter languages are ISO 639-2 bibliographic codes ("ger", "fre") and
// countries are lowercase ISO 3166-1 alpha-2 codes. Common languages resolve
// through a small table that also accepts English words; everything else is
// delegated to golang.org/x/text/language.
package language
