// Package catalog searches the Spotify track catalog.
//
// A search is two sequential calls: a client-credentials token exchange and a
// track search limited to a small result count. Tokens are cached until
// shortly before they expire, and concurrent exchanges for the same
// credentials are coalesced into one.
//
// Results are normalized leniently: a record with missing or malformed fields
// yields empty strings rather than failing the whole search.
package catalog
