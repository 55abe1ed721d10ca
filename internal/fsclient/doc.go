// Package fsclient connects resolved values to Cloud Firestore.
//
// ToNative turns a value.Value into what cloud.google.com/go/firestore
// accepts on writes, FromNative turns snapshot data back. Handle makes a
// *firestore.Client usable as the resolver's reference handle, and DB
// drives document reads and writes with values on both sides.
package fsclient
