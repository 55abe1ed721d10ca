// Package hostvalue reads host documents into value trees and writes them
// back out, keeping map key order.
//
// YAML is the richest host format. Database types are written with local
// tags:
//
//	location: !geopoint [37.77, -122.41]
//	created:  !timestamp 2024-03-01T12:00:00Z
//	owner:    !ref users/42
//	updated:  !serverTimestamp
//	avatar:   !blob aGVsbG8=
//	visits:   !increment 1
//	tags:     !arrayUnion [a, b]
//	old:      !arrayRemove [c]
//	legacy:   !delete
//
// JSON input is read as tagged wire form ({"$type": ..., "$value": ...})
// and resolved. CUE input must be concrete; CUE bytes become blobs.
package hostvalue
