package object

import (
	"crypto/sha1"
	"fmt"
)

// HashObject computes the id of an object body: the SHA-1 of the envelope
// "type size\0body". This is Git's loose-object hashing; any deviation
// changes every downstream id and breaks interoperability with existing
// histories.
func HashObject(typ Type, body []byte) ID {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", typ, len(body))
	h.Write(body)
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}
