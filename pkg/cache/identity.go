package cache

import "github.com/minio/highwayhash"

// identityKey is a fixed, arbitrary 32-byte HighwayHash key. It doesn't
// need to be secret (file identity only needs to be collision-resistant
// against accidental reuse, not adversarial), just stable across runs so
// the same file contents always hash to the same identity.
var identityKey = [32]byte{
	0x68, 0x61, 0x6b, 0x61, 0x6e, 0x61, 0x66, 0x6c,
	0x6f, 0x77, 0x2d, 0x63, 0x61, 0x63, 0x68, 0x65,
	0x2d, 0x69, 0x64, 0x65, 0x6e, 0x74, 0x69, 0x74,
	0x79, 0x2d, 0x6b, 0x65, 0x79, 0x2d, 0x76, 0x31,
}

// FileIdentity is the content-addressed identity of a file: two FilePaths
// naming the same string path but different FileIdentity values name
// different underlying content, the signal the diff engine uses to tell
// "this file was edited" from "this file was replaced/reverted out from
// under the cache" apart.
type FileIdentity uint64

// HashFile computes the FileIdentity of a file's contents.
func HashFile(contents []byte) FileIdentity {
	h, err := highwayhash.New64(identityKey[:])
	if err != nil {
		// identityKey is a fixed 32-byte slice; New64 only errors on a
		// wrong-length key, which can't happen here.
		panic(err)
	}
	h.Write(contents)
	return FileIdentity(h.Sum64())
}
