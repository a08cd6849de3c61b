package auth

import "golang.org/x/crypto/md4"

// MD4 computes the MD4 digest of data. Exported for collaborators outside
// this package that need the same primitive (the MS-RDPELE licensing
// exchange's client hardware ID hash).
func MD4(data []byte) []byte {
	return md4sum(data)
}

func md4sum(data []byte) []byte {
	h := md4.New()
	h.Write(data) // #nosec G104 -- hash.Hash.Write on an in-memory buffer never errors
	return h.Sum(nil)
}

// md4 is kept as the name auth_test.go's RFC 1320 vector tests call.
func md4(data []byte) []byte {
	return md4sum(data)
}
