package utils

import (
	"hash/fnv"
	"strconv"
)

func HashBytesToUint64(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// ETag is a strong entity tag for a response body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(HashBytesToUint64(body), 16) + `"`
}
