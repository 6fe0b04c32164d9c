package bytesconv

import "unsafe"

// String converts buf to a string without a copy. The percent codec and
// the serializers build their output in a fresh byte slice that is never
// reused, which makes the aliasing safe. The bytes passed to String must
// NOT be modified afterwards.
func String(buf []byte) string {
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

// Bytes converts str to a byte slice without a copy. Since Go strings are
// immutable, the bytes returned by Bytes must NOT be modified.
func Bytes(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}
