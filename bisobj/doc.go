// Package bisobj holds the serialized object handles exchanged with the
// biswasm library.
//
// Every object crosses the library boundary as one little-endian blob:
//
//	int32 magic       object type code (image = 20003)
//	int32 dataType    element type code
//	int32 headerSize  bytes of type-specific header
//	int32 dataSize    bytes of payload
//	[headerSize]byte
//	[dataSize]byte
//
// An Image keeps the blob as-is. The package checks the 16-byte frame so a
// truncated or foreign blob is rejected before it reaches the library, and
// Summary peeks at the image header for logging. Voxel data is never decoded.
package bisobj
