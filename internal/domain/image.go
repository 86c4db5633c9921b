package domain

// Image is an immutable bitmap value carried through the picker pipeline.
// The bytes are an encoded JPEG or PNG; once produced an Image is never
// mutated, only replaced.
type Image struct {
	AssetID     string // Library asset the bitmap originated from, if any
	ContentType string // "image/jpeg" or "image/png"
	Data        []byte
}

// Size is a pixel dimension pair.
type Size struct {
	Width  int
	Height int
}
