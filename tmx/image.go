package tmx

// Image references an external image file or carries embedded image data.
// Exactly one of Source and Data is normally set.
type Image struct {
	Format string // file extension of embedded data, e.g. "png"
	Source string // path as written in the document
	Data   []byte
	Trans  *Color // transparent color key

	// Declared size in pixels, zero when unspecified.
	Width  int
	Height int
}

func (img *Image) Embedded() bool {
	return img.Source == "" && img.Data != nil
}
