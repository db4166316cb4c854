package res

// Image decoders used by image.DecodeConfig when sizing <img> content and by
// the PDF renderer when embedding formats fpdf cannot read natively.
import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)
