package utils

import (
	"os"
	"time"

	exiflib "github.com/rwcarlsen/goexif/exif"
)

// exifExtensions are the formats that carry EXIF in a TIFF structure goexif reads.
var exifExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "tif": {}, "tiff": {},
}

// HasEXIF reports whether files with the lowercase extension ext may carry EXIF.
func HasEXIF(ext string) bool {
	_, ok := exifExtensions[ext]
	return ok
}

// CaptureTime returns the EXIF DateTimeOriginal of the image at path.
// On any error (non-image, missing EXIF, read failure) it returns false.
func CaptureTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exiflib.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
