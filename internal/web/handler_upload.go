package web

import (
	"errors"
	"net/http"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

var errUnsupportedImage = errors.New("unsupported image format")

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, GIF and BMP via magic-byte
// sniffing. WebP and TIFF are detected separately because the WHATWG sniff
// spec (and therefore the stdlib) does not include their signatures. AVIF and
// HEIC are rejected; the image pipeline cannot decode them.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
}

// isTIFF reports whether data starts with a little- or big-endian TIFF header.
func isTIFF(data []byte) bool {
	return len(data) >= 4 &&
		(string(data[0:4]) == "II*\x00" || string(data[0:4]) == "MM\x00*")
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	if isTIFF(data) {
		return "image/tiff", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}
