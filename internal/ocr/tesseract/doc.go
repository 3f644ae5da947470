// Package tesseract provides an ocr.Engine backed by the Tesseract library
// through gosseract.
//
// # Prerequisites
//
// The cgo build links against libtesseract and libleptonica:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Language data must be installed for every language passed to Recognize.
//
// # Builds without cgo
//
// When cgo is disabled the package still compiles; Recognize and Version
// return ErrUnavailable and the service should be configured with the
// "tesseract-cli" engine instead.
//
// # Concurrency
//
// A gosseract client is not safe for concurrent use, so Recognize creates
// and closes one client per call. Callers bound concurrency themselves
// (see ocr.Service).
package tesseract

import "errors"

// ErrUnavailable is returned when the binary was built without cgo
var ErrUnavailable = errors.New("tesseract engine unavailable: built without cgo")

// Name is the engine identifier
const Name = "tesseract"
