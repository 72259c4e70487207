package capture

import (
	"errors"
	"os"
	"unicode/utf8"

	"github.com/sadopc/jsonstash/internal/core/response"
)

// FromFile captures the full contents of a local file as the body. No
// headers are recorded. Binary files are refused.
func FromFile(path string) (response.StorableResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return response.StorableResponse{}, newError(KindFileRead, path, err)
	}
	if !utf8.Valid(data) {
		return response.StorableResponse{}, newError(KindFileRead, path, errors.New("file is not valid UTF-8 text"))
	}
	return response.New(string(data), nil), nil
}
