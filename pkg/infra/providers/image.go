package providers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type Image struct {
	Data     []byte
	MimeType string
}

func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found at %s", path)
		}
		return nil, err
	}
	return NewImage(data), nil
}

func NewImage(data []byte) *Image {
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return &Image{Data: data, MimeType: mime}
}

func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i *Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64()
}
