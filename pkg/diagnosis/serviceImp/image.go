package serviceImp

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"cropdoc/pkg/apperror"
)

const (
	defaultMimeType = "image/jpeg"
	minImageBytes   = 100
)

var dataURLRX = regexp.MustCompile(`^data:([^;,]*)(;[^,]*)?,`)

type leafImage struct {
	mimeType string
	data     []byte
}

// base64 is the canonical padded encoding sent upstream.
func (l leafImage) base64() string { return base64.StdEncoding.EncodeToString(l.data) }

func decodeImage(raw string, maxBytes int) (leafImage, error) {
	raw = strings.TrimSpace(raw)
	var img leafImage
	if m := dataURLRX.FindStringSubmatch(raw); m != nil {
		img.mimeType = strings.ToLower(m[1])
		raw = raw[len(m[0]):]
	}
	raw = strings.Join(strings.Fields(raw), "")
	if raw == "" {
		return img, apperror.InvalidInput("Image and crop type are required")
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
	}
	if err != nil {
		return img, apperror.InvalidInput("Invalid image data provided")
	}
	if len(data) < minImageBytes {
		return img, apperror.InvalidInput("Invalid image data provided")
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return img, apperror.InvalidInput(fmt.Sprintf("Image exceeds the %d MB limit", maxBytes/(1<<20)))
	}

	img.data = data
	if img.mimeType == "" {
		img.mimeType = sniffMimeType(data)
	}
	return img, nil
}

func sniffMimeType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return defaultMimeType
}
