package ingestion

import (
	"bytes"
	"fmt"

	"github.com/bep/imagemeta"
)

var sourceNames = map[imagemeta.Source]string{
	imagemeta.EXIF: "exif",
	imagemeta.IPTC: "iptc",
	imagemeta.XMP:  "xmp",
}

var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Make":             true,
		"Model":            true,
		"Software":         true,
		"DateTimeOriginal": true,
		"Orientation":      true,
		"Artist":           true,
		"Copyright":        true,
	},
	imagemeta.IPTC: {
		"Byline": true,
		"Source": true,
	},
	imagemeta.XMP: {
		"Creator": true,
		"Rights":  true,
	},
}

// ExtractMetadata returns the selected EXIF, IPTC and XMP tags found in data,
// keyed as "<source>:<tag>", e.g. "exif:Model". It returns nil when nothing useful is present.
func ExtractMetadata(data []byte) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string)
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return wantedTags[ti.Source][ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if s := tagValueString(ti.Value); s != "" {
				out[sourceNames[ti.Source]+":"+ti.Tag] = s
			}
			return nil
		},
	})
	if err != nil || len(out) == 0 {
		return nil
	}
	return out
}

func tagValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			return tagValueString(val[0])
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}
