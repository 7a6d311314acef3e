package analysis

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fra-atlas/atlas-backend/internal/ai"
	"github.com/ledongthuc/pdf"
)

const (
	maxImageDimension = 1600
	maxExtractedText  = 20000
)

// ResolveMimeType prefers the client hint and falls back to the file
// extension. Unknown types are treated as JPEG scans.
func ResolveMimeType(filename, hint string) string {
	hint = strings.ToLower(strings.TrimSpace(strings.Split(hint, ";")[0]))
	if hint != "" && hint != "application/octet-stream" {
		return hint
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return strings.Split(t, ";")[0]
	}
	return "image/jpeg"
}

// Prepare turns an upload into an analyzer attachment: PDFs get a plain-text
// rendition, large images are scaled down. Preparation problems are not
// fatal; the raw bytes are forwarded instead.
func Prepare(doc Document) *ai.Attachment {
	mimeType := ResolveMimeType(doc.Filename, doc.ContentType)
	att := &ai.Attachment{Filename: doc.Filename, MimeType: mimeType, Data: doc.Data}

	switch {
	case mimeType == "application/pdf":
		if text, err := extractPDFText(doc.Data); err == nil {
			att.Text = text
		}
	case strings.HasPrefix(mimeType, "image/"):
		if scaled, ok := downscaleImage(doc.Data); ok {
			att.Data = scaled
			att.MimeType = "image/jpeg"
		}
	}
	return att
}

func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(strings.TrimSpace(pageText))
		sb.WriteString("\n")
		if sb.Len() >= maxExtractedText {
			break
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text extracted from pdf")
	}
	return truncateUTF8(out, maxExtractedText), nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func downscaleImage(data []byte) ([]byte, bool) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false
	}
	b := img.Bounds()
	if b.Dx() <= maxImageDimension && b.Dy() <= maxImageDimension {
		return nil, false
	}
	scaled := imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
