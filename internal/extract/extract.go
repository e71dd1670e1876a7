// Package extract turns uploaded files into plain text for analysis.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// ErrExtraction means the file was recognised but could not be read.
var ErrExtraction = errors.New("extraction failed")

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// Upload is a file received from the user.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Kind classifies an upload by extension and content type.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindDocx
	KindPDF
	KindImage
)

func (u Upload) Kind() Kind {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	ct := strings.ToLower(u.ContentType)
	switch {
	case ct == "text/plain" || ct == "text/markdown" || ext == ".txt" || ext == ".md":
		return KindText
	case ext == ".docx" || ct == docxContentType:
		return KindDocx
	case ext == ".pdf" || ct == "application/pdf":
		return KindPDF
	case strings.HasPrefix(ct, "image/") || imageExtensions[ext]:
		return KindImage
	}
	return KindUnsupported
}

// Extractor dispatches an upload to the reader for its kind.
type Extractor struct {
	ocr      OCR
	maxChars int
}

// New creates an extractor. A nil ocr disables image recognition.
func New(ocr OCR, maxChars int) *Extractor {
	return &Extractor{ocr: ocr, maxChars: maxChars}
}

// Extract returns the text of u truncated to the configured length. Files that
// hold no readable text produce a descriptive placeholder instead of an error.
func (e *Extractor) Extract(ctx context.Context, u Upload) (string, error) {
	log.Printf("[Extract] Processing %s (%s, %d bytes)", u.Filename, u.ContentType, len(u.Data))

	var (
		text string
		err  error
	)
	switch u.Kind() {
	case KindText:
		text = string(u.Data)
	case KindDocx:
		text, err = e.docx(u)
	case KindPDF:
		text, err = e.pdf(u)
	case KindImage:
		text = e.image(ctx, u)
	default:
		text = fmt.Sprintf("File: %s\n\nThis file type is not supported for automatic recognition. Upload a text file (.txt, .md), a PDF or an image.", u.Filename)
	}
	if err != nil {
		log.Printf("[Extract] ERROR: %s: %v", u.Filename, err)
		return "", err
	}
	return truncate(text, e.maxChars), nil
}

func (e *Extractor) docx(u Upload) (string, error) {
	text, err := readDocx(u.Data)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrExtraction, u.Filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("Document: %s\n\nNo text could be extracted from the .docx file. Try saving it as .txt or pasting the text.", u.Filename), nil
	}
	return text, nil
}

func (e *Extractor) pdf(u Upload) (string, error) {
	pages, err := readPDF(u.Data)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrExtraction, u.Filename, err)
	}
	if len(pages) == 0 {
		return fmt.Sprintf("PDF document: %s\n\nNo text could be extracted from the PDF. It may contain only images; try uploading page images for OCR.", u.Filename), nil
	}
	return fmt.Sprintf("PDF document: %s\n\n%s", u.Filename, strings.Join(pages, "\n")), nil
}

func (e *Extractor) image(ctx context.Context, u Upload) string {
	if e.ocr == nil {
		return fmt.Sprintf("Image: %s\n\nText recognition is not available. Upload a text file instead.", u.Filename)
	}
	text, err := e.ocr.Recognize(ctx, u.Data)
	if err != nil {
		log.Printf("[Extract] WARNING: OCR failed for %s: %v", u.Filename, err)
		return fmt.Sprintf("Image: %s\n\nText recognition failed. Try a sharper image or a text file.", u.Filename)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("Image: %s\n\nNo text was recognised. Make sure the image contains readable text.", u.Filename)
	}
	return text
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
