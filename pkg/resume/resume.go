// Package resume validates resume files and forwards them to the backend's
// parser, producing the interview.Resume a session is started with.
package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"interview-practice-be/pkg/interview"
	"interview-practice-be/pkg/webhook"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	MaxFileSize = 10 << 20

	UploadPath  = "/upload-resume"
	uploadEvent = "upload-resume"
)

var (
	ErrUnsupportedFileType = &interview.ValidationError{Field: "file", Reason: "Please upload a PDF or DOCX file"}
	ErrEmptyFile           = &interview.ValidationError{Field: "file", Reason: "file is empty"}
	ErrFileTooLarge        = &interview.ValidationError{Field: "file", Reason: "file exceeds 10 MB"}
)

// Validate accepts only PDF and DOCX files. The declared content type and
// the sniffed content must agree; an empty or generic declared type defers
// to sniffing alone.
func Validate(fileName, declaredType string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	if len(content) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case "", ".pdf", ".docx":
	default:
		return "", ErrUnsupportedFileType
	}

	sniffed := detect(content)
	declared := strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0])
	if declared == "" || declared == "application/octet-stream" {
		declared = sniffed
	}

	switch declared {
	case MimePDF, MimeDOCX:
	default:
		return "", ErrUnsupportedFileType
	}
	if declared != sniffed {
		return "", ErrUnsupportedFileType
	}
	return declared, nil
}

// detect maps content to one of the accepted types, or the sniffed type.
// Word files whose zip entries are ordered unusually sniff as plain zip, so
// a zip counts as DOCX only when it holds the main document part.
func detect(content []byte) string {
	mtype := mimetype.Detect(content)
	switch {
	case mtype.Is(MimePDF):
		return MimePDF
	case mtype.Is(MimeDOCX):
		return MimeDOCX
	case mtype.Is("application/zip") && hasWordDocument(content):
		return MimeDOCX
	}
	return mtype.String()
}

func hasWordDocument(content []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

// Uploader posts resumes to the backend's parsing endpoint.
type Uploader struct {
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

func NewUploader(baseURL string, timeout time.Duration) *Uploader {
	if baseURL == "" {
		baseURL = webhook.DefaultBaseURL
	}
	return &Uploader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  webhook.NewHTTPClient(timeout),
		Now:     time.Now,
	}
}

type uploadResponse struct {
	ExtractedSections json.RawMessage `json:"extracted_sections"`
}

// Upload validates the file, sends it as multipart field "file" and returns
// the accepted resume. Validation failures never reach the network.
func (u *Uploader) Upload(ctx context.Context, fileName, declaredType string, content []byte) (interview.Resume, error) {
	contentType, err := Validate(fileName, declaredType, content)
	if err != nil {
		return interview.Resume{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(fileHeader(fileName, contentType))
	if err != nil {
		return interview.Resume{}, err
	}
	if _, err := part.Write(content); err != nil {
		return interview.Resume{}, err
	}
	if err := mw.Close(); err != nil {
		return interview.Resume{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+UploadPath, &body)
	if err != nil {
		return interview.Resume{}, &webhook.NetworkError{Event: uploadEvent, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		return interview.Resume{}, &webhook.NetworkError{Event: uploadEvent, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return interview.Resume{}, &webhook.NetworkError{Event: uploadEvent, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return interview.Resume{}, &webhook.BackendError{Event: uploadEvent, Status: resp.StatusCode, Body: string(data)}
	}

	var out uploadResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return interview.Resume{}, &webhook.NetworkError{Event: uploadEvent, Err: fmt.Errorf("decode response: %w", err)}
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	return interview.Resume{
		FileName:          filepath.Base(fileName),
		FileSize:          int64(len(content)),
		UploadedAt:        now(),
		ExtractedSections: out.ExtractedSections,
	}, nil
}

func fileHeader(fileName, contentType string) textproto.MIMEHeader {
	name := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filepath.Base(fileName))
	return textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, name)},
		"Content-Type":        {contentType},
	}
}
