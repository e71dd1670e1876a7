package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var csvHeader = []string{
	"Registered at", "Email", "Personal data consent", "Marketing consent",
	"Name", "Company", "Position", "Phone", "Industry", "Employees", "Updated at",
}

// DiskSink appends rows to a CSV file kept on a cloud disk.
// Each append downloads the file, adds a line and uploads it back.
type DiskSink struct {
	baseURL    string
	token      string
	path       string
	httpClient *http.Client
}

// NewDiskSink creates a sink for folder/file on the disk API at baseURL.
func NewDiskSink(baseURL, token, folder, file string) *DiskSink {
	return &DiskSink{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		path:       strings.TrimRight(folder, "/") + "/" + file,
		httpClient: &http.Client{},
	}
}

type linkResponse struct {
	Href string `json:"href"`
}

func (s *DiskSink) Append(ctx context.Context, row Row) error {
	current, err := s.download(ctx)
	if err != nil {
		return err
	}
	line, err := encodeCSV(csvRecord(row))
	if err != nil {
		return err
	}
	if current == "" {
		header, _ := encodeCSV(csvHeader)
		current = header
	}
	if !strings.HasSuffix(current, "\n") {
		current += "\n"
	}
	return s.upload(ctx, current+line)
}

// download returns the current file, or "" when it does not exist yet.
func (s *DiskSink) download(ctx context.Context) (string, error) {
	href, status, err := s.link(ctx, "/resources/download", url.Values{"path": {s.path}})
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", nil
	}
	if href == "" {
		return "", fmt.Errorf("download link request returned %d", status)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", s.path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", s.path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *DiskSink) upload(ctx context.Context, content string) error {
	href, status, err := s.link(ctx, "/resources/upload", url.Values{"path": {s.path}, "overwrite": {"true"}})
	if err != nil {
		return err
	}
	if href == "" {
		return fmt.Errorf("upload link request returned %d", status)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, href, strings.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", s.path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("uploading %s: status %d", s.path, resp.StatusCode)
	}
	return nil
}

func (s *DiskSink) link(ctx context.Context, endpoint string, q url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "OAuth "+s.token)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, nil
	}
	var link linkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return "", resp.StatusCode, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return link.Href, resp.StatusCode, nil
}

func csvRecord(r Row) []string {
	return []string{
		r.RegisteredAt.Format(time.RFC3339),
		r.Email,
		yesNo(r.ConsentPersonalData),
		yesNo(r.ConsentMarketing),
		r.Name, r.Company, r.Position, r.Phone, r.Industry, r.Employees,
		r.UpdatedAt.Format(time.RFC3339),
	}
}

func encodeCSV(record []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(record); err != nil {
		return "", err
	}
	w.Flush()
	return buf.String(), w.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
